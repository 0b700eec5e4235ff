package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// DeliveryError reports a webhook call that did not succeed.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: unexpected status %d", e.Channel, e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// webhookConfigured treats empty and YOUR_..._HERE values as unset.
func webhookConfigured(url string) bool {
	return url != "" && !isPlaceholder(url)
}

func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "YOUR_") && strings.HasSuffix(value, "_HERE")
}

// postJSON sends payload to url and accepts any 2xx response.
func postJSON(ctx context.Context, client *http.Client, channel, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Channel: channel, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Channel: channel, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: channel, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &DeliveryError{Channel: channel, StatusCode: res.StatusCode}
	}

	return nil
}
