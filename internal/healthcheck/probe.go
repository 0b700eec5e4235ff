package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/angeloszaimis/health-monitor/internal/registry"
)

// DefaultProbeTimeout bounds a single probe.
const DefaultProbeTimeout = 10 * time.Second

// ProbeError describes why a probe did not count as healthy.
type ProbeError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Prober checks a single target.
type Prober interface {
	Probe(ctx context.Context, target registry.Target) error
}

// HTTPProber sends GET requests and accepts only 200 OK.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, target registry.Target) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return &ProbeError{Service: target.Name, Err: err}
	}

	res, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timeout of %s exceeded: %w", p.timeout, err)
		}
		return &ProbeError{Service: target.Name, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return &ProbeError{Service: target.Name, StatusCode: res.StatusCode}
	}

	return nil
}
