package notifier

import (
	"context"
	"net/http"
	"time"
)

const (
	adaptiveCardContentType = "application/vnd.microsoft.card.adaptive"
	adaptiveCardSchema      = "http://adaptivecards.io/schemas/adaptive-card.json"
	adaptiveCardVersion     = "1.4"

	// en-US medium date, short time.
	teamsTimeLayout = "Jan 2, 2006, 3:04 PM"
)

type teamsPayload struct {
	Type        string            `json:"type"`
	Attachments []teamsAttachment `json:"attachments"`
}

type teamsAttachment struct {
	ContentType string       `json:"contentType"`
	Content     adaptiveCard `json:"content"`
}

type adaptiveCard struct {
	Schema  string      `json:"$schema"`
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Body    []textBlock `json:"body"`
}

type textBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Weight   string `json:"weight,omitempty"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
}

// Teams posts Adaptive Cards to a Microsoft Teams incoming webhook.
type Teams struct {
	webhookURL string
	location   *time.Location
	client     *http.Client
}

// NewTeams returns a Teams channel rendering timestamps in loc (UTC when nil).
func NewTeams(webhookURL string, loc *time.Location, client *http.Client) *Teams {
	if client == nil {
		client = http.DefaultClient
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Teams{
		webhookURL: webhookURL,
		location:   loc,
		client:     client,
	}
}

func (t *Teams) Name() string {
	return "teams"
}

func (t *Teams) Configured() bool {
	return webhookConfigured(t.webhookURL)
}

func (t *Teams) Send(ctx context.Context, msg Message) error {
	return postJSON(ctx, t.client, t.Name(), t.webhookURL, t.payload(msg))
}

func (t *Teams) payload(msg Message) teamsPayload {
	color := "Good"
	if msg.Severity == SeverityError {
		color = "Attention"
	}

	card := adaptiveCard{
		Schema:  adaptiveCardSchema,
		Type:    "AdaptiveCard",
		Version: adaptiveCardVersion,
		Body: []textBlock{
			{
				Type:   "TextBlock",
				Text:   titleFor(msg.Severity),
				Weight: "Bolder",
				Size:   "Medium",
				Color:  color,
			},
			{
				Type:  "TextBlock",
				Text:  msg.Text,
				Wrap:  true,
				Color: "Default",
			},
			{
				Type:     "TextBlock",
				Text:     "🕐 " + msg.Timestamp.In(t.location).Format(teamsTimeLayout),
				Size:     "Small",
				IsSubtle: true,
			},
		},
	}

	return teamsPayload{
		Type: "message",
		Attachments: []teamsAttachment{
			{ContentType: adaptiveCardContentType, Content: card},
		},
	}
}
