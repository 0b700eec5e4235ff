package notifier

import (
	"context"
	"net/http"
	"time"
)

const (
	discordColorError = 0xFF0000
	discordColorInfo  = 0x00FF00
)

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Color       int    `json:"color"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Discord posts embeds to a Discord webhook.
type Discord struct {
	webhookURL string
	username   string
	client     *http.Client
}

func NewDiscord(webhookURL, username string, client *http.Client) *Discord {
	if client == nil {
		client = http.DefaultClient
	}
	return &Discord{
		webhookURL: webhookURL,
		username:   username,
		client:     client,
	}
}

func (d *Discord) Name() string {
	return "discord"
}

func (d *Discord) Configured() bool {
	return webhookConfigured(d.webhookURL)
}

func (d *Discord) Send(ctx context.Context, msg Message) error {
	return postJSON(ctx, d.client, d.Name(), d.webhookURL, d.payload(msg))
}

func (d *Discord) payload(msg Message) discordPayload {
	embed := discordEmbed{
		Color:       discordColorInfo,
		Title:       titleFor(msg.Severity),
		Description: msg.Text,
		Timestamp:   msg.Timestamp.UTC().Format(time.RFC3339),
	}
	if msg.Severity == SeverityError {
		embed.Color = discordColorError
	}

	return discordPayload{
		Username: d.username,
		Embeds:   []discordEmbed{embed},
	}
}

func titleFor(severity Severity) string {
	if severity == SeverityError {
		return "❌ Health Check Failed"
	}
	return "✅ Health Check Status"
}
