package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"pdfquiz/internal/logger"
)

// Discord Embed Structures (based on documentation)
type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int          `json:"color,omitempty"`     // Decimal color code
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

const (
	ColorError  = 0xFF0000
	botUsername = "PDF Quiz Notifier"
)

// Discord posts embeds to a webhook. A nil *Discord or one without a URL
// silently drops notifications.
type Discord struct {
	webhookURL string
	client     *http.Client
	log        *logger.Logger
	wg         sync.WaitGroup
}

// NewDiscord returns nil when webhookURL is empty.
func NewDiscord(webhookURL string, log *logger.Logger) *Discord {
	if webhookURL == "" {
		return nil
	}
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		log:        log,
	}
}

// Notify sends embed in the background so the request flow is never blocked.
func (d *Discord) Notify(embed Embed) {
	if d == nil {
		return
	}
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(context.Background(), embed); err != nil {
			d.log.Error("discord notification failed", "title", embed.Title, "error", err)
			return
		}
		d.log.Debug("discord notification sent", "title", embed.Title)
	}()
}

// Wait blocks until in-flight notifications have finished.
func (d *Discord) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// Send posts embed synchronously.
func (d *Discord) Send(ctx context.Context, embed Embed) error {
	payload, err := json.Marshal(WebhookPayload{Username: botUsername, Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ErrorEmbed describes a failed user action.
func ErrorEmbed(action string, err error, fields ...EmbedField) Embed {
	return Embed{
		Title:       fmt.Sprintf("🚨 %s failed", action),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       ColorError,
		Fields:      fields,
	}
}
