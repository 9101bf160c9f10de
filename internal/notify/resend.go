package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PosterReady describes one finished poster to announce.
type PosterReady struct {
	To             string
	City           string
	Theme          string
	CustomTitle    string
	FormatLabel    string
	DistanceMeters int
	Landmarks      []string
	AttachmentPath string
}

// Mailer delivers poster-ready notifications.
type Mailer interface {
	SendPosterReady(ctx context.Context, msg PosterReady) error
}

// ResendOptions configures a ResendClient.
type ResendOptions struct {
	APIKey     string
	From       string
	ReplyTo    string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// ResendClient sends mail through the Resend HTTP API with the poster PNG
// attached. An unconfigured client (empty API key) logs and skips delivery.
type ResendClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	replyTo    string
	log        zerolog.Logger
}

// NewResendClient builds a mail client.
func NewResendClient(opts ResendOptions) *ResendClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.resend.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ResendClient{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
		from:       opts.From,
		replyTo:    opts.ReplyTo,
		log:        opts.Logger,
	}
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	ReplyTo     string             `json:"reply_to,omitempty"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Text        string             `json:"text"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// SendPosterReady emails the poster as an attachment.
func (c *ResendClient) SendPosterReady(ctx context.Context, msg PosterReady) error {
	if c == nil {
		return errors.New("notify: mailer not configured")
	}
	if c.apiKey == "" {
		c.log.Warn().Str("to", msg.To).Msg("RESEND_API_KEY not set, skipping email")
		return nil
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("notify: recipient is required")
	}

	payload := resendRequest{
		From:    c.from,
		ReplyTo: c.replyTo,
		To:      []string{msg.To},
		Subject: "Your Cartographix map poster is ready",
		HTML:    buildHTML(msg),
		Text:    buildPlain(msg),
	}
	if msg.AttachmentPath != "" {
		data, err := os.ReadFile(msg.AttachmentPath)
		if err != nil {
			return fmt.Errorf("notify: read attachment: %w", err)
		}
		payload.Attachments = []resendAttachment{{
			Filename: filepath.Base(msg.AttachmentPath),
			Content:  base64.StdEncoding.EncodeToString(data),
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notify: resend http %d", resp.StatusCode)
	}
	c.log.Info().Str("to", msg.To).Str("city", msg.City).Msg("poster email sent")
	return nil
}

func details(msg PosterReady) [][2]string {
	rows := [][2]string{
		{"City", msg.City},
		{"Theme", msg.Theme},
	}
	if msg.CustomTitle != "" {
		rows = append(rows, [2]string{"Title", msg.CustomTitle})
	}
	if msg.DistanceMeters > 0 {
		rows = append(rows, [2]string{"Distance", fmt.Sprintf("%d km", msg.DistanceMeters/1000)})
	}
	if msg.FormatLabel != "" {
		rows = append(rows, [2]string{"Format", msg.FormatLabel})
	}
	if len(msg.Landmarks) > 0 {
		rows = append(rows, [2]string{"Landmarks", strings.Join(msg.Landmarks, ", ")})
	}
	return rows
}

func buildPlain(msg PosterReady) string {
	lines := []string{
		"Your poster is ready",
		"",
		fmt.Sprintf("Your custom map poster of %s has been generated and is attached to this email as a high-resolution PNG.", msg.City),
		"",
	}
	for _, row := range details(msg) {
		lines = append(lines, fmt.Sprintf("%s: %s", row[0], row[1]))
	}
	lines = append(lines, "", "No tracking, no marketing — just your poster.")
	return strings.Join(lines, "\n")
}

func buildHTML(msg PosterReady) string {
	var rows strings.Builder
	for _, row := range details(msg) {
		fmt.Fprintf(&rows,
			`<tr><td style="font-size:13px;color:#a1a1aa;">%s</td><td style="font-size:13px;color:#18181b;font-weight:500;text-align:right;">%s</td></tr>`,
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	return fmt.Sprintf(`<html><body style="font-family:sans-serif;padding:40px;background:#f0f0f0;">
<div style="max-width:500px;margin:0 auto;background:#fff;border-radius:8px;padding:32px;">
<h1 style="color:#18181b;">Your poster is ready</h1>
<p>Your custom map poster of <strong>%s</strong> is attached as a high-resolution PNG.</p>
<table role="presentation" width="100%%" cellpadding="4" cellspacing="0">%s</table>
</div></body></html>`, html.EscapeString(msg.City), rows.String())
}
