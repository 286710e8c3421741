// Package share sends a rendered prompt outside cue.
package share

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/slack-go/slack"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/logger"
)

// maxSlackText keeps a message under Slack's attachment text limit.
const maxSlackText = 7500

// Slack posts a rendered view to an incoming webhook.
type Slack struct {
	WebhookURL string
	Client     *http.Client
}

// Post sends text under title. JSON views are wrapped in a code block.
func (s Slack) Post(ctx context.Context, title, view, text string) error {
	if strings.TrimSpace(s.WebhookURL) == "" {
		return &apperr.ValidationError{Field: "share.slack_webhook_url", Reason: "not configured"}
	}
	if strings.TrimSpace(text) == "" {
		return apperr.Required("prompt")
	}
	if strings.TrimSpace(title) == "" {
		title = "Prompt"
	}

	body := truncate(text, maxSlackText)
	if view == "json" {
		body = "```\n" + body + "\n```"
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("*%s* (%s view)", title, view),
		Attachments: []slack.Attachment{{
			Title:      title,
			Text:       body,
			Color:      "#4f46e5",
			MarkdownIn: []string{"text"},
			Footer:     "cue",
		}},
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return apperr.Network("post to slack", err)
	}
	logger.Info("[Share] posted %q (%s) to slack", title, view)
	return nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "\n…"
}

// Clipboard copies text to the system clipboard.
func Clipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
