package share

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kayz/cue/internal/apperr"
)

func TestSlackPost(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := Slack{WebhookURL: srv.URL, Client: srv.Client()}
	if err := s.Post(context.Background(), "Review", "json", `{"sections":[]}`); err != nil {
		t.Fatalf("post: %v", err)
	}

	if !strings.Contains(got["text"].(string), "Review") {
		t.Fatalf("text = %v", got["text"])
	}
	atts, _ := got["attachments"].([]any)
	if len(atts) != 1 {
		t.Fatalf("attachments = %v", got["attachments"])
	}
	att := atts[0].(map[string]any)
	if !strings.HasPrefix(att["text"].(string), "```\n") {
		t.Fatalf("json view should be fenced: %q", att["text"])
	}
}

func TestSlackPostErrors(t *testing.T) {
	ctx := context.Background()
	if err := (Slack{}).Post(ctx, "t", "plain", "x"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error without webhook, got %v", err)
	}
	if err := (Slack{WebhookURL: "http://example.invalid"}).Post(ctx, "t", "plain", "  "); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()
	err := Slack{WebhookURL: srv.URL, Client: srv.Client()}.Post(ctx, "t", "plain", "x")
	if !apperr.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("héllo", 10) != "héllo" {
		t.Fatalf("short text changed")
	}
	if got := truncate("héllo", 2); got != "hé\n…" {
		t.Fatalf("truncate = %q", got)
	}
}
