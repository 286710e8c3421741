package promptbuild

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderPlainExample(t *testing.T) {
	doc := Document{
		Sections: []Section{{Title: "Goal", Content: "Write code"}},
		Rules:    []string{"Be concise"},
	}

	got := Render(doc).Plain
	want := "Goal\n====\n\nWrite code\n\nRULES\n=====\n\n1. Be concise\n"
	if got != want {
		t.Fatalf("plain view mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{Title: "Role", Content: "You are a reviewer."},
			{Title: "Task", Content: "Review the diff."},
		},
		Rules: []string{"Cite lines", "No nitpicks"},
	}

	got := Render(doc).Markdown
	want := "## Role\n\nYou are a reviewer.\n\n## Task\n\nReview the diff.\n\n## Rules\n\n1. Cite lines\n2. No nitpicks\n"
	if got != want {
		t.Fatalf("markdown view mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderJSONMatchesDocument(t *testing.T) {
	doc := Document{
		Sections: []Section{{Title: "A <b>", Content: "x & y"}},
		Rules:    []string{"r1", "r2"},
	}

	text := Render(doc).JSON
	if strings.Contains(text, `<`) {
		t.Fatalf("expected html characters unescaped, got %s", text)
	}
	if !strings.Contains(text, "\n  \"sections\"") {
		t.Fatalf("expected two-space indentation, got %s", text)
	}

	var back Document
	if err := json.Unmarshal([]byte(text), &back); err != nil {
		t.Fatalf("unmarshal json view: %v", err)
	}
	if len(back.Sections) != 1 || back.Sections[0] != doc.Sections[0] {
		t.Fatalf("sections mismatch: %#v", back.Sections)
	}
	if len(back.Rules) != 2 || back.Rules[0] != "r1" || back.Rules[1] != "r2" {
		t.Fatalf("rules mismatch: %#v", back.Rules)
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	views := Render(Document{})

	want := "{\n  \"sections\": [],\n  \"rules\": []\n}"
	if views.JSON != want {
		t.Fatalf("json view = %q, want %q", views.JSON, want)
	}
	if views.Markdown != "" {
		t.Fatalf("markdown view = %q, want empty", views.Markdown)
	}
	if views.Plain != "" {
		t.Fatalf("plain view = %q, want empty", views.Plain)
	}
}

func TestRenderRulesOnlyOmitsSections(t *testing.T) {
	views := Render(Document{Rules: []string{"Only rule"}})
	if views.Markdown != "## Rules\n\n1. Only rule\n" {
		t.Fatalf("markdown = %q", views.Markdown)
	}
	if views.Plain != "RULES\n=====\n\n1. Only rule\n" {
		t.Fatalf("plain = %q", views.Plain)
	}
}

func TestRenderPlainUnderlineCountsRunes(t *testing.T) {
	views := Render(Document{Sections: []Section{{Title: "Zié", Content: "c"}}})
	if !strings.HasPrefix(views.Plain, "Zié\n===\n\n") {
		t.Fatalf("expected three-rune underline, got %q", views.Plain)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	doc := Document{
		Sections: []Section{{Title: "Goal", Content: "Write code"}},
		Rules:    []string{"Be concise"},
	}
	first := Render(doc)
	second := Render(doc)
	if first != second {
		t.Fatalf("render not deterministic:\n%#v\n%#v", first, second)
	}
}

func TestViewsGet(t *testing.T) {
	v := Views{JSON: "j", Markdown: "m", Plain: "p"}
	cases := map[ViewKind]string{
		ViewJSON:     "j",
		ViewMarkdown: "m",
		ViewPlain:    "p",
		"unknown":    "j",
	}
	for kind, want := range cases {
		if got := v.Get(kind); got != want {
			t.Fatalf("Get(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestParseViewKind(t *testing.T) {
	tests := []struct {
		in   string
		want ViewKind
		ok   bool
	}{
		{"json", ViewJSON, true},
		{"md", ViewMarkdown, true},
		{"markdown", ViewMarkdown, true},
		{"text", ViewPlain, true},
		{"plain", ViewPlain, true},
		{"yaml", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseViewKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseViewKind(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
