package promptbuild

import (
	"testing"

	"github.com/kayz/cue/internal/apperr"
)

func TestReduceAddSectionTrims(t *testing.T) {
	doc, err := Reduce(Document{}, AddSection{Title: "  Goal ", Content: "\tWrite code\n"})
	if err != nil {
		t.Fatalf("add section: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0] != (Section{Title: "Goal", Content: "Write code"}) {
		t.Fatalf("unexpected sections: %#v", doc.Sections)
	}
}

func TestReduceRejectsBlankInput(t *testing.T) {
	base := Document{Rules: []string{"keep"}}
	tests := []struct {
		name   string
		action Action
	}{
		{"empty title", AddSection{Title: "", Content: "x"}},
		{"whitespace title", AddSection{Title: "   ", Content: "x"}},
		{"empty content", AddSection{Title: "x", Content: " \n"}},
		{"empty rule", AddRule{Text: "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reduce(base, tt.action)
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(got.Sections) != 0 || len(got.Rules) != 1 || got.Rules[0] != "keep" {
				t.Fatalf("document changed on failure: %#v", got)
			}
		})
	}
}

func TestReduceRemoveKeepsOrder(t *testing.T) {
	doc := Document{
		Sections: []Section{{"a", "1"}, {"b", "2"}, {"c", "3"}},
		Rules:    []string{"r1", "r2", "r3"},
	}

	next, err := Reduce(doc, RemoveSection{Index: 1})
	if err != nil {
		t.Fatalf("remove section: %v", err)
	}
	if len(next.Sections) != 2 || next.Sections[0].Title != "a" || next.Sections[1].Title != "c" {
		t.Fatalf("unexpected sections: %#v", next.Sections)
	}

	next, err = Reduce(next, RemoveRule{Index: 0})
	if err != nil {
		t.Fatalf("remove rule: %v", err)
	}
	if len(next.Rules) != 2 || next.Rules[0] != "r2" || next.Rules[1] != "r3" {
		t.Fatalf("unexpected rules: %#v", next.Rules)
	}

	// the input document is never mutated
	if len(doc.Sections) != 3 || doc.Sections[1].Title != "b" || doc.Rules[0] != "r1" {
		t.Fatalf("input mutated: %#v", doc)
	}
}

func TestReduceRemoveOutOfRange(t *testing.T) {
	doc := Document{Sections: []Section{{"a", "1"}}, Rules: []string{"r"}}
	for _, a := range []Action{
		RemoveSection{Index: 1},
		RemoveSection{Index: -1},
		RemoveRule{Index: 5},
	} {
		got, err := Reduce(doc, a)
		if !apperr.IsNotFound(err) {
			t.Fatalf("%#v: expected not found, got %v", a, err)
		}
		if len(got.Sections) != 1 || len(got.Rules) != 1 {
			t.Fatalf("%#v: document changed: %#v", a, got)
		}
	}
}

func TestReduceReplace(t *testing.T) {
	src := Document{Sections: []Section{{"x", "y"}}}
	got, err := Reduce(Document{Rules: []string{"old"}}, Replace{Document: src})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(got.Rules) != 0 || got.Rules == nil {
		t.Fatalf("expected empty non-nil rules, got %#v", got.Rules)
	}
	src.Sections[0].Title = "mutated"
	if got.Sections[0].Title != "x" {
		t.Fatalf("replace shares storage with source")
	}
}

func TestReduceNilAction(t *testing.T) {
	if _, err := Reduce(Document{}, nil); err == nil {
		t.Fatalf("expected error for nil action")
	}
}
