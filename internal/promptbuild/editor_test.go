package promptbuild

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kayz/cue/internal/apperr"
)

func TestEditorDispatchRegenerates(t *testing.T) {
	e := NewEditor(Document{})
	var got []Snapshot
	e.Subscribe(func(s Snapshot) { got = append(got, s) })

	if err := e.Dispatch(AddSection{Title: "Goal", Content: "Write code"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := e.Dispatch(AddRule{Text: "Be concise"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[1].Revision != 2 {
		t.Fatalf("revision = %d, want 2", got[1].Revision)
	}
	if e.Views().Plain != "Goal\n====\n\nWrite code\n\nRULES\n=====\n\n1. Be concise\n" {
		t.Fatalf("unexpected plain view %q", e.Views().Plain)
	}
}

func TestEditorFailedDispatchChangesNothing(t *testing.T) {
	e := NewEditor(Document{Rules: []string{"r"}})
	before := e.Snapshot()
	calls := 0
	e.Subscribe(func(Snapshot) { calls++ })

	err := e.Dispatch(AddSection{Title: "", Content: "x"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = e.Dispatch(RemoveRule{Index: 3})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	after := e.Snapshot()
	if after.Revision != before.Revision || after.Views != before.Views {
		t.Fatalf("state changed after failed dispatch: %#v vs %#v", after, before)
	}
	if calls != 0 {
		t.Fatalf("subscribers notified on failure: %d", calls)
	}
}

func TestEditorActiveView(t *testing.T) {
	e := NewEditor(Document{Sections: []Section{{"T", "C"}}})
	if e.Active() != ViewJSON {
		t.Fatalf("default active = %q", e.Active())
	}
	rev := e.Snapshot().Revision

	e.SetActive(ViewMarkdown)
	if e.ActiveText() != "## T\n\nC\n\n" {
		t.Fatalf("active text = %q", e.ActiveText())
	}
	if e.Snapshot().Revision != rev {
		t.Fatalf("switching views must not regenerate")
	}
}

func TestEditorUnsubscribe(t *testing.T) {
	e := NewEditor(Document{})
	calls := 0
	cancel := e.Subscribe(func(Snapshot) { calls++ })
	_ = e.Dispatch(AddRule{Text: "a"})
	cancel()
	_ = e.Dispatch(AddRule{Text: "b"})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestEditorConcurrentDispatch(t *testing.T) {
	e := NewEditor(Document{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Dispatch(AddRule{Text: "rule"})
		}()
	}
	wg.Wait()

	snap := e.Snapshot()
	if len(snap.Document.Rules) != 20 || snap.Revision != 20 {
		t.Fatalf("rules=%d revision=%d", len(snap.Document.Rules), snap.Revision)
	}
}

func TestLoadDocumentFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "doc.yaml")
	content := "sections:\n  - title: Goal\n    content: Write code\nrules:\n  - Be concise\n"
	if err := os.WriteFile(yamlPath, []byte(content), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	doc, err := LoadDocumentFile(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title != "Goal" || len(doc.Rules) != 1 {
		t.Fatalf("unexpected document: %#v", doc)
	}

	jsonPath := filepath.Join(dir, "out", "doc.json")
	if err := WriteDocumentFile(jsonPath, doc); err != nil {
		t.Fatalf("write json: %v", err)
	}
	again, err := LoadDocumentFile(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if Render(again) != Render(doc) {
		t.Fatalf("json round trip changed document")
	}
}

func TestLoadDocumentFileRejectsBlankRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"sections":[],"rules":["ok","  "]}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadDocumentFile(path)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rule 2") {
		t.Fatalf("error should name the entry: %v", err)
	}
}
