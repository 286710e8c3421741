// Package library keeps named snapshots of prompt documents.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/persist"
	"github.com/kayz/cue/internal/promptbuild"
)

// Entry is one saved prompt.
type Entry struct {
	Name     string                `json:"name"`
	Sections []promptbuild.Section `json:"sections"`
	Rules    []string              `json:"rules"`
	SavedAt  time.Time             `json:"savedAt"`
}

// Document returns a copy of the entry's prompt.
func (e Entry) Document() promptbuild.Document {
	return promptbuild.Document{Sections: e.Sections, Rules: e.Rules}.Clone()
}

// UnmarshalJSON also accepts the older "date" field for the save time.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string                `json:"name"`
		Sections []promptbuild.Section `json:"sections"`
		Rules    []string              `json:"rules"`
		SavedAt  string                `json:"savedAt"`
		Date     string                `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Name = raw.Name
	e.Sections = raw.Sections
	e.Rules = raw.Rules
	e.SavedAt = time.Time{}

	ts := raw.SavedAt
	if ts == "" {
		ts = raw.Date
	}
	if ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("entry %q: bad timestamp %q: %w", raw.Name, ts, err)
		}
		e.SavedAt = t
	}
	return nil
}

// Library reads and writes the saved prompt list in a KV store.
type Library struct {
	kv  persist.KV
	mu  sync.Mutex
	now func() time.Time
}

func New(kv persist.KV) *Library {
	return &Library{kv: kv, now: time.Now}
}

// List returns every entry in save order.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx)
}

// Save appends doc under name. A blank name writes nothing.
func (l *Library) Save(ctx context.Context, name string, doc promptbuild.Document) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, apperr.Required("prompt name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read(ctx)
	if err != nil {
		return Entry{}, err
	}

	doc = doc.Clone()
	entry := Entry{
		Name:     name,
		Sections: doc.Sections,
		Rules:    doc.Rules,
		SavedAt:  l.now().UTC().Truncate(time.Second),
	}
	entries = append(entries, entry)
	if err := l.write(ctx, entries); err != nil {
		return Entry{}, err
	}

	logger.Info("[Library] saved %q (%d entries)", name, len(entries))
	return entry, nil
}

// Load returns the document stored at index.
func (l *Library) Load(ctx context.Context, index int) (promptbuild.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read(ctx)
	if err != nil {
		return promptbuild.Document{}, err
	}
	if index < 0 || index >= len(entries) {
		return promptbuild.Document{}, apperr.NotFound("library entry", strconv.Itoa(index))
	}
	return entries[index].Document(), nil
}

// Delete removes the entry at index and keeps the rest in order.
func (l *Library) Delete(ctx context.Context, index int) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read(ctx)
	if err != nil {
		return Entry{}, err
	}
	if index < 0 || index >= len(entries) {
		return Entry{}, apperr.NotFound("library entry", strconv.Itoa(index))
	}

	removed := entries[index]
	entries = append(entries[:index], entries[index+1:]...)
	if err := l.write(ctx, entries); err != nil {
		return Entry{}, err
	}

	logger.Info("[Library] deleted %q", removed.Name)
	return removed, nil
}

func (l *Library) read(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := persist.GetJSON(ctx, l.kv, persist.KeyLibrary, &entries); err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	return entries, nil
}

func (l *Library) write(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if err := persist.SetJSON(ctx, l.kv, persist.KeyLibrary, entries); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}
