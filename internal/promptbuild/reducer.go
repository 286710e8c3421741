package promptbuild

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kayz/cue/internal/apperr"
)

// Action is a document state transition.
type Action interface {
	apply(doc Document) (Document, error)
}

// AddSection appends a section. Title and content are trimmed and must be non-empty.
type AddSection struct {
	Title   string
	Content string
}

// RemoveSection deletes the section at Index.
type RemoveSection struct {
	Index int
}

// AddRule appends a rule. The text is trimmed and must be non-empty.
type AddRule struct {
	Text string
}

// RemoveRule deletes the rule at Index.
type RemoveRule struct {
	Index int
}

// Replace swaps in a whole document, as loading a template or library entry does.
type Replace struct {
	Document Document
}

// Reduce applies a to doc and returns the next document. doc is never
// modified; on error it is returned unchanged.
func Reduce(doc Document, a Action) (Document, error) {
	if a == nil {
		return doc, fmt.Errorf("nil action")
	}
	next, err := a.apply(doc.Clone())
	if err != nil {
		return doc, err
	}
	return next, nil
}

func (a AddSection) apply(doc Document) (Document, error) {
	title := strings.TrimSpace(a.Title)
	content := strings.TrimSpace(a.Content)
	if title == "" {
		return doc, apperr.Required("section title")
	}
	if content == "" {
		return doc, apperr.Required("section content")
	}
	doc.Sections = append(doc.Sections, Section{Title: title, Content: content})
	return doc, nil
}

func (a RemoveSection) apply(doc Document) (Document, error) {
	if a.Index < 0 || a.Index >= len(doc.Sections) {
		return doc, apperr.NotFound("section", strconv.Itoa(a.Index))
	}
	doc.Sections = append(doc.Sections[:a.Index], doc.Sections[a.Index+1:]...)
	return doc, nil
}

func (a AddRule) apply(doc Document) (Document, error) {
	text := strings.TrimSpace(a.Text)
	if text == "" {
		return doc, apperr.Required("rule")
	}
	doc.Rules = append(doc.Rules, text)
	return doc, nil
}

func (a RemoveRule) apply(doc Document) (Document, error) {
	if a.Index < 0 || a.Index >= len(doc.Rules) {
		return doc, apperr.NotFound("rule", strconv.Itoa(a.Index))
	}
	doc.Rules = append(doc.Rules[:a.Index], doc.Rules[a.Index+1:]...)
	return doc, nil
}

func (a Replace) apply(Document) (Document, error) {
	return a.Document.Clone(), nil
}
