// Package templates holds the prompt template catalog: immutable prebuilt
// templates plus user-submitted or imported community templates.
package templates

import (
	"fmt"
	"strings"

	"github.com/kayz/cue/internal/promptbuild"
)

// Source selects one of the two disjoint template namespaces.
type Source string

const (
	SourcePrebuilt  Source = "prebuilt"
	SourceCommunity Source = "community"
)

// ParseSource maps a name to a Source. Empty means prebuilt.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prebuilt":
		return SourcePrebuilt, nil
	case "community":
		return SourceCommunity, nil
	default:
		return "", fmt.Errorf("unknown template source %q (use prebuilt or community)", s)
	}
}

// CategoryAll matches every template in Filter.
const CategoryAll = "all"

// Author credits a template. GitHubURL keeps the "github" key of existing files.
type Author struct {
	Name      string `json:"name"`
	GitHubURL string `json:"github"`
}

// Template is a ready-made document plus catalog metadata.
type Template struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Author      Author                `json:"author"`
	Rating      float64               `json:"rating"`
	Downloads   int                   `json:"downloads"`
	Sections    []promptbuild.Section `json:"sections"`
	Rules       []string              `json:"rules"`
	Featured    bool                  `json:"featured,omitempty"`
}

// Document returns a deep copy of the template's prompt.
func (t Template) Document() promptbuild.Document {
	return promptbuild.Document{Sections: t.Sections, Rules: t.Rules}.Clone()
}

func (t Template) clone() Template {
	doc := t.Document()
	t.Sections = doc.Sections
	t.Rules = doc.Rules
	return t
}

// SubmitFields is the metadata a user enters when publishing the current document.
type SubmitFields struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AuthorName  string `json:"authorName"`
	AuthorURL   string `json:"authorGithub"`
}
