package promptbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDocumentFile reads a YAML or JSON file holding {sections, rules}. Every
// entry goes through the same validation as interactive edits.
func LoadDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document file %s: %w", path, err)
	}

	var raw Document
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("parse document file %s: %w", path, err)
	}

	doc, err := BuildDocument(raw)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document file %s: %w", path, err)
	}
	return doc, nil
}

// BuildDocument replays raw's sections and rules through Reduce, so the
// result satisfies the same checks as AddSection and AddRule.
func BuildDocument(raw Document) (Document, error) {
	doc := Document{}.Clone()
	var err error
	for i, sec := range raw.Sections {
		doc, err = Reduce(doc, AddSection{Title: sec.Title, Content: sec.Content})
		if err != nil {
			return Document{}, fmt.Errorf("section %d: %w", i+1, err)
		}
	}
	for i, rule := range raw.Rules {
		doc, err = Reduce(doc, AddRule{Text: rule})
		if err != nil {
			return Document{}, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return doc, nil
}

// WriteDocumentFile writes doc as JSON when path ends in .json, YAML otherwise.
func WriteDocumentFile(path string, doc Document) error {
	doc = doc.Clone()

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
