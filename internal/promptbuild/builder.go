package promptbuild

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Render builds all three views of doc. Output depends only on doc, so an
// unchanged document always renders byte-identical views.
func Render(doc Document) Views {
	doc = doc.Clone()
	return Views{
		JSON:     renderJSON(doc),
		Markdown: renderMarkdown(doc),
		Plain:    renderPlain(doc),
	}
}

func renderJSON(doc Document) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		// Document holds only strings; encoding cannot fail.
		return "{}"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func renderMarkdown(doc Document) string {
	var out strings.Builder
	for _, s := range doc.Sections {
		out.WriteString("## ")
		out.WriteString(s.Title)
		out.WriteString("\n\n")
		out.WriteString(s.Content)
		out.WriteString("\n\n")
	}
	if len(doc.Rules) > 0 {
		out.WriteString("## Rules\n\n")
		writeNumbered(&out, doc.Rules)
	}
	return out.String()
}

func renderPlain(doc Document) string {
	var out strings.Builder
	for _, s := range doc.Sections {
		out.WriteString(s.Title)
		out.WriteString("\n")
		out.WriteString(strings.Repeat("=", utf8.RuneCountInString(s.Title)))
		out.WriteString("\n\n")
		out.WriteString(s.Content)
		out.WriteString("\n\n")
	}
	if len(doc.Rules) > 0 {
		out.WriteString("RULES\n=====\n\n")
		writeNumbered(&out, doc.Rules)
	}
	return out.String()
}

func writeNumbered(out *strings.Builder, items []string) {
	for i, item := range items {
		out.WriteString(strconv.Itoa(i + 1))
		out.WriteString(". ")
		out.WriteString(item)
		out.WriteString("\n")
	}
}
