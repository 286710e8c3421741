package promptbuild

// Section is one titled block of a prompt.
type Section struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Document is the prompt being edited: ordered sections and ordered rules.
// Both lists may be empty.
type Document struct {
	Sections []Section `json:"sections" yaml:"sections"`
	Rules    []string  `json:"rules" yaml:"rules"`
}

// Clone returns a deep copy with non-nil lists.
func (d Document) Clone() Document {
	out := Document{
		Sections: make([]Section, len(d.Sections)),
		Rules:    make([]string, len(d.Rules)),
	}
	copy(out.Sections, d.Sections)
	copy(out.Rules, d.Rules)
	return out
}

// IsEmpty reports whether the document has neither sections nor rules.
func (d Document) IsEmpty() bool {
	return len(d.Sections) == 0 && len(d.Rules) == 0
}

// ViewKind names one of the three rendered forms of a document.
type ViewKind string

const (
	ViewJSON     ViewKind = "json"
	ViewMarkdown ViewKind = "markdown"
	ViewPlain    ViewKind = "plain"
)

// ViewKinds lists the views in tab order.
var ViewKinds = []ViewKind{ViewJSON, ViewMarkdown, ViewPlain}

// ParseViewKind accepts a view name; "md" and "text" are accepted aliases.
func ParseViewKind(s string) (ViewKind, bool) {
	switch s {
	case "json":
		return ViewJSON, true
	case "markdown", "md":
		return ViewMarkdown, true
	case "plain", "text", "txt":
		return ViewPlain, true
	default:
		return "", false
	}
}

// Views holds the three renderings of one document state.
type Views struct {
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
	Plain    string `json:"plain"`
}

// Get returns the rendering for kind, defaulting to JSON.
func (v Views) Get(kind ViewKind) string {
	switch kind {
	case ViewMarkdown:
		return v.Markdown
	case ViewPlain:
		return v.Plain
	default:
		return v.JSON
	}
}
