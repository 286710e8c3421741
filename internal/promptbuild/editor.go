package promptbuild

import (
	"sync"
)

// Snapshot is an immutable view of the editor after a change.
type Snapshot struct {
	Document Document `json:"document"`
	Views    Views    `json:"views"`
	Active   ViewKind `json:"active"`
	// Revision counts view regenerations.
	Revision uint64 `json:"revision"`
}

// Editor owns one document for a session. It applies actions through Reduce,
// regenerates the views after each successful change and tells subscribers.
type Editor struct {
	mu     sync.RWMutex
	doc    Document
	views  Views
	active ViewKind
	rev    uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewEditor starts a session on doc with the JSON view active.
func NewEditor(doc Document) *Editor {
	doc = doc.Clone()
	return &Editor{
		doc:    doc,
		views:  Render(doc),
		active: ViewJSON,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Dispatch applies a. A failed action changes nothing and regenerates nothing.
func (e *Editor) Dispatch(a Action) error {
	e.mu.Lock()
	next, err := Reduce(e.doc, a)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.doc = next
	e.views = Render(next)
	e.rev++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

// SetActive focuses a view. Only subscribers hear about it; nothing is re-rendered.
func (e *Editor) SetActive(kind ViewKind) {
	e.mu.Lock()
	e.active = kind
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}

func (e *Editor) Active() ViewKind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// ActiveText returns the focused view's rendering.
func (e *Editor) ActiveText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.views.Get(e.active)
}

func (e *Editor) Document() Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Clone()
}

func (e *Editor) Views() Views {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.views
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	return Snapshot{
		Document: e.doc.Clone(),
		Views:    e.views,
		Active:   e.active,
		Revision: e.rev,
	}
}

// Subscribe registers fn for every later change. The returned func removes it.
func (e *Editor) Subscribe(fn func(Snapshot)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Editor) notify(snap Snapshot) {
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
