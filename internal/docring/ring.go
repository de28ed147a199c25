package docring

import "errors"

// Ring is the circular list of open documents:
// one of them is "current". Represented as an owning slice addressed by
// index rather than a doubly-linked list —
// the ring's neighbor-peek use cases (next/prev of current) are served
// by simple index arithmetic.
type Ring struct {
	docs    []*Document
	current int // index into docs, or -1 if empty
}

// ErrEmpty is returned by operations that require a current document
// when the ring holds none.
var ErrEmpty = errors.New("docring: ring is empty")

// New returns an empty Ring.
func New() *Ring { return &Ring{current: -1} }

// Add appends doc and makes it current.
func (r *Ring) Add(doc *Document) {
	r.docs = append(r.docs, doc)
	r.current = len(r.docs) - 1
}

// Current returns the current document, or nil if the ring is empty.
func (r *Ring) Current() *Document {
	if r.current < 0 || r.current >= len(r.docs) {
		return nil
	}
	return r.docs[r.current]
}

// Len reports how many documents are open.
func (r *Ring) Len() int { return len(r.docs) }

// All returns every open document, in ring order.
func (r *Ring) All() []*Document { return r.docs }

// FindByName returns the document named name, if open.
func (r *Ring) FindByName(name string) (*Document, bool) {
	for _, d := range r.docs {
		if d.Name == name || d.ReplacementName == name {
			return d, true
		}
	}
	return nil, false
}

// MoveToFront makes doc the current document (an atomic swap of the
// current pointer — no other component caches document-level state
// across such a swap).
func (r *Ring) MoveToFront(doc *Document) bool {
	for i, d := range r.docs {
		if d == doc {
			r.current = i
			return true
		}
	}
	return false
}

// Next returns the document structurally after the current one, wrapping
// around — used by 'B' (file list) style cycling.
func (r *Ring) Next() *Document {
	if len(r.docs) == 0 {
		return nil
	}
	return r.docs[(r.current+1)%len(r.docs)]
}

// Prev mirrors Next.
func (r *Ring) Prev() *Document {
	if len(r.docs) == 0 {
		return nil
	}
	return r.docs[(r.current-1+len(r.docs))%len(r.docs)]
}

// Kill removes doc from the ring, closing it, and returns the new
// current document (the previous neighbor; the new first document when
// the first one is killed; nil if the ring is now empty). Killing a document other than the current one doesn't move
// the current pointer unless the killed document WAS current.
func (r *Ring) Kill(doc *Document) (*Document, error) {
	idx := -1
	for i, d := range r.docs {
		if d == doc {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.New("docring: document not in ring")
	}

	_ = doc.Close()
	wasCurrent := idx == r.current

	r.docs = append(r.docs[:idx], r.docs[idx+1:]...)

	switch {
	case len(r.docs) == 0:
		r.current = -1
		return nil, nil
	case !wasCurrent:
		if idx < r.current {
			r.current--
		}
	default:
		r.current = idx - 1
		if r.current < 0 {
			r.current = 0
		}
	}
	return r.docs[r.current], nil
}
