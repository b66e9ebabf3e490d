// Package hierarchy maintains a parent-before-child ordering of every entity
// that carries a parent link, updated incrementally from the link store's
// change events once per tick.
//
// The parent relation must be acyclic. Nothing in this package checks that:
// if a cycle is ever introduced, the sorted order, the child lists and the
// change events become unspecified until the cycle is broken and the
// affected links are removed. Preventing cycles is the caller's job.
//
// A Hierarchy is not safe for concurrent use. Slices returned by All and
// Children, and any SubtreeIter, are views that are only valid until the
// next call to Maintain.
package hierarchy

import (
	"fmt"

	"github.com/l1jgo/scenegraph/internal/core/event"
)

// Link is a parent link component.
type Link[E comparable] interface {
	ParentEntity() E
}

// ChangeFeed reports which entities had their parent link inserted, modified
// or removed since the previous Drain.
type ChangeFeed[E comparable] interface {
	Drain() (inserted, modified, removed []E)
}

// Links looks up an entity's current parent link.
type Links[E comparable, P Link[E]] interface {
	Get(e E) (P, bool)
}

// Liveness reports whether an entity still exists.
type Liveness[E comparable] interface {
	Alive(e E) bool
}

type EventKind uint8

const (
	// EventModified: the entity was inserted or reparented this tick, or one
	// of its ancestors was.
	EventModified EventKind = iota + 1
	// EventRemoved: the entity left the hierarchy, directly or because an
	// ancestor did. It is also written for a dead root parent, which was
	// never in All and never reported as Modified.
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	}
	return "unknown"
}

// Event is one entry of the hierarchy change log.
type Event[E comparable] struct {
	Kind   EventKind
	Entity E
}

// Stats summarizes one Maintain call.
type Stats struct {
	Inserted   int // entities that entered the sorted sequence
	Reparented int // tracked entities whose parent changed
	Removed    int // Removed events written
	Modified   int // Modified events written
}

// Empty reports whether the pass changed nothing.
func (s Stats) Empty() bool { return s == Stats{} }

// Hierarchy is the sorted view plus the adjacency maps needed to keep it
// sorted. Invariants between Maintain calls:
//   - index[sorted[i]] == i for every i
//   - if current[e] is itself in sorted, it sits before e
//   - e appears exactly once in children[current[e]]; no list is empty
//   - every member of external has no current entry
type Hierarchy[E comparable, P Link[E]] struct {
	feed ChangeFeed[E]

	sorted   []E
	index    map[E]int
	children map[E][]E
	current  map[E]E
	external map[E]struct{}

	// scratch is the purge set in phase 1 and the dirty set in phases 2-4.
	scratch map[E]struct{}
	// unsettled lists entities placed or reparented this pass whose parent
	// may still sit after them.
	unsettled []E

	changed *event.Log[Event[E]]
}

// New creates an empty hierarchy fed by feed for its whole lifetime.
func New[E comparable, P Link[E]](feed ChangeFeed[E]) *Hierarchy[E, P] {
	return &Hierarchy[E, P]{
		feed:     feed,
		sorted:   make([]E, 0, 64),
		index:    make(map[E]int, 64),
		children: make(map[E][]E, 64),
		current:  make(map[E]E, 64),
		external: make(map[E]struct{}),
		scratch:  make(map[E]struct{}),
		changed:  event.NewLog[Event[E]](),
	}
}

// All returns every linked entity, parents before their descendants.
func (h *Hierarchy[E, P]) All() []E { return h.sorted }

// Len returns the number of linked entities.
func (h *Hierarchy[E, P]) Len() int { return len(h.sorted) }

// Contains reports whether e is in the sorted sequence.
func (h *Hierarchy[E, P]) Contains(e E) bool {
	_, ok := h.index[e]
	return ok
}

// Position returns e's index in All.
func (h *Hierarchy[E, P]) Position(e E) (int, bool) {
	i, ok := h.index[e]
	return i, ok
}

// Children returns the immediate children of e in the order they were
// attached.
func (h *Hierarchy[E, P]) Children(e E) []E { return h.children[e] }

// Parent returns the parent e currently resolves to.
func (h *Hierarchy[E, P]) Parent(e E) (E, bool) {
	p, ok := h.current[e]
	return p, ok
}

// IsExternal reports whether e is referenced as a parent without being
// linked itself.
func (h *Hierarchy[E, P]) IsExternal(e E) bool {
	_, ok := h.external[e]
	return ok
}

// AllChildren returns every descendant of e, excluding e.
func (h *Hierarchy[E, P]) AllChildren(e E) map[E]struct{} {
	out := make(map[E]struct{})
	stack := append([]E(nil), h.children[e]...)
	for len(stack) > 0 {
		n := len(stack) - 1
		c := stack[n]
		stack = stack[:n]
		out[c] = struct{}{}
		stack = append(stack, h.children[c]...)
	}
	return out
}

// Track returns a cursor over change events written from now on.
func (h *Hierarchy[E, P]) Track() *event.Reader[Event[E]] { return h.changed.Track() }

// Changed exposes the change log so its owner can Compact it.
func (h *Hierarchy[E, P]) Changed() *event.Log[Event[E]] { return h.changed }

func (h *Hierarchy[E, P]) mustIndex(e E) int {
	i, ok := h.index[e]
	if !ok {
		panic(fmt.Sprintf("hierarchy: %v is linked as a child but has no position", e))
	}
	return i
}

func (h *Hierarchy[E, P]) reindex(from, to int) {
	for i := from; i < to; i++ {
		h.index[h.sorted[i]] = i
	}
}

func (h *Hierarchy[E, P]) attach(e, parent E) {
	h.children[parent] = append(h.children[parent], e)
}

// detach removes e from parent's child list, keeping the others in order.
func (h *Hierarchy[E, P]) detach(e, parent E) {
	list := h.children[parent]
	for i, c := range list {
		if c != e {
			continue
		}
		if len(list) == 1 {
			delete(h.children, parent)
			return
		}
		h.children[parent] = append(list[:i], list[i+1:]...)
		return
	}
}
