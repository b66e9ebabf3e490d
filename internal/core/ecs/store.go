package ecs

import "github.com/l1jgo/scenegraph/internal/core/event"

// Removable is implemented by every component store so the Registry can
// strip a destroyed entity from all of them.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a typed map from entity to component pointer.
// Mutating a component through the returned pointer is invisible to change
// tracking; use TrackedStore when readers need to observe writes.
type PtrComponentStore[T any] struct {
	data map[EntityID]*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{data: make(map[EntityID]*T, 256)}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) { s.data[id] = c }

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) { delete(s.data, id) }

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int { return len(s.data) }

// Each visits every component in unspecified order.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// ComponentEventKind says what happened to a tracked component.
type ComponentEventKind uint8

const (
	ComponentInserted ComponentEventKind = iota
	ComponentModified
	ComponentRemoved
)

func (k ComponentEventKind) String() string {
	switch k {
	case ComponentInserted:
		return "inserted"
	case ComponentModified:
		return "modified"
	case ComponentRemoved:
		return "removed"
	}
	return "unknown"
}

// ComponentEvent is one entry of a TrackedStore's change log.
type ComponentEvent struct {
	Kind ComponentEventKind
	ID   EntityID
}

// TrackedStore is a component store that records every insert, write and
// removal into an append-only log. Systems that react to changes hold a
// ChangeReader cursor on it instead of diffing the store each tick.
type TrackedStore[T any] struct {
	*PtrComponentStore[T]
	events *event.Log[ComponentEvent]
}

func NewTrackedStore[T any]() *TrackedStore[T] {
	return &TrackedStore[T]{
		PtrComponentStore: NewPtrComponentStore[T](),
		events:            event.NewLog[ComponentEvent](),
	}
}

// Set stores c for id, recording Inserted for a new entity and Modified when
// it replaces an existing component.
func (s *TrackedStore[T]) Set(id EntityID, c *T) {
	kind := ComponentInserted
	if s.Has(id) {
		kind = ComponentModified
	}
	s.PtrComponentStore.Set(id, c)
	s.events.Append(ComponentEvent{Kind: kind, ID: id})
}

// Modify applies fn to the stored component and records Modified. It
// reports false when id has no component.
func (s *TrackedStore[T]) Modify(id EntityID, fn func(*T)) bool {
	c, ok := s.Get(id)
	if !ok {
		return false
	}
	fn(c)
	s.events.Append(ComponentEvent{Kind: ComponentModified, ID: id})
	return true
}

// Remove deletes the component and records Removed. Absent ids are ignored.
func (s *TrackedStore[T]) Remove(id EntityID) {
	if !s.Has(id) {
		return
	}
	s.PtrComponentStore.Remove(id)
	s.events.Append(ComponentEvent{Kind: ComponentRemoved, ID: id})
}

// Events exposes the raw change log, mainly so the owner can Compact it.
func (s *TrackedStore[T]) Events() *event.Log[ComponentEvent] { return s.events }

// Track returns a cursor that sees changes made from now on.
func (s *TrackedStore[T]) Track() *ChangeReader {
	return &ChangeReader{reader: s.events.Track()}
}

// ChangeReader groups a tracked store's events into per-kind id sets.
type ChangeReader struct {
	reader *event.Reader[ComponentEvent]
}

// Drain returns the ids inserted, modified and removed since the previous
// Drain. Each list holds an id at most once, in first-seen order; an id may
// appear in more than one list when several things happened to it.
func (c *ChangeReader) Drain() (inserted, modified, removed []EntityID) {
	var seen [3]map[EntityID]struct{}
	for _, ev := range c.reader.Read() {
		set := &seen[ev.Kind]
		if *set == nil {
			*set = make(map[EntityID]struct{})
		}
		if _, dup := (*set)[ev.ID]; dup {
			continue
		}
		(*set)[ev.ID] = struct{}{}
		switch ev.Kind {
		case ComponentInserted:
			inserted = append(inserted, ev.ID)
		case ComponentModified:
			modified = append(modified, ev.ID)
		case ComponentRemoved:
			removed = append(removed, ev.ID)
		}
	}
	return inserted, modified, removed
}

// Close releases the cursor.
func (c *ChangeReader) Close() { c.reader.Close() }
