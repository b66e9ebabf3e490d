package event

import "slices"

// Log is an append-only event log read through independent cursors.
// Writers append in emission order; every Reader advances at its own pace.
// Entries are only discarded by Compact, and only once every open Reader
// has consumed them.
//
// Not safe for concurrent use. Like the rest of the tick loop it is owned by
// a single goroutine.
type Log[T any] struct {
	entries []T
	base    uint64 // absolute offset of entries[0]
	readers map[*Reader[T]]struct{}
}

func NewLog[T any]() *Log[T] {
	return &Log[T]{
		entries: make([]T, 0, 64),
		readers: make(map[*Reader[T]]struct{}),
	}
}

// Append writes one event at the end of the log.
func (l *Log[T]) Append(ev T) {
	l.entries = append(l.entries, ev)
}

// Len returns the number of retained (not yet compacted) entries.
func (l *Log[T]) Len() int { return len(l.entries) }

// End returns the absolute offset one past the newest entry.
func (l *Log[T]) End() uint64 { return l.base + uint64(len(l.entries)) }

// Readers returns the number of open cursors.
func (l *Log[T]) Readers() int { return len(l.readers) }

// Track registers a new cursor positioned at the end of the log, so it sees
// only events appended from now on.
func (l *Log[T]) Track() *Reader[T] {
	r := &Reader[T]{log: l, pos: l.End()}
	l.readers[r] = struct{}{}
	return r
}

// Compact drops every entry all open readers have already consumed and
// returns how many were dropped. With no open readers the whole log is
// dropped.
func (l *Log[T]) Compact() int {
	low := l.End()
	for r := range l.readers {
		if r.pos < low {
			low = r.pos
		}
	}
	n := int(low - l.base)
	if n == 0 {
		return 0
	}
	l.entries = slices.Clone(l.entries[n:])
	l.base = low
	return n
}

// Reader is a cursor into a Log.
type Reader[T any] struct {
	log *Log[T]
	pos uint64
}

// Read returns all entries appended since the previous Read and advances
// the cursor past them. The returned slice aliases the log and must not be
// retained across Compact; it has no spare capacity, so appending to it
// copies instead of overwriting later entries.
func (r *Reader[T]) Read() []T {
	if r.log == nil {
		return nil
	}
	start := int(r.pos - r.log.base)
	end := len(r.log.entries)
	out := r.log.entries[start:end:end]
	r.pos = r.log.End()
	return out
}

// Pending returns how many entries Read would return.
func (r *Reader[T]) Pending() int {
	if r.log == nil {
		return 0
	}
	return int(r.log.End() - r.pos)
}

// Clone returns an independent cursor at the same position, which lets a
// subscriber replay from a saved point.
func (r *Reader[T]) Clone() *Reader[T] {
	if r.log == nil {
		return &Reader[T]{}
	}
	c := &Reader[T]{log: r.log, pos: r.pos}
	r.log.readers[c] = struct{}{}
	return c
}

// Close detaches the cursor so it no longer pins entries against Compact.
func (r *Reader[T]) Close() {
	if r.log == nil {
		return
	}
	delete(r.log.readers, r)
	r.log = nil
}
