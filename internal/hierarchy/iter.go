package hierarchy

import "iter"

// SubtreeIter walks the descendants of one entity in sorted order without
// building the subtree first. It scans the sorted sequence from the root's
// earliest child up to the farthest descendant seen so far, pushing that
// bound out whenever a yielded entity has a child further along.
type SubtreeIter[E comparable] struct {
	root     E
	sorted   []E
	index    map[E]int
	children map[E][]E
	current  map[E]E

	cur, end int
	members  map[E]struct{}
}

// AllChildrenIter returns an iterator over the descendants of e, excluding e.
func (h *Hierarchy[E, P]) AllChildrenIter(e E) *SubtreeIter[E] {
	it := &SubtreeIter[E]{
		root:     e,
		sorted:   h.sorted,
		index:    h.index,
		children: h.children,
		current:  h.current,
		members:  make(map[E]struct{}),
	}
	it.Reset()
	return it
}

// Descendants is AllChildrenIter as a range-over-func sequence.
func (h *Hierarchy[E, P]) Descendants(e E) iter.Seq[E] {
	return func(yield func(E) bool) {
		it := h.AllChildrenIter(e)
		for {
			c, ok := it.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}

// Reset rewinds the iterator to the first descendant.
func (it *SubtreeIter[E]) Reset() {
	clear(it.members)
	it.members[it.root] = struct{}{}
	it.cur, it.end = len(it.sorted), -1
	for _, c := range it.children[it.root] {
		i := it.position(c)
		it.cur = min(it.cur, i)
		it.end = max(it.end, i)
	}
}

// Next returns the next descendant, or false when the subtree is exhausted.
func (it *SubtreeIter[E]) Next() (E, bool) {
	for it.cur <= it.end {
		e := it.sorted[it.cur]
		it.cur++
		p, ok := it.current[e]
		if !ok {
			continue
		}
		if _, in := it.members[p]; !in {
			continue
		}
		it.members[e] = struct{}{}
		for _, c := range it.children[e] {
			it.end = max(it.end, it.position(c))
		}
		return e, true
	}
	var zero E
	return zero, false
}

func (it *SubtreeIter[E]) position(e E) int {
	i, ok := it.index[e]
	if !ok {
		panic("hierarchy: child without a position in subtree walk")
	}
	return i
}
