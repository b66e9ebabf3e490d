package hierarchy

import "slices"

// Maintain drains the change feed and brings the hierarchy up to date:
//
//  1. removal: drop entities whose link was removed and every root parent
//     that died, together with their whole subtrees
//  2. insertion: place newly linked entities before any child they already
//     have
//  3. reparenting: move changed entities under their new parent; then, for
//     every entity placed or reparented in 2 and 3, pull its parent's
//     ancestors that sit after it forward to just before it
//  4. notification: write Modified for every inserted or reparented entity
//     and all of its descendants
//
// Positions are settled only after every link of the batch is recorded, so
// a batch that is acyclic as a whole is sorted correctly even when applying
// its links one at a time would pass through a cycle.
//
// The parent relation must be acyclic (see the package doc).
func (h *Hierarchy[E, P]) Maintain(alive Liveness[E], links Links[E, P]) Stats {
	inserted, modified, removed := h.feed.Drain()

	var st Stats
	st.Removed = h.removeStale(removed, alive)

	clear(h.scratch)
	h.unsettled = h.unsettled[:0]
	for _, e := range inserted {
		link, ok := links.Get(e)
		if !ok {
			continue
		}
		if h.Contains(e) {
			if h.reparent(e, link.ParentEntity()) {
				st.Reparented++
			}
			continue
		}
		h.insert(e, link.ParentEntity())
		st.Inserted++
	}
	for _, e := range modified {
		link, ok := links.Get(e)
		if !ok {
			continue
		}
		if !h.Contains(e) {
			h.insert(e, link.ParentEntity())
			st.Inserted++
			continue
		}
		if h.reparent(e, link.ParentEntity()) {
			st.Reparented++
		}
	}
	h.settle()

	st.Modified = h.notify()
	h.pruneExternal()
	return st
}

// removeStale is phase 1. The sorted sequence lists parents first, so a
// single forward scan that grows the purge set as it goes reaches every
// descendant of a purged entity.
func (h *Hierarchy[E, P]) removeStale(removed []E, alive Liveness[E]) int {
	purge := h.scratch
	clear(purge)
	for _, e := range removed {
		if h.Contains(e) {
			purge[e] = struct{}{}
		}
	}
	var dead []E
	for e := range h.external {
		if !alive.Alive(e) {
			purge[e] = struct{}{}
			dead = append(dead, e)
		}
	}
	if len(purge) == 0 {
		return 0
	}

	n := 0
	low := len(h.sorted)
	kept := h.sorted[:0]
	for i, e := range h.sorted {
		parent, linked := h.current[e]
		_, drop := purge[e]
		if !drop && linked {
			_, drop = purge[parent]
		}
		if !drop {
			kept = append(kept, e)
			continue
		}
		low = min(low, i)
		purge[e] = struct{}{}
		if linked {
			h.detach(e, parent)
		}
		delete(h.children, e)
		delete(h.index, e)
		delete(h.current, e)
		h.changed.Append(Event[E]{Kind: EventRemoved, Entity: e})
		n++
	}
	clear(h.sorted[len(kept):])
	h.sorted = kept
	h.reindex(low, len(h.sorted))

	for _, e := range dead {
		delete(h.children, e)
		delete(h.external, e)
		h.changed.Append(Event[E]{Kind: EventRemoved, Entity: e})
		n++
	}
	return n
}

// insert is phase 2 for a single entity. An entity that was already known
// as a parent goes in front of its earliest child.
func (h *Hierarchy[E, P]) insert(e, parent E) {
	pos := len(h.sorted)
	for _, c := range h.children[e] {
		pos = min(pos, h.mustIndex(c))
	}
	h.sorted = slices.Insert(h.sorted, pos, e)
	h.reindex(pos, len(h.sorted))

	h.attach(e, parent)
	h.current[e] = parent
	h.markExternal(parent)
	delete(h.external, e)
	h.scratch[e] = struct{}{}
	h.unsettled = append(h.unsettled, e)
}

// reparent is phase 3 for a single entity. It reports false when the link
// still names the recorded parent.
func (h *Hierarchy[E, P]) reparent(e, parent E) bool {
	old := h.current[e]
	if old == parent {
		return false
	}
	h.detach(e, old)
	h.attach(e, parent)
	h.current[e] = parent
	h.markExternal(parent)
	h.scratch[e] = struct{}{}
	h.unsettled = append(h.unsettled, e)
	return true
}

// settle restores parent-before-child for every entity placed or
// reparented this pass.
func (h *Hierarchy[E, P]) settle() {
	for _, e := range h.unsettled {
		at, ok := h.index[e]
		if !ok {
			continue
		}
		parent := h.current[e]
		if pi, ok := h.index[parent]; ok && pi > at {
			h.pullAncestors(at, parent)
		}
	}
	clear(h.unsettled)
	h.unsettled = h.unsettled[:0]
}

// pullAncestors moves parent, and every ancestor of it that also sits after
// position at, to just before position at. The moved chain keeps its
// top-down order and everything else in the disturbed range keeps its
// relative order, so no other parent/child pair is inverted. The range
// ends at the farthest chain member: within one batch an ancestor may sit
// after its own child.
func (h *Hierarchy[E, P]) pullAncestors(at int, parent E) {
	hi := at
	chain := make([]E, 0, 4)
	moved := make(map[E]struct{}, 4)
	for x := parent; len(chain) <= len(h.sorted); {
		i, ok := h.index[x]
		if !ok || i <= at {
			break
		}
		hi = max(hi, i)
		chain = append(chain, x)
		moved[x] = struct{}{}
		next, linked := h.current[x]
		if !linked {
			break
		}
		x = next
	}

	seg := h.sorted[at : hi+1]
	rest := make([]E, 0, len(seg)-len(chain))
	for _, x := range seg {
		if _, ok := moved[x]; !ok {
			rest = append(rest, x)
		}
	}
	k := 0
	for i := len(chain) - 1; i >= 0; i-- {
		seg[k] = chain[i]
		k++
	}
	copy(seg[k:], rest)
	h.reindex(at, hi+1)
}

// markExternal records parent as a root parent when it has no link of its
// own, so phase 1 can check whether it is still alive.
func (h *Hierarchy[E, P]) markExternal(parent E) {
	if _, linked := h.current[parent]; !linked {
		h.external[parent] = struct{}{}
	}
}

// notify is phase 4: a forward scan in which dirtiness flows from parents to
// their children.
func (h *Hierarchy[E, P]) notify() int {
	dirty := h.scratch
	if len(dirty) == 0 {
		return 0
	}
	n := 0
	for _, e := range h.sorted {
		_, mark := dirty[e]
		if !mark {
			if p, ok := h.current[e]; ok {
				_, mark = dirty[p]
			}
		}
		if !mark {
			continue
		}
		dirty[e] = struct{}{}
		h.changed.Append(Event[E]{Kind: EventModified, Entity: e})
		n++
	}
	clear(dirty)
	return n
}

// pruneExternal forgets root parents that no longer have children.
func (h *Hierarchy[E, P]) pruneExternal() {
	for e := range h.external {
		if _, ok := h.children[e]; !ok {
			delete(h.external, e)
		}
	}
}
