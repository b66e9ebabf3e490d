package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	b := p.Create()
	require.True(t, p.Alive(a))
	assert.Equal(t, 2, p.Len())

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	p.Destroy(a) // stale, ignored
	assert.Equal(t, 1, p.Len())

	c := p.Create()
	assert.Equal(t, a.Index(), c.Index())
	assert.Equal(t, a.Generation()+1, c.Generation())
	assert.NotEqual(t, a, c)
	assert.True(t, p.Alive(b))
	assert.True(t, p.Alive(c))
	assert.False(t, p.Alive(NewEntityID(99, 0)))
}

func TestEntityIDString(t *testing.T) {
	assert.Equal(t, "3:2", NewEntityID(3, 2).String())
}

type link struct{ to EntityID }

func TestTrackedStoreRecordsChanges(t *testing.T) {
	s := NewTrackedStore[link]()
	feed := s.Track()

	s.Set(1, &link{to: 9})
	s.Set(1, &link{to: 8})
	s.Set(2, &link{to: 9})
	s.Remove(3) // absent, not recorded
	require.True(t, s.Modify(2, func(l *link) { l.to = 7 }))
	assert.False(t, s.Modify(3, func(*link) {}))

	ins, mod, rem := feed.Drain()
	assert.Equal(t, []EntityID{1, 2}, ins)
	assert.Equal(t, []EntityID{1, 2}, mod)
	assert.Empty(t, rem)

	s.Remove(1)
	s.Remove(1)
	ins, mod, rem = feed.Drain()
	assert.Empty(t, ins)
	assert.Empty(t, mod)
	assert.Equal(t, []EntityID{1}, rem)

	ins, mod, rem = feed.Drain()
	assert.Nil(t, ins)
	assert.Nil(t, mod)
	assert.Nil(t, rem)
}

func TestWorldFlushRemovesFromRegisteredStores(t *testing.T) {
	w := NewWorld()
	parents := NewTrackedStore[link]()
	names := NewPtrComponentStore[string]()
	w.Registry().Register(parents)
	w.Registry().Register(names)
	feed := parents.Track()

	e := w.CreateEntity()
	name := "door"
	names.Set(e, &name)
	parents.Set(e, &link{})
	feed.Drain()

	w.MarkForDestruction(e)
	w.MarkForDestruction(e)
	assert.Equal(t, 1, w.Pending())
	assert.True(t, w.Alive(e))

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(e))
	assert.False(t, names.Has(e))
	assert.False(t, parents.Has(e))
	_, _, rem := feed.Drain()
	assert.Equal(t, []EntityID{e}, rem)
	assert.Equal(t, 0, w.Pending())
}

func TestEach2VisitsIntersection(t *testing.T) {
	a := NewPtrComponentStore[int]()
	b := NewPtrComponentStore[string]()
	one, two, three := 1, 2, 3
	a.Set(1, &one)
	a.Set(2, &two)
	a.Set(3, &three)
	x := "x"
	b.Set(2, &x)

	var got []EntityID
	Each2(a, b, func(id EntityID, _ *int, _ *string) { got = append(got, id) })
	assert.Equal(t, []EntityID{2}, got)
}
