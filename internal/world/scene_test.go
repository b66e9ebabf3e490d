package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

func spawn(t *testing.T, s *Scene, names ...string) []ecs.EntityID {
	t.Helper()
	out := make([]ecs.EntityID, len(names))
	for i, n := range names {
		e, err := s.Spawn(n)
		require.NoError(t, err)
		out[i] = e
	}
	return out
}

func TestSpawnRegistersName(t *testing.T) {
	s := NewScene()
	es := spawn(t, s, "root", "")

	got, ok := s.Lookup("root")
	require.True(t, ok)
	assert.Equal(t, es[0], got)
	assert.Equal(t, "root", s.NameOf(es[0]))
	assert.Equal(t, es[1].String(), s.NameOf(es[1]))
	assert.True(t, s.Locals.Has(es[1]))

	_, err := s.Spawn("root")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestSetParentRejectsCycles(t *testing.T) {
	s := NewScene()
	es := spawn(t, s, "a", "b", "c")
	a, b, c := es[0], es[1], es[2]

	require.NoError(t, s.SetParent(b, a))
	require.NoError(t, s.SetParent(c, b))

	assert.ErrorIs(t, s.SetParent(a, c), ErrCycle)
	assert.ErrorIs(t, s.SetParent(a, a), ErrSelfLink)

	p, ok := s.Parents.Get(c)
	require.True(t, ok)
	assert.Equal(t, b, p.Entity)
}

func TestSetParentRecordsChanges(t *testing.T) {
	s := NewScene()
	es := spawn(t, s, "a", "b", "c")
	changes := s.Parents.Track()

	require.NoError(t, s.SetParent(es[2], es[0]))
	require.NoError(t, s.SetParent(es[2], es[0]))
	require.NoError(t, s.SetParent(es[2], es[1]))

	inserted, modified, removed := changes.Drain()
	assert.Equal(t, []ecs.EntityID{es[2]}, inserted)
	assert.Equal(t, []ecs.EntityID{es[2]}, modified)
	assert.Empty(t, removed)
}

func TestClearParentTouchesDescendants(t *testing.T) {
	s := NewScene()
	es := spawn(t, s, "a", "b", "c", "d")
	require.NoError(t, s.SetParent(es[1], es[0]))
	require.NoError(t, s.SetParent(es[2], es[1]))
	require.NoError(t, s.SetParent(es[3], es[2]))
	changes := s.Parents.Track()

	require.NoError(t, s.ClearParent(es[1]))

	_, modified, removed := changes.Drain()
	assert.Equal(t, []ecs.EntityID{es[1]}, removed)
	assert.ElementsMatch(t, []ecs.EntityID{es[2], es[3]}, modified)
	assert.False(t, s.Parents.Has(es[1]))
}

func TestDespawnTakesSubtreeAtFlush(t *testing.T) {
	s := NewScene()
	es := spawn(t, s, "a", "b", "c", "other")
	require.NoError(t, s.SetParent(es[1], es[0]))
	require.NoError(t, s.SetParent(es[2], es[1]))

	require.NoError(t, s.Despawn(es[0]))
	assert.True(t, s.World().Alive(es[0]), "destruction is deferred")

	assert.Equal(t, 3, s.World().FlushDestroyQueue())
	for _, e := range es[:3] {
		assert.False(t, s.World().Alive(e))
		assert.False(t, s.Parents.Has(e))
	}
	_, ok := s.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	assert.ErrorIs(t, s.Despawn(es[0]), ErrNoEntity)
}

func TestSetLocalAndGlobal(t *testing.T) {
	s := NewScene()
	e := spawn(t, s, "a")[0]

	require.NoError(t, s.SetLocal(e, component.Transform{X: 3, Y: 4}))
	l, ok := s.Locals.Get(e)
	require.True(t, ok)
	assert.Equal(t, 3.0, l.X)

	_, ok = s.Global(e)
	assert.False(t, ok)
	s.Globals.Set(e, &component.GlobalTransform{X: 1})
	g, ok := s.Global(e)
	require.True(t, ok)
	assert.Equal(t, 1.0, g.X)
}
