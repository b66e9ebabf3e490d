package system

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/metrics"
	"github.com/l1jgo/scenegraph/internal/scripting"
	"github.com/l1jgo/scenegraph/internal/world"
)

type pipeline struct {
	t         *testing.T
	scene     *world.Scene
	metrics   *metrics.Metrics
	runner    *coresys.Runner
	hier      *HierarchySystem
	transform *TransformSystem
	compact   *CompactSystem
	cleanup   *CleanupSystem
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := zap.NewNop()
	p := &pipeline{t: t, scene: world.NewScene(), metrics: metrics.New(), runner: coresys.NewRunner()}
	p.hier = NewHierarchySystem(p.scene, p.metrics, log)
	p.transform = NewTransformSystem(p.scene, p.hier.Hierarchy())
	p.compact = NewCompactSystem(p.scene, p.hier.Hierarchy(), 1, p.metrics, log)
	p.cleanup = NewCleanupSystem(p.scene, log)
	p.runner.Register(p.cleanup)
	p.runner.Register(p.compact)
	p.runner.Register(p.transform)
	p.runner.Register(p.hier)
	return p
}

func (p *pipeline) tick() { p.runner.Tick(time.Millisecond) }

func (p *pipeline) global(e ecs.EntityID) component.GlobalTransform {
	p.t.Helper()
	g, ok := p.scene.Global(e)
	require.True(p.t, ok, "no global transform for %v", e)
	return g
}

func assertAt(t *testing.T, g component.GlobalTransform, x, y, rot float64) {
	t.Helper()
	assert.InDelta(t, x, g.X, 1e-9, "x")
	assert.InDelta(t, y, g.Y, 1e-9, "y")
	assert.InDelta(t, rot, g.Rotation, 1e-9, "rotation")
}

// arm builds body <- arm <- hand <- finger with the arm turned 90 degrees.
func (p *pipeline) arm() (body, arm, hand, finger ecs.EntityID) {
	s := p.scene
	mk := func(name string, l component.Transform) ecs.EntityID {
		e, err := s.Spawn(name)
		require.NoError(p.t, err)
		require.NoError(p.t, s.SetLocal(e, l))
		return e
	}
	body = mk("body", component.Transform{X: 10, Y: 10})
	arm = mk("arm", component.Transform{X: 3, Rotation: 90})
	hand = mk("hand", component.Transform{X: 2})
	finger = mk("finger", component.Transform{X: 1})
	require.NoError(p.t, s.SetParent(finger, hand))
	require.NoError(p.t, s.SetParent(hand, arm))
	require.NoError(p.t, s.SetParent(arm, body))
	return body, arm, hand, finger
}

func TestTransformsComposeParentsFirst(t *testing.T) {
	p := newPipeline(t)
	body, arm, hand, finger := p.arm()

	p.tick()

	h := p.hier.Hierarchy()
	assert.Equal(t, []ecs.EntityID{arm, hand, finger}, h.All())
	assertAt(t, p.global(body), 10, 10, 0)
	assertAt(t, p.global(arm), 13, 10, 90)
	assertAt(t, p.global(hand), 13, 12, 90)
	assertAt(t, p.global(finger), 13, 13, 90)
	assert.Equal(t, 3.0, testutil.ToFloat64(p.metrics.Changes.WithLabelValues("inserted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.metrics.Tracked))
}

func TestMovingRootUpdatesSubtree(t *testing.T) {
	p := newPipeline(t)
	body, _, hand, finger := p.arm()
	p.tick()
	before := p.transform.Recomputed()

	require.NoError(t, p.scene.SetLocal(body, component.Transform{X: 0, Y: 0}))
	p.tick()

	assertAt(t, p.global(hand), 3, 2, 90)
	assertAt(t, p.global(finger), 3, 3, 90)
	assert.Equal(t, 4, p.transform.Recomputed()-before)
}

func TestReparentRecomputesMovedSubtree(t *testing.T) {
	p := newPipeline(t)
	_, _, hand, finger := p.arm()
	lamp, err := p.scene.Spawn("lamp")
	require.NoError(t, err)
	require.NoError(t, p.scene.SetLocal(lamp, component.Transform{X: -5}))
	p.tick()

	require.NoError(t, p.scene.SetParent(hand, lamp))
	p.tick()

	assertAt(t, p.global(hand), -3, 0, 0)
	assertAt(t, p.global(finger), -2, 0, 0)
	assert.Equal(t, 1, p.hier.Totals().Reparented)
}

func TestClearParentMakesRoot(t *testing.T) {
	p := newPipeline(t)
	_, arm, hand, finger := p.arm()
	p.tick()

	require.NoError(t, p.scene.ClearParent(arm))
	p.tick()

	h := p.hier.Hierarchy()
	assert.False(t, h.Contains(arm))
	assert.True(t, h.IsExternal(arm))
	assert.Equal(t, []ecs.EntityID{hand, finger}, h.All())
	assertAt(t, p.global(arm), 3, 0, 90)
	assertAt(t, p.global(hand), 3, 2, 90)
	assertAt(t, p.global(finger), 3, 3, 90)
}

func TestDespawnRemovesSubtreeNextTick(t *testing.T) {
	p := newPipeline(t)
	body, arm, hand, finger := p.arm()
	p.tick()

	require.NoError(t, p.scene.Despawn(arm))
	p.tick()
	assert.Equal(t, 3, p.cleanup.Destroyed())
	p.tick()

	h := p.hier.Hierarchy()
	assert.Zero(t, h.Len())
	assert.False(t, h.IsExternal(body))
	for _, e := range []ecs.EntityID{arm, hand, finger} {
		_, ok := p.scene.Global(e)
		assert.False(t, ok)
	}
	assertAt(t, p.global(body), 10, 10, 0)
	assert.Equal(t, 3, p.hier.Totals().Removed)
}

func TestCompactDropsConsumedEvents(t *testing.T) {
	p := newPipeline(t)
	p.arm()
	p.tick()

	h := p.hier.Hierarchy()
	assert.Zero(t, h.Changed().Len())
	assert.Zero(t, p.scene.Parents.Events().Len())
	assert.Zero(t, p.scene.Locals.Events().Len())
	assert.Positive(t, p.compact.Dropped())
	assert.Equal(t, 0.0, testutil.ToFloat64(p.metrics.LogRetained.WithLabelValues("hierarchy")))
}

func TestCompactHonoursInterval(t *testing.T) {
	p := newPipeline(t)
	c := NewCompactSystem(p.scene, p.hier.Hierarchy(), 3, p.metrics, zap.NewNop())
	p.arm()
	c.Update(0)
	c.Update(0)
	assert.Zero(t, c.Dropped())
	p.tick()
	c.Update(0)
	assert.Zero(t, c.Dropped(), "pipeline compactor already dropped everything")
}

func TestScriptSystemCountsErrors(t *testing.T) {
	p := newPipeline(t)
	lua, err := scripting.NewEngine("", p.scene, zap.NewNop())
	require.NoError(t, err)
	defer lua.Close()
	require.NoError(t, lua.DoString(`
		function on_tick(n)
			if n == 1 then assert(spawn("a")) assert(spawn("b", "a")) end
			if n == 2 then error("late") end
		end`))
	p.runner.Register(NewScriptSystem(lua, p.metrics))

	p.tick()
	assert.Equal(t, 1, p.hier.Hierarchy().Len())
	p.tick()
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.ScriptErrors))
}
