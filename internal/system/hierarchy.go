package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/hierarchy"
	"github.com/l1jgo/scenegraph/internal/metrics"
	"github.com/l1jgo/scenegraph/internal/world"
)

// SceneHierarchy is the hierarchy of a scene's Parent links.
type SceneHierarchy = hierarchy.Hierarchy[ecs.EntityID, *component.Parent]

// HierarchySystem keeps the sorted parent/child view of the scene current.
// Phase 2 (Hierarchy): after scripts have edited links, before transforms
// are propagated.
type HierarchySystem struct {
	scene   *world.Scene
	h       *SceneHierarchy
	metrics *metrics.Metrics
	log     *zap.Logger
	total   hierarchy.Stats
}

func NewHierarchySystem(scene *world.Scene, m *metrics.Metrics, log *zap.Logger) *HierarchySystem {
	return &HierarchySystem{
		scene:   scene,
		h:       hierarchy.New[ecs.EntityID, *component.Parent](scene.Parents.Track()),
		metrics: m,
		log:     log,
	}
}

func (s *HierarchySystem) Phase() coresys.Phase { return coresys.PhaseHierarchy }

func (s *HierarchySystem) Update(_ time.Duration) {
	start := time.Now()
	st := s.h.Maintain(s.scene.World(), s.scene.Parents)
	s.metrics.MaintainDuration.Observe(time.Since(start).Seconds())
	s.metrics.Tracked.Set(float64(s.h.Len()))
	if st.Empty() {
		return
	}

	s.metrics.Changes.WithLabelValues("inserted").Add(float64(st.Inserted))
	s.metrics.Changes.WithLabelValues("reparented").Add(float64(st.Reparented))
	s.metrics.Changes.WithLabelValues("removed").Add(float64(st.Removed))
	s.metrics.Changes.WithLabelValues("modified").Add(float64(st.Modified))
	s.total.Inserted += st.Inserted
	s.total.Reparented += st.Reparented
	s.total.Removed += st.Removed
	s.total.Modified += st.Modified

	s.log.Debug("hierarchy maintained",
		zap.Int("inserted", st.Inserted),
		zap.Int("reparented", st.Reparented),
		zap.Int("removed", st.Removed),
		zap.Int("modified", st.Modified),
		zap.Int("tracked", s.h.Len()),
	)
}

// Hierarchy exposes the maintained view to later systems and the CLI.
func (s *HierarchySystem) Hierarchy() *SceneHierarchy { return s.h }

// Totals returns the sum of every pass so far.
func (s *HierarchySystem) Totals() hierarchy.Stats { return s.total }
