package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/metrics"
	"github.com/l1jgo/scenegraph/internal/world"
)

// CompactSystem trims the change logs every N ticks, dropping entries every
// reader has consumed. Phase 4 (Output).
type CompactSystem struct {
	scene   *world.Scene
	h       *SceneHierarchy
	every   int
	metrics *metrics.Metrics
	log     *zap.Logger

	tickCount int
	dropped   int
}

// NewCompactSystem compacts every `every` ticks; values below 1 mean every
// tick.
func NewCompactSystem(scene *world.Scene, h *SceneHierarchy, every int, m *metrics.Metrics, log *zap.Logger) *CompactSystem {
	return &CompactSystem{scene: scene, h: h, every: max(every, 1), metrics: m, log: log}
}

func (s *CompactSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *CompactSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount%s.every != 0 {
		return
	}
	hier := s.h.Changed().Compact()
	parents := s.scene.Parents.Events().Compact()
	locals := s.scene.Locals.Events().Compact()
	s.dropped += hier + parents + locals

	s.metrics.LogRetained.WithLabelValues("hierarchy").Set(float64(s.h.Changed().Len()))
	s.metrics.LogRetained.WithLabelValues("parents").Set(float64(s.scene.Parents.Events().Len()))
	s.metrics.LogRetained.WithLabelValues("locals").Set(float64(s.scene.Locals.Events().Len()))

	if hier+parents+locals > 0 {
		s.log.Debug("change logs compacted",
			zap.Int("hierarchy", hier),
			zap.Int("parents", parents),
			zap.Int("locals", locals),
		)
	}
}

// Dropped returns the total number of compacted entries.
func (s *CompactSystem) Dropped() int { return s.dropped }
