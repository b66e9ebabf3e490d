package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// The hierarchy notices the destroyed links on the next tick.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	scene     *world.Scene
	log       *zap.Logger
	destroyed int
}

func NewCleanupSystem(scene *world.Scene, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{scene: scene, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	n := s.scene.World().FlushDestroyQueue()
	if n == 0 {
		return
	}
	s.destroyed += n
	s.log.Debug("entities destroyed", zap.Int("count", n))
}

// Destroyed returns the total number of entities destroyed.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
