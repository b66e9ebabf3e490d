package system

import (
	"time"

	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/metrics"
	"github.com/l1jgo/scenegraph/internal/scripting"
)

// ScriptSystem calls the scripts' on_tick hook with a 1-based tick number.
// Phase 1 (Script).
type ScriptSystem struct {
	lua     *scripting.Engine
	metrics *metrics.Metrics
	tick    uint64
}

func NewScriptSystem(lua *scripting.Engine, m *metrics.Metrics) *ScriptSystem {
	return &ScriptSystem{lua: lua, metrics: m}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseScript }

func (s *ScriptSystem) Update(_ time.Duration) {
	s.tick++
	if !s.lua.OnTick(s.tick) {
		s.metrics.ScriptErrors.Inc()
	}
}
