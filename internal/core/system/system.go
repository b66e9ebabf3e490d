package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: external edits (scene files, commands)
	PhaseScript                 // 1: Lua on_tick hooks mutate links and transforms
	PhaseHierarchy              // 2: maintain the sorted hierarchy
	PhaseTransform              // 3: propagate global transforms parents-first
	PhaseOutput                 // 4: metrics, log compaction
	PhaseCleanup                // 5: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseScript:
		return "script"
	case PhaseHierarchy:
		return "hierarchy"
	case PhaseTransform:
		return "transform"
	case PhaseOutput:
		return "output"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
