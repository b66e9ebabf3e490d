package system

import (
	"cmp"
	"slices"
	"time"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/event"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/hierarchy"
	"github.com/l1jgo/scenegraph/internal/world"
)

// TransformSystem derives GlobalTransform from local transforms, visiting
// parents before children so each entity composes over an up-to-date
// parent. Only entities touched this tick are recomputed: those the
// hierarchy reported, those whose local transform changed, and everything
// below the latter.
// Phase 3 (Transform).
type TransformSystem struct {
	scene   *world.Scene
	h       *SceneHierarchy
	changes *event.Reader[hierarchy.Event[ecs.EntityID]]
	locals  *ecs.ChangeReader

	primed     bool
	dirty      map[ecs.EntityID]struct{}
	linked     []ecs.EntityID
	recomputed int
}

func NewTransformSystem(scene *world.Scene, h *SceneHierarchy) *TransformSystem {
	return &TransformSystem{
		scene:   scene,
		h:       h,
		changes: h.Track(),
		locals:  scene.Locals.Track(),
		dirty:   make(map[ecs.EntityID]struct{}),
	}
}

func (s *TransformSystem) Phase() coresys.Phase { return coresys.PhaseTransform }

func (s *TransformSystem) Update(_ time.Duration) {
	dirty := s.dirty
	clear(dirty)

	// First pass covers entities created before the system existed.
	if !s.primed {
		s.scene.Locals.Each(func(id ecs.EntityID, _ *component.Transform) {
			dirty[id] = struct{}{}
		})
		s.primed = true
	}
	for _, ev := range s.changes.Read() {
		dirty[ev.Entity] = struct{}{}
	}
	inserted, modified, removed := s.locals.Drain()
	for _, list := range [][]ecs.EntityID{inserted, modified} {
		for _, e := range list {
			dirty[e] = struct{}{}
			for d := range s.h.Descendants(e) {
				dirty[d] = struct{}{}
			}
		}
	}
	for _, e := range removed {
		dirty[e] = struct{}{}
	}
	if len(dirty) == 0 {
		return
	}

	s.linked = s.linked[:0]
	for e := range dirty {
		if !s.scene.World().Alive(e) {
			s.scene.Globals.Remove(e)
			continue
		}
		if s.h.Contains(e) {
			s.linked = append(s.linked, e)
			continue
		}
		local, ok := s.scene.Locals.Get(e)
		if !ok {
			s.scene.Globals.Remove(e)
			continue
		}
		g := component.Root(*local)
		s.scene.Globals.Set(e, &g)
		s.recomputed++
	}

	slices.SortFunc(s.linked, func(a, b ecs.EntityID) int {
		pa, _ := s.h.Position(a)
		pb, _ := s.h.Position(b)
		return cmp.Compare(pa, pb)
	})
	for _, e := range s.linked {
		var parent component.GlobalTransform
		if p, ok := s.h.Parent(e); ok {
			if pg, ok := s.scene.Globals.Get(p); ok {
				parent = *pg
			}
		}
		var local component.Transform
		if l, ok := s.scene.Locals.Get(e); ok {
			local = *l
		}
		g := component.Compose(parent, local)
		s.scene.Globals.Set(e, &g)
		s.recomputed++
	}
}

// Recomputed returns how many global transforms have been written.
func (s *TransformSystem) Recomputed() int { return s.recomputed }
