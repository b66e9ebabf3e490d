package world

import (
	"errors"
	"fmt"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

var (
	ErrNameTaken = errors.New("name already in use")
	ErrNoEntity  = errors.New("no such entity")
	ErrSelfLink  = errors.New("entity cannot be its own parent")
	ErrCycle     = errors.New("link would create a cycle")
)

// Scene owns the ECS world and the component stores of a scene graph.
// Parent and Local are tracked stores: the hierarchy and transform systems
// read their change logs. Accessed only from the tick goroutine.
type Scene struct {
	world   *ecs.World
	Parents *ecs.TrackedStore[component.Parent]
	Locals  *ecs.TrackedStore[component.Transform]
	Globals *ecs.PtrComponentStore[component.GlobalTransform]
	names   *nameTable
}

func NewScene() *Scene {
	s := &Scene{
		world:   ecs.NewWorld(),
		Parents: ecs.NewTrackedStore[component.Parent](),
		Locals:  ecs.NewTrackedStore[component.Transform](),
		Globals: ecs.NewPtrComponentStore[component.GlobalTransform](),
		names:   newNameTable(),
	}
	reg := s.world.Registry()
	reg.Register(s.Parents)
	reg.Register(s.Locals)
	reg.Register(s.Globals)
	reg.Register(s.names)
	return s
}

func (s *Scene) World() *ecs.World { return s.world }

// Spawn creates an entity at the local origin. An empty name leaves it
// anonymous.
func (s *Scene) Spawn(name string) (ecs.EntityID, error) {
	if name != "" {
		if _, taken := s.names.byName[name]; taken {
			return 0, fmt.Errorf("spawn %q: %w", name, ErrNameTaken)
		}
	}
	e := s.world.CreateEntity()
	if name != "" {
		s.names.set(e, name)
	}
	s.Locals.Set(e, &component.Transform{})
	return e, nil
}

// Lookup finds a live entity by name.
func (s *Scene) Lookup(name string) (ecs.EntityID, bool) {
	e, ok := s.names.byName[name]
	return e, ok
}

// NameOf returns the entity's name, or its id when it has none.
func (s *Scene) NameOf(e ecs.EntityID) string {
	if n, ok := s.names.byID[e]; ok {
		return n.Value
	}
	return e.String()
}

// SetParent links child under parent. Links that would close a cycle are
// rejected here so the hierarchy never sees one.
func (s *Scene) SetParent(child, parent ecs.EntityID) error {
	if !s.world.Alive(child) || !s.world.Alive(parent) {
		return fmt.Errorf("set parent of %v to %v: %w", child, parent, ErrNoEntity)
	}
	if child == parent {
		return fmt.Errorf("set parent of %v: %w", child, ErrSelfLink)
	}
	for x := parent; ; {
		p, ok := s.Parents.Get(x)
		if !ok {
			break
		}
		if p.Entity == child {
			return fmt.Errorf("set parent of %v to %v: %w", child, parent, ErrCycle)
		}
		x = p.Entity
	}
	if cur, ok := s.Parents.Get(child); ok {
		if cur.Entity == parent {
			return nil
		}
		s.Parents.Modify(child, func(p *component.Parent) { p.Entity = parent })
		return nil
	}
	s.Parents.Set(child, &component.Parent{Entity: parent})
	return nil
}

// ClearParent makes e a root. Its descendants keep their links; they are
// touched so the hierarchy picks them up again under e as a root parent.
func (s *Scene) ClearParent(e ecs.EntityID) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("clear parent of %v: %w", e, ErrNoEntity)
	}
	if !s.Parents.Has(e) {
		return nil
	}
	s.Parents.Remove(e)
	for _, d := range s.descendants(e) {
		s.Parents.Modify(d, func(*component.Parent) {})
	}
	return nil
}

// Despawn queues e and every descendant for destruction at the end of the
// tick.
func (s *Scene) Despawn(e ecs.EntityID) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("despawn %v: %w", e, ErrNoEntity)
	}
	s.world.MarkForDestruction(e)
	for _, d := range s.descendants(e) {
		s.world.MarkForDestruction(d)
	}
	return nil
}

// SetLocal replaces e's local transform.
func (s *Scene) SetLocal(e ecs.EntityID, t component.Transform) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("set transform of %v: %w", e, ErrNoEntity)
	}
	s.Locals.Set(e, &t)
	return nil
}

// Global returns e's last computed scene-space transform.
func (s *Scene) Global(e ecs.EntityID) (component.GlobalTransform, bool) {
	g, ok := s.Globals.Get(e)
	if !ok {
		return component.GlobalTransform{}, false
	}
	return *g, true
}

// Len returns the number of live entities.
func (s *Scene) Len() int { return s.world.Pool().Len() }

// descendants walks the parent store, not the hierarchy, so it also sees
// links written earlier in the same tick.
func (s *Scene) descendants(root ecs.EntityID) []ecs.EntityID {
	kids := make(map[ecs.EntityID][]ecs.EntityID)
	s.Parents.Each(func(id ecs.EntityID, p *component.Parent) {
		kids[p.Entity] = append(kids[p.Entity], id)
	})
	var out []ecs.EntityID
	stack := append([]ecs.EntityID(nil), kids[root]...)
	for len(stack) > 0 {
		n := len(stack) - 1
		e := stack[n]
		stack = stack[:n]
		out = append(out, e)
		stack = append(stack, kids[e]...)
	}
	return out
}

// nameTable is the Name component store plus its reverse index.
type nameTable struct {
	byID   map[ecs.EntityID]*component.Name
	byName map[string]ecs.EntityID
}

func newNameTable() *nameTable {
	return &nameTable{
		byID:   make(map[ecs.EntityID]*component.Name),
		byName: make(map[string]ecs.EntityID),
	}
}

func (t *nameTable) set(e ecs.EntityID, name string) {
	t.byID[e] = &component.Name{Value: name}
	t.byName[name] = e
}

func (t *nameTable) Remove(e ecs.EntityID) {
	n, ok := t.byID[e]
	if !ok {
		return
	}
	delete(t.byName, n.Value)
	delete(t.byID, e)
}
