package component

import "github.com/l1jgo/scenegraph/internal/core/ecs"

// Parent links an entity under another one. Stored in a tracked store so the
// hierarchy sees every insert, change and removal.
type Parent struct {
	Entity ecs.EntityID
}

func (p Parent) ParentEntity() ecs.EntityID { return p.Entity }
