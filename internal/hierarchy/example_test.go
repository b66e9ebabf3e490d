package hierarchy_test

import (
	"fmt"

	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/hierarchy"
)

type link struct{ parent ecs.EntityID }

func (l link) ParentEntity() ecs.EntityID { return l.parent }

func Example() {
	world := ecs.NewWorld()
	parents := ecs.NewTrackedStore[link]()
	world.Registry().Register(parents)
	h := hierarchy.New[ecs.EntityID, *link](parents.Track())
	changes := h.Track()

	root, arm, hand, finger := world.CreateEntity(), world.CreateEntity(), world.CreateEntity(), world.CreateEntity()
	// Links arrive child first; the sorted view still lists parents first.
	parents.Set(finger, &link{hand})
	parents.Set(hand, &link{arm})
	parents.Set(arm, &link{root})
	h.Maintain(world, parents)

	for _, e := range h.All() {
		p, _ := h.Parent(e)
		fmt.Printf("%v -> %v\n", e, p)
	}
	fmt.Println("modified:", len(changes.Read()))

	// Destroying the unlinked root takes the whole arm with it.
	world.MarkForDestruction(root)
	world.FlushDestroyQueue()
	st := h.Maintain(world, parents)
	fmt.Println("removed:", st.Removed)
	fmt.Println("tracked:", h.Len())
	// Output:
	// 1:0 -> 0:0
	// 2:0 -> 1:0
	// 3:0 -> 2:0
	// modified: 3
	// removed: 4
	// tracked: 0
}
