package ecs

// World owns the entity pool, the component registry and the deferred
// destruction queue. Destruction is deferred so that systems running later
// in the same tick still see a consistent world; CleanupSystem flushes the
// queue at the end of every tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

// Alive reports whether id still names a live entity. It is the liveness
// check the hierarchy uses to drop subtrees under dead root parents.
func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues id for end-of-tick cleanup. Queuing the same
// entity twice is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities waiting for destruction.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue strips queued entities from every store, then frees
// their ids. It returns how many entities were destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	clear(w.queued)
	return n
}
