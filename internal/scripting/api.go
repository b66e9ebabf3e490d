package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// registerAPI exposes the scene to Lua. Entities are addressed by name.
// Mutators return true on success, or nil and a message.
func (e *Engine) registerAPI() {
	for name, fn := range map[string]lua.LGFunction{
		"spawn":        e.luaSpawn,
		"set_parent":   e.luaSetParent,
		"clear_parent": e.luaClearParent,
		"despawn":      e.luaDespawn,
		"move":         e.luaMove,
		"parent_of":    e.luaParentOf,
		"global":       e.luaGlobal,
		"exists":       e.luaExists,
		"log":          e.luaLog,
	} {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// spawn(name [, parent])
func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	id, err := e.scene.Spawn(name)
	if err != nil {
		return fail(L, err.Error())
	}
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		parent, ok := e.lookup(L, L.CheckString(2))
		if !ok {
			return 2
		}
		if err := e.scene.SetParent(id, parent); err != nil {
			return fail(L, err.Error())
		}
	}
	L.Push(lua.LTrue)
	return 1
}

// set_parent(child, parent)
func (e *Engine) luaSetParent(L *lua.LState) int {
	child, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	parent, ok := e.lookup(L, L.CheckString(2))
	if !ok {
		return 2
	}
	if err := e.scene.SetParent(child, parent); err != nil {
		return fail(L, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// clear_parent(name)
func (e *Engine) luaClearParent(L *lua.LState) int {
	id, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	if err := e.scene.ClearParent(id); err != nil {
		return fail(L, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// despawn(name) removes the entity and its subtree at the end of the tick.
func (e *Engine) luaDespawn(L *lua.LState) int {
	id, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	if err := e.scene.Despawn(id); err != nil {
		return fail(L, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// move(name, x, y [, rotation]) sets the local transform.
func (e *Engine) luaMove(L *lua.LState) int {
	id, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	t := component.Transform{
		X:        float64(L.CheckNumber(2)),
		Y:        float64(L.CheckNumber(3)),
		Rotation: float64(L.OptNumber(4, 0)),
	}
	if err := e.scene.SetLocal(id, t); err != nil {
		return fail(L, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// parent_of(name) returns the parent's name, or nil for a root.
func (e *Engine) luaParentOf(L *lua.LState) int {
	id, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	p, linked := e.scene.Parents.Get(id)
	if !linked {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(e.scene.NameOf(p.Entity)))
	return 1
}

// global(name) returns x, y, rotation as of the last transform pass.
func (e *Engine) luaGlobal(L *lua.LState) int {
	id, ok := e.lookup(L, L.CheckString(1))
	if !ok {
		return 2
	}
	g, ok := e.scene.Global(id)
	if !ok {
		return fail(L, "no global transform yet")
	}
	L.Push(lua.LNumber(g.X))
	L.Push(lua.LNumber(g.Y))
	L.Push(lua.LNumber(g.Rotation))
	return 3
}

// exists(name)
func (e *Engine) luaExists(L *lua.LState) int {
	_, ok := e.scene.Lookup(L.CheckString(1))
	L.Push(lua.LBool(ok))
	return 1
}

// log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// lookup resolves a name, pushing nil and a message when it is unknown.
func (e *Engine) lookup(L *lua.LState, name string) (ecs.EntityID, bool) {
	id, ok := e.scene.Lookup(name)
	if !ok {
		fail(L, "unknown entity "+name)
	}
	return id, ok
}

func fail(L *lua.LState, msg string) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(msg))
	return 2
}
