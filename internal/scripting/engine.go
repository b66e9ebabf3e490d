package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/world"
)

// Engine wraps a single gopher-lua VM that drives a scene from scripts.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm    *lua.LState
	scene *world.Scene
	log   *zap.Logger
}

// NewEngine creates a Lua engine bound to scene and loads every script in
// scriptsDir. An empty or missing directory gives an engine with no hooks.
func NewEngine(scriptsDir string, scene *world.Scene, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, scene: scene, log: log}
	e.registerAPI()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scene scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// HasTickHook reports whether a script defined on_tick.
func (e *Engine) HasTickHook() bool {
	return e.vm.GetGlobal("on_tick") != lua.LNil
}

// OnTick calls the global on_tick(n). Script errors are logged and
// reported false; they never stop the tick loop.
func (e *Engine) OnTick(n uint64) bool {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return true
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(n)); err != nil {
		e.log.Error("lua on_tick error", zap.Uint64("tick", n), zap.Error(err))
		return false
	}
	return true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
