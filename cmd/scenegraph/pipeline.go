package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/config"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/data"
	"github.com/l1jgo/scenegraph/internal/metrics"
	"github.com/l1jgo/scenegraph/internal/scripting"
	"github.com/l1jgo/scenegraph/internal/system"
	"github.com/l1jgo/scenegraph/internal/world"
)

// pipeline is a scene plus the systems that maintain it.
type pipeline struct {
	scene     *world.Scene
	metrics   *metrics.Metrics
	runner    *coresys.Runner
	hierarchy *system.HierarchySystem
	transform *system.TransformSystem
	compact   *system.CompactSystem
	cleanup   *system.CleanupSystem
	lua       *scripting.Engine
}

// newPipeline loads the scene file and registers every system. The script
// phase is registered only when lua is set.
func newPipeline(cfg *config.Config, lua bool, log *zap.Logger) (*pipeline, error) {
	scene := world.NewScene()
	m := metrics.New()
	p := &pipeline{
		scene:   scene,
		metrics: m,
		runner:  coresys.NewRunner(),
	}
	p.hierarchy = system.NewHierarchySystem(scene, m, log)
	p.transform = system.NewTransformSystem(scene, p.hierarchy.Hierarchy())
	p.compact = system.NewCompactSystem(scene, p.hierarchy.Hierarchy(), cfg.Simulation.CompactEvery, m, log)
	p.cleanup = system.NewCleanupSystem(scene, log)

	f, err := data.LoadScene(cfg.Scene.File)
	if err != nil {
		return nil, err
	}
	if err := f.Populate(scene); err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene.File, err)
	}
	log.Info("scene loaded", zap.String("file", cfg.Scene.File), zap.Int("entities", f.Count()))

	if lua {
		p.lua, err = scripting.NewEngine(cfg.Scene.ScriptDir, scene, log)
		if err != nil {
			return nil, fmt.Errorf("init scripting: %w", err)
		}
		p.runner.Register(system.NewScriptSystem(p.lua, m))
	}
	p.runner.Register(p.hierarchy)
	p.runner.Register(p.transform)
	p.runner.Register(p.compact)
	p.runner.Register(p.cleanup)
	return p, nil
}

func (p *pipeline) Close() {
	if p.lua != nil {
		p.lua.Close()
	}
}
