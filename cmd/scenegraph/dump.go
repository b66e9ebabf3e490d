package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

func newDumpCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [scene.yaml]",
		Short: "Load a scene, run one pass and print its hierarchy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts.configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Scene.File = args[0]
			}
			p, err := newPipeline(cfg, false, zap.NewNop())
			if err != nil {
				return err
			}
			defer p.Close()
			p.runner.Tick(cfg.Simulation.TickRate.Duration)
			return dump(cmd.OutOrStdout(), p)
		},
	}
}

// dump prints the sorted sequence, introducing each root parent just before
// its first child. Parents-first order guarantees every depth is known by
// the time a child is printed. Placed entities outside any tree follow, by
// name.
func dump(w io.Writer, p *pipeline) error {
	h := p.hierarchy.Hierarchy()
	s := p.scene
	depth := make(map[ecs.EntityID]int, h.Len())
	roots := 0

	line := func(e ecs.EntityID, parent string, d int) error {
		g, _ := s.Global(e)
		_, err := fmt.Fprintf(w, "%s%s parent=%s depth=%d at=(%.2f, %.2f) rot=%.0f\n",
			strings.Repeat("  ", d), s.NameOf(e), parent, d, g.X, g.Y, g.Rotation)
		return err
	}

	for _, e := range h.All() {
		parent, _ := h.Parent(e)
		pd, seen := depth[parent]
		if !seen {
			if err := line(parent, "-", 0); err != nil {
				return err
			}
			depth[parent] = 0
			roots++
		}
		depth[e] = pd + 1
		if err := line(e, s.NameOf(parent), pd+1); err != nil {
			return err
		}
	}

	var loose []ecs.EntityID
	ecs.Each2(s.Locals.PtrComponentStore, s.Globals, func(e ecs.EntityID, _ *component.Transform, _ *component.GlobalTransform) {
		if _, inTree := depth[e]; !inTree {
			loose = append(loose, e)
		}
	})
	sort.Slice(loose, func(i, j int) bool { return s.NameOf(loose[i]) < s.NameOf(loose[j]) })
	for _, e := range loose {
		if err := line(e, "-", 0); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "entities=%d linked=%d roots=%d\n", s.Len(), h.Len(), roots)
	return err
}
