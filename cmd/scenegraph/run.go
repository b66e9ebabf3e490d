package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	var (
		scene    string
		maxTicks int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tick loop until max_ticks or a signal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(rootOpts.configPath)
			if err != nil {
				return err
			}
			if scene != "" {
				cfg.Scene.File = scene
			}
			if cmd.Flags().Changed("max-ticks") {
				cfg.Simulation.MaxTicks = maxTicks
			}

			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			p, err := newPipeline(cfg, true, log)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Metrics.Enabled {
				go func() {
					if err := p.metrics.Serve(ctx, cfg.Metrics.BindAddress, log); err != nil {
						log.Error("metrics server", zap.Error(err))
					}
				}()
			}

			start := time.Now()
			loop(ctx, p, cfg.Simulation.TickRate.Duration, cfg.Simulation.MaxTicks, log)
			printSummary(cmd.OutOrStdout(), p, time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "scene file (overrides scene.file)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "stop after this many ticks (overrides simulation.max_ticks)")
	return cmd
}

// loop ticks the pipeline every tickRate until ctx ends or maxTicks ticks
// have run. maxTicks 0 means no limit.
func loop(ctx context.Context, p *pipeline, tickRate time.Duration, maxTicks int, log *zap.Logger) {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	log.Info("tick loop started", zap.Duration("tick", tickRate), zap.Int("max_ticks", maxTicks))
	for {
		select {
		case <-ticker.C:
			p.runner.Tick(tickRate)
			p.metrics.Ticks.Inc()
			if maxTicks > 0 && p.runner.Ticks() >= uint64(maxTicks) {
				log.Info("tick limit reached", zap.Uint64("ticks", p.runner.Ticks()))
				return
			}
		case <-ctx.Done():
			log.Info("shutdown signal received", zap.Uint64("ticks", p.runner.Ticks()))
			return
		}
	}
}

func printSummary(w io.Writer, p *pipeline, elapsed time.Duration) {
	pr := message.NewPrinter(language.English)
	st := p.hierarchy.Totals()
	pr.Fprintf(w, "ticks        %d (%v)\n", p.runner.Ticks(), elapsed.Round(time.Millisecond))
	pr.Fprintf(w, "entities     %d live, %d linked\n", p.scene.Len(), p.hierarchy.Hierarchy().Len())
	pr.Fprintf(w, "hierarchy    %d inserted, %d reparented, %d removed, %d modified\n",
		st.Inserted, st.Reparented, st.Removed, st.Modified)
	pr.Fprintf(w, "transforms   %d recomputed\n", p.transform.Recomputed())
	pr.Fprintf(w, "cleanup      %d destroyed, %d log entries compacted\n", p.cleanup.Destroyed(), p.compact.Dropped())
}
