package main

import "github.com/spf13/cobra"

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scenegraph",
		Short: "Scene graph simulation over an incrementally sorted hierarchy",
		Long: `scenegraph loads a YAML scene, keeps its parent/child hierarchy sorted
parents-first as scripts edit links each tick, and propagates transforms
down the tree.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default $SCENEGRAPH_CONFIG or built-in defaults)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newDumpCommand(opts))
	return cmd
}
