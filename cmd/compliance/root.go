package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Workflow and compliance engine: SLA evaluator, autonomy scoring, metrics server",
	}
	cmd.AddCommand(newSLACheckCmd())
	cmd.AddCommand(newAutonomyCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func execute() {
	_ = newRootCmd().Execute()
}
