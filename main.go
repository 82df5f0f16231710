package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "crediticio",
		Short:         "Evaluación de riesgo crediticio con lógica difusa",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "archivo de configuración (yaml, json o toml)")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newAssessCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))

	return cmd
}
