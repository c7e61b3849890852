package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "infodiff",
		Short: "Information diffusion over random contact networks",
		Long: `infodiff runs Monte-Carlo trials of information diffusion over networks
built with the configuration model, and reports when each node was informed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, notice, warning, err, crit)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newTemplateCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "infodiff version %s\n", version)
		},
	}
}
