// Package main provides the stacklight binary.
//
// The binary is a thin demo and diagnostics surface around the sampling
// engine in internal/sampler; embedding applications are expected to use the
// engine directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklight/stacklight/internal/cli/profile"
	"github.com/stacklight/stacklight/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stacklight",
		Short:         "Stacklight - in-process statistical call-stack sampler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	profile.RegisterCommands(rootCmd)
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("Stacklight version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}
