// Package main is the entry point for yarhsctl, an operator CLI over the
// control-plane discovery endpoint (spec.md §4.8). Command-tree structure
// (root command + flag-bound subcommands, cobra.Command.RunE) adapted from
// cmd/polis-bridge/main.go.
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
	var serverAddr string

	root := &cobra.Command{
		Use:   "yarhsctl",
		Short: "Operator CLI for the YARHS control-plane discovery endpoint",
		Long: `yarhsctl talks to a running YARHS server's control-plane listener over the
xDS-style discovery endpoint, fetching or updating LISTENER, ROUTE, HTTP,
LOGGING, PERFORMANCE, and VIRTUAL_HOST resources.

Example:
  yarhsctl get routes --server http://localhost:9090
  yarhsctl apply -f routes.yaml --type routes --server http://localhost:9090`,
	}

	root.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:9090", "Control-plane base URL")

	root.AddCommand(newGetCmd(&serverAddr))
	root.AddCommand(newApplyCmd(&serverAddr))
	return root
}
