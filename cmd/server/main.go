// Package main is the entry point for the taskboard server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (from env vars and flags)
// 2. Create dependencies (logger, database pool, token and password services)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.).
//
// COMMANDS:
//
//	taskboard            run the HTTP server (same as "taskboard serve")
//	taskboard serve      run the HTTP server
//	taskboard migrate    apply database migrations and exit
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "taskboard",
	Short:        "Taskboard - a task management API",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
