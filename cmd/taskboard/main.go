// Command taskboard runs the task and todo API.
//
// @title        Taskboard API
// @version      1.0
// @description  Session-cookie authenticated task and todo API with double-submit CSRF protection.
// @BasePath     /api
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task and todo API with cookie sessions and CSRF protection",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
