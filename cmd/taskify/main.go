package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benvon/taskify/cmd/taskify/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskify",
		Short: "Local task tracker",
		Long:  "CLI for managing Taskify accounts and tasks against a local store file",
	}

	rootCmd.PersistentFlags().String("store", "taskify.json", "Path to the store file")

	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewTaskCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewCleanupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
