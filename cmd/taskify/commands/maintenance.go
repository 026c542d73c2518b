package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			userID, err := e.actingUser(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Completed today: %d\n", e.engine.CountCompletedToday(ctx, userID))
			fmt.Printf("Pending:         %d\n", e.engine.CountPending(ctx, userID))
			if categories := e.engine.Categories(ctx, userID); len(categories) > 0 {
				fmt.Printf("Categories:      %s\n", strings.Join(categories, ", "))
			}
			return nil
		},
	}
}

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			userID, err := e.actingUser(ctx)
			if err != nil {
				return err
			}

			deleted, err := e.engine.CleanupStale(ctx, userID, retentionDays)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d completed task(s)\n", deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 10, "Delete completed tasks older than this many days")
	return cmd
}
