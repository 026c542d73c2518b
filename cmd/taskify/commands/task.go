package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benvon/taskify/internal/models"
	"github.com/benvon/taskify/internal/tasks"
)

// NewTaskCmd creates the task command with its subcommands.
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskDoneCmd())
	cmd.AddCommand(newTaskRmCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var description, due, priority, category string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
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

			input := tasks.CreateInput{
				Title:       args[0],
				Description: description,
				Priority:    models.Priority(priority),
				Category:    category,
			}
			if due != "" {
				parsed, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", due)
				}
				input.DueDate = &parsed
			}

			task, err := e.engine.Create(ctx, userID, input)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium, high")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var filter, category, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
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

			list := e.engine.ListByUser(ctx, userID, models.Filter(filter), category)
			list = e.engine.Sort(list, models.SortKey(sortKey))
			if len(list) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			now := time.Now()
			for _, task := range list {
				marker := " "
				if task.IsCompleted() {
					marker = "x"
				}
				line := fmt.Sprintf("[%s] %s  %s (%s, %s)", marker, task.ID, task.Title, task.Priority, task.Category)
				if task.DueDate != nil {
					line += fmt.Sprintf(" due %s", task.DueDate.Format("2006-01-02"))
				}
				if task.IsOverdue(now) {
					line += " OVERDUE"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Filter: all, today, upcoming, completed")
	cmd.Flags().StringVar(&category, "category", "all", "Category filter")
	cmd.Flags().StringVar(&sortKey, "sort", "created", "Sort: date, priority, status, created")
	return cmd
}

func newTaskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			task, err := e.engine.ToggleComplete(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Task %s is now %s\n", task.ID, task.Status)
			return nil
		},
	}
}

func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			if err := e.engine.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}
