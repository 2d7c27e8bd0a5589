package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/dispatch"
	"github.com/nhle/taskdue/internal/model"
)

func signupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <email> <password>",
		Short: "Register a new account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.sessions.SignUp(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Signed up and logged in as %s\n", user.Email)
			return nil
		},
	}
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.sessions.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", user.Email)
			return nil
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := a.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <title> <due-date>",
		Short: "Create a task due on YYYY-MM-DD and schedule its reminder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			task, err := a.ledger.Create(
				ctx, userID, args[0], args[1], model.Priority(priority),
			)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s\n", task.ID)

			a.setupReminders(ctx)
			handle, err := a.scheduler.ScheduleDueReminder(ctx, model.ReminderPayload{
				TaskID:  task.ID,
				UserID:  userID,
				Title:   task.Title,
				DueDate: task.DueDate,
			})
			if err != nil {
				return err
			}
			if handle != nil {
				fmt.Printf("Reminder scheduled for %s\n",
					handle.FireAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "low",
		"task priority (low, medium, high)")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active tasks, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			tasks, err := a.ledger.ListActive(ctx, userID)
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				fmt.Println("No active tasks")
				return nil
			}
			for _, t := range tasks {
				fmt.Printf("%s  %-6s  %s  %s\n",
					t.ID, t.Priority, t.DueDate, t.Title)
			}
			return nil
		},
	}
}

func doneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			if err := a.ledger.Complete(ctx, args[0], userID); err != nil {
				return err
			}
			fmt.Println("Task completed")
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if err := a.ledger.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Task deleted")
			return nil
		},
	}
}

func respondCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "respond <action-id> <payload-json>",
		Short: "Act on a delivered reminder (complete-task or snooze-10)",
		Long: "Feeds a reminder response to the dispatcher, the same " +
			"path a notification action button takes. The payload is " +
			"the JSON data shown on the notification.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			payload, err := model.DecodeReminderPayload(args[1])
			if err != nil {
				return err
			}

			// Restore only; a missing session is handled by the
			// dispatcher's owner check, which discards silently.
			if err := a.sessions.Restore(ctx); err != nil {
				return err
			}
			a.setupReminders(ctx)

			a.dispatcher.HandleResponse(ctx, dispatch.Response{
				ActionID: args[0],
				Payload:  payload,
			})
			return nil
		},
	}
}

func runCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the reminder daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.sessions.Restore(ctx); err != nil {
				return err
			}
			if err := a.scheduler.Setup(ctx); err != nil {
				return err
			}

			if err := a.queue.PurgeDelivered(ctx, 30); err != nil {
				a.log.Warn("purging old reminders failed", zap.Error(err))
			}

			a.scheduler.Start()
			defer a.scheduler.Stop()
			fmt.Println("Reminder daemon running, Ctrl-C to stop")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}
			return nil
		},
	}
}
