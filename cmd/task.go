package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yarlson/go-planner/internal/planner"
	"github.com/yarlson/go-planner/internal/reporter"
	"github.com/yarlson/go-planner/internal/taskstore"
)

// taskFlags are the form fields shared by add and edit.
type taskFlags struct {
	title    string
	due      string
	duration string
	tag      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.due, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.duration, "duration", "m", "", "duration in minutes (1-1440)")
	cmd.Flags().StringVarP(&f.tag, "tag", "g", "", "category tag")
}

func newAddCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Long: `Add a task. All four fields are required:

  --title     at least 2 characters, no surrounding or repeated spaces,
              no word repeated back to back
  --due       YYYY-MM-DD, today or later
  --duration  whole minutes from 1 to 1440
  --tag       2-20 letters, single spaces or hyphens between words`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, flags taskFlags) error {
	return withPlanner(cmd, func(app *planner.App) error {
		task, err := app.AddTask(planner.TaskInput{
			Title:    flags.title,
			DueDate:  flags.due,
			Duration: flags.duration,
			Tag:      flags.tag,
		})
		if err != nil && !unsaved(err) {
			return reportFieldErrors(cmd, err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s), %s\n", task.Title, task.ID, reporter.FormatMinutes(task.Duration))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total: %s across %d task(s)\n",
			reporter.FormatMinutes(app.Store().Stats().TotalDuration), len(app.Store().AllTasks()))
		return err
	})
}

func newEditCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Edit the fields of a task. Only the flags given are changed and each is
checked with the same rules as add. The change is confirmed before it is
saved unless --yes is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runEdit(cmd *cobra.Command, id string, flags taskFlags) error {
	var in planner.EditInput
	if cmd.Flags().Changed("title") {
		in.Title = &flags.title
	}
	if cmd.Flags().Changed("due") {
		in.DueDate = &flags.due
	}
	if cmd.Flags().Changed("duration") {
		in.Duration = &flags.duration
	}
	if cmd.Flags().Changed("tag") {
		in.Tag = &flags.tag
	}

	return withPlanner(cmd, func(app *planner.App) error {
		task, err := app.EditTask(cmd.Context(), id, in)
		if err != nil && !unsaved(err) {
			if errors.Is(err, planner.ErrNoChanges) {
				return errors.New("nothing to change: pass at least one of --title, --due, --duration, --tag")
			}
			return reportDeclined(cmd, reportFieldErrors(cmd, err))
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %q (%s)\n", task.Title, task.ID)
		return err
	})
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Long:    "Delete a task. The deletion is confirmed first unless --yes is set.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}
}

func runDelete(cmd *cobra.Command, id string) error {
	return withPlanner(cmd, func(app *planner.App) error {
		task, err := app.DeleteTask(cmd.Context(), id)
		if err != nil && !unsaved(err) {
			var nf *taskstore.NotFoundError
			if errors.As(err, &nf) {
				return fmt.Errorf("task %q not found", id)
			}
			return reportDeclined(cmd, err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%s)\n", task.Title, task.ID)
		return err
	})
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all tasks",
		Long:  "Remove every task and the saved data. The action is confirmed first unless --yes is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(app *planner.App) error {
				n, err := app.ClearAll(cmd.Context())
				if err != nil {
					return reportDeclined(cmd, err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d task(s)\n", n)
				return nil
			})
		},
	}
}
