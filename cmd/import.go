package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yarlson/go-planner/internal/planner"
	"github.com/yarlson/go-planner/internal/storage"
)

func newImportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all tasks with the contents of a file",
		Long: `Replace the task list with the tasks in a JSON, YAML or TOML file.

The format comes from the file extension, or --format, or is detected
from the content. The file must hold an array of tasks, each with id,
title, dueDate, duration, tag, createdAt and updatedAt. A file that fails
these checks or repeats an id is rejected and the current tasks are kept.
Values the add form would refuse, such as past due dates, are accepted and
listed as warnings.

Example YAML:
  - id: task_1
    title: Read chapter 4
    dueDate: "2026-03-10"
    duration: 60
    tag: Study
    createdAt: "2026-03-01T09:00:00Z"
    updatedAt: "2026-03-01T09:00:00Z"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "file format: json, yaml or toml")
	return cmd
}

func runImport(cmd *cobra.Command, path, format string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	return withPlanner(cmd, func(app *planner.App) error {
		var result *planner.ImportResult
		var err error
		if format == "" {
			result, err = app.ImportFile(path)
		} else {
			result, err = importWithFormat(app, path, format)
		}
		if errors.Is(err, storage.ErrImport) {
			return fmt.Errorf("import failed: %w", err)
		}
		if result == nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d task(s)\n", result.Imported)

		if len(result.Warnings) > 0 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d warning(s):\n", len(result.Warnings))
			for _, warning := range result.Warnings {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - Task %q: %s\n", warning.TaskID, warning.Warning)
			}
		}
		return err
	})
}

func importWithFormat(app *planner.App, path, format string) (*planner.ImportResult, error) {
	f, err := storage.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return app.Import(file, f)
}

func newExportCmd() *cobra.Command {
	var format string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write all tasks to a file",
		Long: `Write every task, ignoring any search, to a JSON, YAML or TOML file.

The format comes from the file extension and defaults to JSON. Without a
file argument the export.filename setting is used. --stdout writes to
standard output instead, in --format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filename string
			if len(args) == 1 {
				filename = args[0]
			}
			return runExport(cmd, filename, format, toStdout)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "format for --stdout: json, yaml or toml")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write to standard output")
	return cmd
}

func runExport(cmd *cobra.Command, filename, format string, toStdout bool) error {
	return withPlanner(cmd, func(app *planner.App) error {
		if toStdout {
			f, err := storage.ParseFormat(format)
			if err != nil {
				return err
			}
			return app.Export(cmd.OutOrStdout(), f)
		}

		path, err := app.ExportToFile(filename)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(app.Store().AllTasks()), path)
		return nil
	})
}
