package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yarlson/go-planner/internal/planner"
	"github.com/yarlson/go-planner/internal/taskstore"
)

type listOptions struct {
	search string
	preset string
	sort    string
	desc    bool
	reverse bool
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks and totals",
		Long: `Show the task list followed by totals and weekly target progress.

--search takes a case-insensitive regular expression matched against the
title and tag. A pattern that does not compile is matched as plain text.
--preset uses a named search from 'planner suggest'. --reverse flips
the direction from planner.sort.direction, --sort or --desc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "filter by regular expression")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "filter by a named search")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort by title, dueDate, duration, tag, createdAt or updatedAt")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort in descending order")
	cmd.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "flip the sort direction")

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	return withPlanner(cmd, func(app *planner.App) error {
		if err := applyView(cmd, app, opts); err != nil {
			return err
		}
		return app.Render(newPresenter(cmd))
	})
}

func applyView(cmd *cobra.Command, app *planner.App, opts listOptions) error {
	if opts.sort != "" || opts.desc || opts.reverse {
		view := app.Store().View()
		field, dir := string(view.Field), view.Direction
		if opts.sort != "" {
			field, dir = opts.sort, taskstore.Asc
		}
		if opts.desc {
			dir = taskstore.Desc
		}
		if opts.reverse {
			dir = dir.Toggle()
		}
		if err := app.Sort(field, string(dir)); err != nil {
			return err
		}
	}

	term := opts.search
	if opts.preset != "" {
		presets := app.Presets()
		p, ok := presets[opts.preset]
		if !ok {
			return fmt.Errorf("unknown preset %q (available: %s)", opts.preset, strings.Join(presetNames(presets), ", "))
		}
		term = p
	}

	if warning := app.Search(term); warning != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s, matching as plain text\n", warning.Message)
	}
	return nil
}

func presetNames(presets map[string]string) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and weekly target progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(app *planner.App) error {
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(app.Store().Stats())
				}
				return newPresenter(cmd).PresentStats(app.Page())
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "List search hints",
		Long:  "List the tags in use, common title words and the named searches usable with list --preset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(app *planner.App) error {
				s := app.Suggestions()
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "Tags: %s\n", joinOrNone(s.Tags))
				_, _ = fmt.Fprintf(out, "Common words: %s\n", joinOrNone(s.CommonWords))

				presets := app.Presets()
				_, _ = fmt.Fprintln(out, "Presets:")
				for _, name := range presetNames(presets) {
					_, _ = fmt.Fprintf(out, "  %s  %s\n", name, presets[name])
				}
				return nil
			})
		},
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
