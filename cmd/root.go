package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	cmdinternal "github.com/yarlson/go-planner/cmd/internal"
	"github.com/yarlson/go-planner/internal/config"
	"github.com/yarlson/go-planner/internal/logging"
	"github.com/yarlson/go-planner/internal/planner"
	"github.com/yarlson/go-planner/internal/reporter"
	"github.com/yarlson/go-planner/internal/storage"
	"github.com/yarlson/go-planner/internal/taskstore"
	"github.com/yarlson/go-planner/internal/validate"
)

var cfgFile string

// GetConfigFile returns the config file path from the flag.
func GetConfigFile() string {
	return cfgFile
}

// Root command flags
var (
	rootYes      bool
	rootNoColor  bool
	rootLogLevel string
)

// plannerKV, when set, replaces the file-backed store.
var plannerKV storage.KV

// errInvalidInput is returned after field messages have been printed.
var errInvalidInput = errors.New("invalid input")

// NewRootCmd creates the root command for the planner CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Campus life task planner",
		Long: `Planner keeps a list of study and campus tasks with due dates, durations
and tags. It shows totals against a weekly hour target and supports regex
search, sorting, and import or export as JSON, YAML or TOML.

Run without a subcommand to show the task list.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, listOptions{})
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./planner.yaml or ~/.config/planner/planner.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&rootYes, "yes", "y", false, "confirm destructive actions without asking")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "disable styled output")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// loadConfig reads the config for the working directory.
func loadConfig() (string, *config.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigWithFile(workDir, GetConfigFile())
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	return workDir, cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	level := cfg.Log.Level
	if rootLogLevel != "" {
		level = rootLogLevel
	}
	return logging.FromConfig(cmd.ErrOrStderr(), level, cfg.Log.Format)
}

// openPlanner loads config and the saved tasks for the working directory.
func openPlanner(cmd *cobra.Command) (*planner.App, error) {
	workDir, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var confirmer planner.Confirmer = cmdinternal.NewPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	if rootYes {
		confirmer = planner.AutoConfirm(true)
	}

	app, err := planner.Open(planner.Options{
		Root:      workDir,
		Config:    cfg,
		Logger:    newLogger(cmd, cfg),
		Confirmer: confirmer,
		KV:        plannerKV,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open planner: %w", err)
	}
	return app, nil
}

// withPlanner opens the planner, runs fn and closes the planner, which
// retries a save that failed while fn ran. A failed save that the retry
// recovers is not an error.
func withPlanner(cmd *cobra.Command, fn func(app *planner.App) error) error {
	app, err := openPlanner(cmd)
	if err != nil {
		return err
	}

	runErr := fn(app)
	closeErr := app.Close()

	switch {
	case unsaved(runErr) && closeErr == nil:
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Changes saved on retry.")
		return nil
	case unsaved(runErr):
		return closeErr
	case runErr == nil:
		return closeErr
	case closeErr != nil:
		return errors.Join(runErr, closeErr)
	default:
		return runErr
	}
}

// unsaved reports whether err means a change was applied but not saved.
func unsaved(err error) bool {
	return errors.Is(err, taskstore.ErrPersist)
}

func newPresenter(cmd *cobra.Command) *reporter.TextPresenter {
	out := cmd.OutOrStdout()
	return reporter.NewTextPresenter(out,
		reporter.WithColor(!rootNoColor && cmdinternal.UseColor(out)),
		reporter.WithProgressBar(cmdinternal.ProgressBar),
	)
}

// reportFieldErrors prints validation messages one per line. Other errors
// are returned unchanged.
func reportFieldErrors(cmd *cobra.Command, err error) error {
	var errs validate.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	for _, f := range fields {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, errs[validate.Field(f)])
	}
	return errInvalidInput
}

// reportDeclined turns a declined confirmation into a message, not a
// failure.
func reportDeclined(cmd *cobra.Command, err error) error {
	if errors.Is(err, planner.ErrDeclined) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	return err
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
