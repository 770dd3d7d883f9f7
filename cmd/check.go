package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarlson/go-planner/internal/validate"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <field> <value>",
		Short: "Check a single field value",
		Long: `Check a value against the rules for one field without changing any task.

Fields: title, dueDate, duration, tag, search.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := validate.Field(args[0])
			fn, ok := validate.Lookup(field, time.Now())
			if !ok {
				return fmt.Errorf("unknown field %q", args[0])
			}

			if ferr := fn(args[1]); ferr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", ferr.Field, ferr.Message)
				return errInvalidInput
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", field)
			return nil
		},
	}
}
