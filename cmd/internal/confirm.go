package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yarlson/go-planner/internal/planner"
)

// PromptConfirmer asks on out and reads the answer from in. Only "yes" and
// "y" confirm.
type PromptConfirmer struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

var _ planner.Confirmer = (*PromptConfirmer)(nil)

// NewPromptConfirmer returns a confirmer reading answers from in.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Confirm shows what the change affects and waits for an answer. Without a
// terminal to ask on, the change is declined.
func (p *PromptConfirmer) Confirm(ctx context.Context, req planner.ConfirmRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !IsTerminal(p.in) {
		_, _ = fmt.Fprintf(p.out, "Cannot confirm %s without a terminal. Pass --yes to proceed.\n", req.Action)
		return false, nil
	}

	switch req.Action {
	case planner.ActionClear:
		_, _ = fmt.Fprintf(p.out, "This will remove %d task(s) and the saved data.\n", req.Count)
	default:
		_, _ = fmt.Fprintf(p.out, "Task: %s (%s)\n", req.Title, req.TaskID)
	}
	_, _ = fmt.Fprintf(p.out, "%s (yes/no): ", req.Prompt)

	response, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}
