package planner

import (
	"context"
	"errors"
)

// ErrDeclined is returned when the user did not confirm a destructive
// action.
var ErrDeclined = errors.New("action cancelled")

// Action names a change that needs confirmation.
type Action string

// Confirmable actions.
const (
	ActionDelete Action = "delete"
	ActionEdit   Action = "edit"
	ActionClear  Action = "clear"
)

// ConfirmRequest describes the change awaiting confirmation.
type ConfirmRequest struct {
	Action Action

	// Prompt is the question shown to the user.
	Prompt string

	// TaskID and Title identify the task, for delete and edit.
	TaskID string
	Title  string

	// Count is the number of tasks affected.
	Count int
}

// Confirmer asks the user to approve a change.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, req ConfirmRequest) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	return f(ctx, req)
}

// AutoConfirm answers every request the same way.
type AutoConfirm bool

func (a AutoConfirm) Confirm(ctx context.Context, _ ConfirmRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(a), nil
}

func (a *App) confirm(ctx context.Context, req ConfirmRequest) error {
	ok, err := a.confirmer.Confirm(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Debug("confirmation declined", "action", req.Action, "task", req.TaskID)
		return ErrDeclined
	}
	return nil
}
