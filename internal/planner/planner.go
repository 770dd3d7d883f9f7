// Package planner ties the task store, the storage gateway and the
// presenter together into the operations the CLI exposes.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yarlson/go-planner/internal/config"
	"github.com/yarlson/go-planner/internal/reporter"
	"github.com/yarlson/go-planner/internal/search"
	"github.com/yarlson/go-planner/internal/state"
	"github.com/yarlson/go-planner/internal/storage"
	"github.com/yarlson/go-planner/internal/taskstore"
	"github.com/yarlson/go-planner/internal/validate"
)

var (
	// ErrNoChanges is returned by EditTask when no field was given.
	ErrNoChanges = errors.New("nothing to change")

	// ErrNoData is returned by exports of an empty collection.
	ErrNoData = errors.New("no data to export")
)

// Options configures Open.
type Options struct {
	// Root is the directory storage.dir is resolved against.
	Root string

	Config *config.Config
	Logger *log.Logger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Confirmer approves destructive actions. Defaults to declining.
	Confirmer Confirmer

	// KV replaces the file-backed slot, for tests. No state directory is
	// created when it is set.
	KV storage.KV
}

// App is an opened planner.
type App struct {
	cfg       *config.Config
	gw        *storage.Gateway
	store     *taskstore.Store
	confirmer Confirmer
	logger    *log.Logger
	now       func() time.Time

	// base is the state directory, empty when running on an injected KV.
	base   string
	seeded bool
}

// Open loads the collection, seeding sample tasks on a first run when
// planner.sample_data is set.
func Open(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("planner: config is required")
	}

	a := &App{
		cfg:       cfg,
		confirmer: opts.Confirmer,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.confirmer == nil {
		a.confirmer = AutoConfirm(false)
	}

	kv := opts.KV
	if kv == nil {
		a.base = cfg.StoragePath(opts.Root)
		if err := state.EnsureDir(a.base); err != nil {
			return nil, fmt.Errorf("failed to prepare state directory: %w", err)
		}
		fileKV, err := storage.NewFileKV(state.DataDirPath(a.base))
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		kv = fileKV
	}

	view, err := cfg.View()
	if err != nil {
		return nil, err
	}
	fields, err := cfg.SearchFields()
	if err != nil {
		return nil, err
	}

	a.gw = storage.NewGateway(kv, storage.WithKey(cfg.Storage.Key), storage.WithLogger(a.logger))
	a.store = taskstore.New(a.gw,
		taskstore.WithClock(a.now),
		taskstore.WithView(view),
		taskstore.WithSearchFields(fields...),
		taskstore.WithLogger(a.logger),
	)

	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) load() error {
	tasks, err := a.gw.LoadData()
	corrupt := errors.Is(err, storage.ErrCorrupt)
	if err != nil && !corrupt {
		a.logger.Warn("starting with no tasks", "key", a.gw.Key(), "err", err)
	}
	if len(tasks) > 0 || !a.cfg.Planner.SampleData {
		a.store.Load(tasks)
		return nil
	}

	// A corrupt slot is reseeded even after the first run.
	if corrupt {
		a.logger.Warn("saved tasks are unreadable, loading sample data", "key", a.gw.Key())
	} else {
		seeded, err := a.isSeeded()
		if err != nil {
			return err
		}
		if seeded {
			a.store.Load(tasks)
			return nil
		}
		a.logger.Info("no saved tasks, loading sample data", "key", a.gw.Key())
	}

	if err := a.store.Replace(SampleTasks(a.now(), a.gw.GenerateID)); err != nil {
		a.logger.Warn("sample data kept in memory only", "err", err)
	}
	return a.markSeeded()
}

func (a *App) isSeeded() (bool, error) {
	if a.base == "" {
		return a.seeded, nil
	}
	return state.IsSeeded(a.base)
}

func (a *App) markSeeded() error {
	a.seeded = true
	if a.base == "" {
		return nil
	}
	return state.SetSeeded(a.base, true)
}

// Store exposes the underlying task store.
func (a *App) Store() *taskstore.Store {
	return a.store
}

// Gateway exposes the storage gateway.
func (a *App) Gateway() *storage.Gateway {
	return a.gw
}

// Config returns the configuration the planner was opened with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// TaskInput holds raw form values for a new task.
type TaskInput struct {
	Title    string
	DueDate  string
	Duration string
	Tag      string
}

// AddTask validates in and adds the task. Validation failures are returned
// as validate.Errors and nothing is added. A *taskstore.PersistError means
// the task was added but not saved.
func (a *App) AddTask(in TaskInput) (taskstore.Task, error) {
	values := map[validate.Field]string{
		validate.FieldTitle:    in.Title,
		validate.FieldDueDate:  in.DueDate,
		validate.FieldDuration: in.Duration,
		validate.FieldTag:      in.Tag,
	}
	if errs := validate.FormAt(values, a.now()); len(errs) > 0 {
		return taskstore.Task{}, errs
	}

	minutes, err := strconv.Atoi(in.Duration)
	if err != nil {
		return taskstore.Task{}, fmt.Errorf("failed to parse duration: %w", err)
	}

	task, err := a.store.Add(taskstore.Draft{
		Title:    in.Title,
		DueDate:  in.DueDate,
		Duration: minutes,
		Tag:      strings.TrimSpace(in.Tag),
	})
	if err == nil {
		a.logger.Debug("task added", "id", task.ID)
	}
	return task, err
}

// EditInput holds the fields to change. Nil fields are kept.
type EditInput struct {
	Title    *string
	DueDate  *string
	Duration *string
	Tag      *string
}

// EditTask validates the given fields, asks for confirmation and updates
// the task.
func (a *App) EditTask(ctx context.Context, id string, in EditInput) (taskstore.Task, error) {
	current, ok := a.store.Get(id)
	if !ok {
		return taskstore.Task{}, &taskstore.NotFoundError{ID: id}
	}

	values := map[validate.Field]string{}
	var patch taskstore.Patch
	if in.Title != nil {
		values[validate.FieldTitle] = *in.Title
		patch.Title = in.Title
	}
	if in.DueDate != nil {
		values[validate.FieldDueDate] = *in.DueDate
		patch.DueDate = in.DueDate
	}
	if in.Tag != nil {
		values[validate.FieldTag] = *in.Tag
		tag := strings.TrimSpace(*in.Tag)
		patch.Tag = &tag
	}
	if in.Duration != nil {
		values[validate.FieldDuration] = *in.Duration
	}

	if errs := validate.FormAt(values, a.now()); len(errs) > 0 {
		return taskstore.Task{}, errs
	}
	if in.Duration != nil {
		minutes, err := strconv.Atoi(*in.Duration)
		if err != nil {
			return taskstore.Task{}, fmt.Errorf("failed to parse duration: %w", err)
		}
		patch.Duration = &minutes
	}
	if patch.IsEmpty() {
		return taskstore.Task{}, ErrNoChanges
	}

	if err := a.confirm(ctx, ConfirmRequest{
		Action: ActionEdit,
		Prompt: fmt.Sprintf("Save changes to %q?", current.Title),
		TaskID: id,
		Title:  current.Title,
		Count:  1,
	}); err != nil {
		return taskstore.Task{}, err
	}

	task, found, err := a.store.Update(id, patch)
	if !found {
		return taskstore.Task{}, &taskstore.NotFoundError{ID: id}
	}
	return task, err
}

// DeleteTask asks for confirmation and removes the task.
func (a *App) DeleteTask(ctx context.Context, id string) (taskstore.Task, error) {
	task, ok := a.store.Get(id)
	if !ok {
		return taskstore.Task{}, &taskstore.NotFoundError{ID: id}
	}

	if err := a.confirm(ctx, ConfirmRequest{
		Action: ActionDelete,
		Prompt: "Are you sure you want to delete this task?",
		TaskID: id,
		Title:  task.Title,
		Count:  1,
	}); err != nil {
		return taskstore.Task{}, err
	}

	if _, err := a.store.Delete(id); err != nil {
		return task, err
	}
	return task, nil
}

// ClearAll asks for confirmation, empties the collection and removes the
// stored slot.
func (a *App) ClearAll(ctx context.Context) (int, error) {
	count := len(a.store.AllTasks())

	if err := a.confirm(ctx, ConfirmRequest{
		Action: ActionClear,
		Prompt: "Are you sure you want to clear all data?",
		Count:  count,
	}); err != nil {
		return 0, err
	}

	a.store.Clear()
	if err := a.gw.ClearAllData(); err != nil {
		return count, err
	}
	a.logger.Info("all data cleared", "tasks", count)
	return count, nil
}

// ImportResult summarises an import.
type ImportResult struct {
	Imported int
	Warnings []taskstore.LintWarning
}

// Import replaces the collection with the tasks in r. The collection is
// untouched when the file is rejected.
func (a *App) Import(r io.Reader, format storage.Format) (*ImportResult, error) {
	tasks, err := storage.ParseImport(r, format)
	if err != nil {
		return nil, err
	}
	return a.replace(tasks)
}

// ImportFile is Import for a file path.
func (a *App) ImportFile(path string) (*ImportResult, error) {
	tasks, err := storage.ImportFile(path)
	if err != nil {
		return nil, err
	}
	return a.replace(tasks)
}

func (a *App) replace(tasks []taskstore.Task) (*ImportResult, error) {
	lint := taskstore.LintTaskSet(tasks)
	if err := lint.Error(); err != nil {
		return nil, &storage.ImportError{Reason: err.Error(), Err: err}
	}

	result := &ImportResult{Imported: len(tasks), Warnings: lint.Warnings}
	if err := a.store.Replace(tasks); err != nil {
		return result, err
	}
	a.logger.Info("tasks imported", "tasks", len(tasks), "warnings", len(lint.Warnings))
	return result, nil
}

// Export writes the whole collection to w.
func (a *App) Export(w io.Writer, format storage.Format) error {
	tasks := a.store.AllTasks()
	if len(tasks) == 0 {
		return ErrNoData
	}
	return a.gw.Export(w, tasks, format)
}

// ExportToFile writes the whole collection to filename, or to
// export.filename when it is empty. It returns the path written.
func (a *App) ExportToFile(filename string) (string, error) {
	if filename == "" {
		filename = a.cfg.Export.Filename
	}
	tasks := a.store.AllTasks()
	if len(tasks) == 0 {
		return "", ErrNoData
	}
	return filename, a.gw.ExportToFile(tasks, filename)
}

// Search sets the search term. It returns the pattern warning when the
// term is not a valid expression and is matched as plain text instead.
func (a *App) Search(term string) *validate.FieldError {
	a.store.Search(term)
	return validate.SearchPattern(term)
}

// Sort sets the sort order from user-typed names.
func (a *App) Sort(field, direction string) error {
	f, d, err := taskstore.ParseSort(field, direction)
	if err != nil {
		return err
	}
	return a.store.Sort(f, d)
}

// Page assembles what the presenter shows.
func (a *App) Page() reporter.Page {
	stats := a.store.Stats()
	progress := reporter.ComputeProgress(stats.TotalDuration, a.cfg.Planner.WeeklyTargetHours)

	return reporter.Page{
		Tasks:    a.store.Tasks(),
		Total:    stats.TotalTasks,
		Stats:    stats,
		Matcher:  a.store.Matcher(),
		Progress: &progress,
		Dirty:    a.store.Dirty(),
	}
}

// Render hands the current page to p.
func (a *App) Render(p reporter.Presenter) error {
	return p.Present(a.Page())
}

// Suggestions lists search hints from the collection.
func (a *App) Suggestions() taskstore.Suggestions {
	return a.store.Suggestions()
}

// Presets returns the named search shortcuts.
func (a *App) Presets() map[string]string {
	presets := map[string]string{
		"time-mentions": search.TimeMentions(),
	}
	for _, tag := range a.store.Suggestions().Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		presets["tag:"+tag] = search.ExactTag(tag)
	}
	return presets
}

// Close retries a failed save. The error reports changes that are still
// unsaved.
func (a *App) Close() error {
	if !a.store.Dirty() {
		return nil
	}
	return a.store.Flush()
}
