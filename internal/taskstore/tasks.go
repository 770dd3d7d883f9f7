package taskstore

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yarlson/go-planner/internal/search"
)

// Store owns the canonical task collection and keeps a derived view of it
// that reflects the current search term and sort order.
//
// Mutations are applied in memory first and then saved through the Gateway.
// A failed save does not roll the mutation back; it marks the store dirty
// and the next mutation or Flush saves the full collection again.
type Store struct {
	gw     Gateway
	now    func() time.Time
	fields []SearchField
	logger *log.Logger

	mu      sync.RWMutex
	tasks   []Task
	view    View
	derived []Task
	saveErr error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithView sets the initial filter and sort state.
func WithView(v View) Option {
	return func(s *Store) { s.view = v }
}

// WithSearchFields sets which task fields the search term is tested against.
func WithSearchFields(fields ...SearchField) Option {
	return func(s *Store) { s.fields = fields }
}

// WithLogger sets the logger used to report save failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty Store that persists through gw.
func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:     gw,
		now:    time.Now,
		fields: DefaultSearchFields,
		view:   DefaultView(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.derived = []Task{}
	return s
}

// stamp returns the current time as stored on tasks: UTC, millisecond
// precision, no monotonic reading.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Add creates a task from d, appends it and saves the collection. The caller
// validates d first. A non-nil error is always a *PersistError; the returned
// task has been added either way.
func (s *Store) Add(d Draft) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	task := Task{
		ID:        s.gw.GenerateID(),
		Title:     d.Title,
		DueDate:   d.DueDate,
		Duration:  d.Duration,
		Tag:       d.Tag,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.tasks = append(s.tasks, task)
	s.deriveLocked()
	return task, s.saveLocked("add")
}

// Update merges p into the task with the given id and restamps UpdatedAt.
// It returns false, and changes nothing, when no such task exists.
func (s *Store) Update(id string, p Patch) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false, nil
	}

	task := s.tasks[i]
	p.apply(&task)

	now := s.stamp()
	if !now.After(task.UpdatedAt) {
		now = task.UpdatedAt.Add(time.Millisecond)
	}
	task.UpdatedAt = now

	s.tasks[i] = task
	s.deriveLocked()
	return task, true, s.saveLocked("update")
}

// Delete removes the task with the given id and saves the collection. It
// reports whether a task was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t Task) bool { return t.ID == id })
	removed := len(s.tasks) < before

	s.deriveLocked()
	return removed, s.saveLocked("delete")
}

// Replace swaps the whole collection, as done by an import, and saves it.
func (s *Store) Replace(tasks []Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.Clone(tasks)
	s.deriveLocked()
	return s.saveLocked("replace")
}

// Load swaps the whole collection without saving. It is used to hydrate
// the store from what the Gateway already holds.
func (s *Store) Load(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.Clone(tasks)
	s.saveErr = nil
	s.deriveLocked()
}

// Clear empties the collection in memory. Erasing the persisted slot is the
// Gateway's job.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.saveErr = nil
	s.deriveLocked()
}

// Flush saves the current collection again, typically after a failed save.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked("flush")
}

// Dirty reports whether the last save failed, meaning the persisted slot is
// behind the in-memory collection.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saveErr != nil
}

// Search sets the search term and recomputes the view. Nothing is saved.
func (s *Store) Search(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = s.view.WithSearch(term)
	s.deriveLocked()
}

// Sort sets the sort order and recomputes the view. Nothing is saved.
func (s *Store) Sort(field SortField, dir Direction) error {
	if !field.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
	if !dir.IsValid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = s.view.WithSort(field, dir)
	s.deriveLocked()
	return nil
}

// View returns the current filter and sort state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.view
}

// Matcher returns the compiled form of the current search term.
func (s *Store) Matcher() search.Matcher {
	return s.View().Matcher()
}

// Tasks returns the derived view: filtered and sorted. The slice is a copy.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.derived)
}

// AllTasks returns the canonical collection in insertion order. The slice
// is a copy.
func (s *Store) AllTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.tasks)
	if out == nil {
		out = []Task{}
	}
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Stats summarises the whole collection, ignoring the current search term.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ComputeStats(s.tasks)
}

// Suggestions lists the distinct tags and the most common title words.
func (s *Store) Suggestions() Suggestions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Suggest(s.tasks)
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) deriveLocked() {
	s.derived = Derive(s.tasks, s.view, s.fields)
}

func (s *Store) saveLocked(op string) error {
	if err := s.gw.SaveData(slices.Clone(s.tasks)); err != nil {
		s.saveErr = err
		if s.logger != nil {
			s.logger.Warn("changes kept in memory only", "op", op, "err", err)
		}
		return &PersistError{Op: op, Err: err}
	}
	s.saveErr = nil
	return nil
}
