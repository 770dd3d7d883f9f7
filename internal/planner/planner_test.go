package planner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarlson/go-planner/internal/config"
	"github.com/yarlson/go-planner/internal/reporter"
	"github.com/yarlson/go-planner/internal/state"
	"github.com/yarlson/go-planner/internal/storage"
	"github.com/yarlson/go-planner/internal/taskstore"
	"github.com/yarlson/go-planner/internal/validate"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Dir: config.DefaultStorageDir, Key: config.DefaultStorageKey},
		Planner: config.PlannerConfig{
			WeeklyTargetHours: config.DefaultWeeklyTargetHours,
			SampleData:        false,
			Sort:              config.SortConfig{Field: "dueDate", Direction: "asc"},
		},
		Search: config.SearchConfig{Fields: config.DefaultSearchFields},
		Export: config.ExportConfig{Filename: config.DefaultExportFilename},
	}
}

func openMemory(t *testing.T, kv *storage.MemoryKV, confirm bool) *App {
	t.Helper()
	app, err := Open(Options{
		Config:    testConfig(),
		Now:       func() time.Time { return testNow },
		Confirmer: AutoConfirm(confirm),
		KV:        kv,
	})
	require.NoError(t, err)
	return app
}

func validInput(title string) TaskInput {
	return TaskInput{Title: title, DueDate: "2026-03-10", Duration: "90", Tag: "Study"}
}

func TestOpen(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := Open(Options{KV: storage.NewMemoryKV()})
		assert.Error(t, err)
	})

	t.Run("rejects invalid sort", func(t *testing.T) {
		cfg := testConfig()
		cfg.Planner.Sort.Field = "priority"

		_, err := Open(Options{Config: cfg, KV: storage.NewMemoryKV()})
		assert.ErrorIs(t, err, taskstore.ErrInvalidSort)
	})

	t.Run("empty without sample data", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		assert.Empty(t, app.Store().AllTasks())
	})

	t.Run("seeds sample data", func(t *testing.T) {
		kv := storage.NewMemoryKV()
		cfg := testConfig()
		cfg.Planner.SampleData = true

		app, err := Open(Options{Config: cfg, KV: kv, Now: func() time.Time { return testNow }})
		require.NoError(t, err)

		tasks := app.Store().AllTasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, "Study for Math Final", tasks[0].Title)
		assert.Equal(t, "2026-03-08", tasks[0].DueDate)
		assert.Equal(t, "2026-03-15", tasks[1].DueDate)
		assert.Contains(t, kv.Snapshot(), config.DefaultStorageKey)
	})

	t.Run("loads saved tasks instead of seeding", func(t *testing.T) {
		kv := storage.NewMemoryKV()
		first := openMemory(t, kv, true)
		_, err := first.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		cfg := testConfig()
		cfg.Planner.SampleData = true
		app, err := Open(Options{Config: cfg, KV: kv})
		require.NoError(t, err)

		tasks := app.Store().AllTasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, "Read chapter 4", tasks[0].Title)
	})
}

func TestOpen_FileBacked(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig()
	cfg.Planner.SampleData = true

	open := func() *App {
		app, err := Open(Options{Root: root, Config: cfg, Confirmer: AutoConfirm(true)})
		require.NoError(t, err)
		return app
	}

	app := open()
	require.Len(t, app.Store().AllTasks(), 2)

	base := filepath.Join(root, config.DefaultStorageDir)
	seeded, err := state.IsSeeded(base)
	require.NoError(t, err)
	assert.True(t, seeded)

	_, err = os.Stat(filepath.Join(state.DataDirPath(base), config.DefaultStorageKey+".json"))
	require.NoError(t, err)

	n, err := app.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Empty(t, open().Store().AllTasks(), "cleared data is not reseeded")

	slot := filepath.Join(state.DataDirPath(base), config.DefaultStorageKey+".json")
	require.NoError(t, os.WriteFile(slot, []byte("{not json"), 0o644))

	reseeded := open()
	assert.Len(t, reseeded.Store().AllTasks(), 2, "corrupt data is reseeded")

	data, err := os.ReadFile(slot)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["), "reseeding overwrites the corrupt slot")
}

func TestOpen_CorruptSlotWithoutSamples(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(config.DefaultStorageKey, []byte("{not json")))

	app := openMemory(t, kv, true)
	assert.Empty(t, app.Store().AllTasks())
	assert.Equal(t, "{not json", string(kv.Snapshot()[config.DefaultStorageKey]), "nothing is written until a change")
}

func TestAddTask(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		kv := storage.NewMemoryKV()
		app := openMemory(t, kv, true)

		task, err := app.AddTask(TaskInput{Title: "Read chapter 4", DueDate: "2026-03-01", Duration: "45", Tag: " Study "})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(task.ID, "task_"))
		assert.Equal(t, 45, task.Duration)
		assert.Equal(t, "Study", task.Tag)
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)

		reopened := openMemory(t, kv, true)
		got, ok := reopened.Store().Get(task.ID)
		require.True(t, ok)
		assert.Equal(t, task, got)
	})

	t.Run("invalid fields", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)

		_, err := app.AddTask(TaskInput{Title: "Read Read", DueDate: "2026-02-28", Duration: "0", Tag: "CS101"})
		require.Error(t, err)

		var errs validate.Errors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, "Title contains duplicate words", errs[validate.FieldTitle])
		assert.Equal(t, "Due date can't be in the past", errs[validate.FieldDueDate])
		assert.Equal(t, "Duration must be a positive whole number", errs[validate.FieldDuration])
		assert.Equal(t, "Tag can only contain letters, spaces, and hyphens", errs[validate.FieldTag])
		assert.Empty(t, app.Store().AllTasks())
	})

	t.Run("save failure keeps the task", func(t *testing.T) {
		kv := storage.NewMemoryKV()
		app := openMemory(t, kv, true)
		kv.SetErr = errors.New("disk full")

		_, err := app.AddTask(validInput("Read chapter 4"))
		var pe *taskstore.PersistError
		require.ErrorAs(t, err, &pe)
		assert.Len(t, app.Store().AllTasks(), 1)
		assert.True(t, app.Page().Dirty)

		kv.SetErr = nil
		require.NoError(t, app.Close())
		assert.False(t, app.Store().Dirty())
		assert.Contains(t, kv.Snapshot(), config.DefaultStorageKey)
	})
}

func TestEditTask(t *testing.T) {
	str := func(s string) *string { return &s }

	setup := func(t *testing.T, confirm bool) (*App, taskstore.Task) {
		app := openMemory(t, storage.NewMemoryKV(), confirm)
		task, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)
		return app, task
	}

	t.Run("updates given fields", func(t *testing.T) {
		app, task := setup(t, true)

		got, err := app.EditTask(context.Background(), task.ID, EditInput{Duration: str("30"), Tag: str("Reading")})
		require.NoError(t, err)
		assert.Equal(t, 30, got.Duration)
		assert.Equal(t, "Reading", got.Tag)
		assert.Equal(t, task.Title, got.Title)
		assert.True(t, got.UpdatedAt.After(task.UpdatedAt))
	})

	t.Run("unknown id", func(t *testing.T) {
		app, _ := setup(t, true)

		_, err := app.EditTask(context.Background(), "task_missing", EditInput{Title: str("New title")})
		assert.ErrorIs(t, err, taskstore.ErrNotFound)
	})

	t.Run("nothing to change", func(t *testing.T) {
		app, task := setup(t, true)

		_, err := app.EditTask(context.Background(), task.ID, EditInput{})
		assert.ErrorIs(t, err, ErrNoChanges)

		got, ok := app.Store().Get(task.ID)
		require.True(t, ok)
		assert.Equal(t, task, got, "an empty edit does not restamp the task")
	})

	t.Run("invalid value", func(t *testing.T) {
		app, task := setup(t, true)

		_, err := app.EditTask(context.Background(), task.ID, EditInput{Duration: str("1441")})
		var errs validate.Errors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has(validate.FieldDuration))
	})

	t.Run("declined", func(t *testing.T) {
		app, task := setup(t, false)

		_, err := app.EditTask(context.Background(), task.ID, EditInput{Title: str("Other title")})
		assert.ErrorIs(t, err, ErrDeclined)

		got, _ := app.Store().Get(task.ID)
		assert.Equal(t, task, got)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		var asked ConfirmRequest
		app, err := Open(Options{
			Config: testConfig(),
			KV:     storage.NewMemoryKV(),
			Now:    func() time.Time { return testNow },
			Confirmer: ConfirmFunc(func(_ context.Context, req ConfirmRequest) (bool, error) {
				asked = req
				return true, nil
			}),
		})
		require.NoError(t, err)
		task, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		deleted, err := app.DeleteTask(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.Empty(t, app.Store().AllTasks())
		assert.Equal(t, ActionDelete, asked.Action)
		assert.Equal(t, "Read chapter 4", asked.Title)
	})

	t.Run("declined", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), false)
		task, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		_, err = app.DeleteTask(context.Background(), task.ID)
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Len(t, app.Store().AllTasks(), 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)

		_, err := app.DeleteTask(context.Background(), "task_missing")
		assert.ErrorIs(t, err, taskstore.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		task, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = app.DeleteTask(ctx, task.ID)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, app.Store().AllTasks(), 1)
	})
}

func TestClearAll(t *testing.T) {
	kv := storage.NewMemoryKV()
	app := openMemory(t, kv, true)
	_, err := app.AddTask(validInput("Read chapter 4"))
	require.NoError(t, err)

	n, err := app.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, app.Store().AllTasks())
	assert.NotContains(t, kv.Snapshot(), config.DefaultStorageKey)
}

func TestImport(t *testing.T) {
	const valid = `[
  {"id":"task_a","title":"Old lab","dueDate":"2020-01-05","duration":60,"tag":"Lab","createdAt":"2020-01-01T09:00:00Z","updatedAt":"2020-01-01T09:00:00Z"},
  {"id":"task_b","title":"x","dueDate":"2026-04-01","duration":3000,"tag":"Study","createdAt":"2026-03-01T09:00:00Z","updatedAt":"2026-03-01T09:00:00Z"}
]`

	t.Run("replaces collection", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		_, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		result, err := app.Import(strings.NewReader(valid), storage.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.NotEmpty(t, result.Warnings, "field rule violations are reported")

		tasks := app.Store().AllTasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, "task_a", tasks[0].ID)
	})

	t.Run("rejected file leaves collection", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		_, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		_, err = app.Import(strings.NewReader(`{"id":"a"}`), storage.FormatUnknown)
		assert.ErrorIs(t, err, storage.ErrImport)
		assert.Len(t, app.Store().AllTasks(), 1)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		dup := strings.ReplaceAll(valid, "task_b", "task_a")

		_, err := app.Import(strings.NewReader(dup), storage.FormatJSON)
		assert.ErrorIs(t, err, storage.ErrImport)
		assert.Empty(t, app.Store().AllTasks())
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		require.NoError(t, os.WriteFile(path, []byte(valid), 0644))

		app := openMemory(t, storage.NewMemoryKV(), true)
		result, err := app.ImportFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
	})
}

func TestExport(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)

		var buf bytes.Buffer
		assert.ErrorIs(t, app.Export(&buf, storage.FormatJSON), ErrNoData)

		_, err := app.ExportToFile(filepath.Join(t.TempDir(), "out.json"))
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("round trips through import", func(t *testing.T) {
		app := openMemory(t, storage.NewMemoryKV(), true)
		_, err := app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, app.Export(&buf, storage.FormatYAML))

		other := openMemory(t, storage.NewMemoryKV(), true)
		_, err = other.Import(&buf, storage.FormatUnknown)
		require.NoError(t, err)
		assert.Equal(t, app.Store().AllTasks(), other.Store().AllTasks())
	})

	t.Run("default filename", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testConfig()
		cfg.Export.Filename = filepath.Join(dir, "backup.json")
		app, err := Open(Options{Config: cfg, KV: storage.NewMemoryKV(), Now: func() time.Time { return testNow }})
		require.NoError(t, err)
		_, err = app.AddTask(validInput("Read chapter 4"))
		require.NoError(t, err)

		path, err := app.ExportToFile("")
		require.NoError(t, err)
		assert.Equal(t, cfg.Export.Filename, path)
		assert.FileExists(t, path)
	})
}

func TestSearchAndSort(t *testing.T) {
	app := openMemory(t, storage.NewMemoryKV(), true)
	for _, in := range []TaskInput{
		{Title: "Lab report", DueDate: "2026-03-05", Duration: "120", Tag: "Science"},
		{Title: "Read chapter 4", DueDate: "2026-03-02", Duration: "45", Tag: "Study"},
		{Title: "Gym session", DueDate: "2026-03-09", Duration: "60", Tag: "Health"},
	} {
		_, err := app.AddTask(in)
		require.NoError(t, err)
	}

	titles := func() []string {
		var out []string
		for _, task := range app.Page().Tasks {
			out = append(out, task.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Read chapter 4", "Lab report", "Gym session"}, titles())

	require.NoError(t, app.Sort("duration", "desc"))
	assert.Equal(t, []string{"Lab report", "Gym session", "Read chapter 4"}, titles())

	assert.ErrorIs(t, app.Sort("priority", ""), taskstore.ErrInvalidSort)

	assert.Nil(t, app.Search("^(lab|gym)"))
	assert.Equal(t, []string{"Lab report", "Gym session"}, titles())

	warning := app.Search("[lab")
	require.NotNil(t, warning)
	assert.Equal(t, validate.RuleInvalidPattern, warning.Rule)
	assert.Empty(t, titles())

	app.Search("")
	page := app.Page()
	assert.Len(t, page.Tasks, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 225, page.Stats.TotalDuration)
	require.NotNil(t, page.Progress)
	assert.Equal(t, reporter.LevelUnder, page.Progress.Level)
}

func TestPresets(t *testing.T) {
	app := openMemory(t, storage.NewMemoryKV(), true)
	_, err := app.AddTask(validInput("Meet at 10 AM"))
	require.NoError(t, err)

	presets := app.Presets()
	require.Contains(t, presets, "time-mentions")
	require.Contains(t, presets, "tag:Study")

	app.Search(presets["time-mentions"])
	assert.Len(t, app.Page().Tasks, 1)
}

func TestRender(t *testing.T) {
	app := openMemory(t, storage.NewMemoryKV(), true)
	_, err := app.AddTask(validInput("Read chapter 4"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.Render(reporter.NewTextPresenter(&buf, reporter.WithNow(func() time.Time { return testNow }))))
	assert.Contains(t, buf.String(), "Read chapter 4")
	assert.Contains(t, buf.String(), "Total tasks: 1")
}
