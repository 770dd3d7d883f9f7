package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yarlson/go-planner/internal/taskstore"
)

// DefaultKey is the slot the collection is stored under.
const DefaultKey = "campus-life-planner-data"

// idPrefix is prepended to every generated task ID.
const idPrefix = "task_"

// ErrCorrupt is returned when the stored collection cannot be decoded.
var ErrCorrupt = errors.New("stored task data is corrupt")

// ErrImport is returned when an import file is rejected.
var ErrImport = errors.New("import rejected")

// ImportError describes why an import file was rejected.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	return e.Reason
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrImport}
	}
	return []error{ErrImport, e.Err}
}

// Gateway loads and saves the task collection in a single KV slot and
// handles export and import files.
type Gateway struct {
	kv     KV
	key    string
	logger *log.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithKey sets the slot name.
func WithKey(key string) GatewayOption {
	return func(g *Gateway) { g.key = key }
}

// WithLogger sets the logger used to report storage failures.
func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

var _ taskstore.Gateway = (*Gateway)(nil)

// NewGateway returns a Gateway over kv.
func NewGateway(kv KV, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		kv:     kv,
		key:    DefaultKey,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the slot name.
func (g *Gateway) Key() string {
	return g.key
}

// LoadData returns the stored collection. A missing slot yields an empty
// collection and no error. An unreadable or corrupt slot also yields an
// empty collection, along with the error; corruption matches ErrCorrupt.
func (g *Gateway) LoadData() ([]taskstore.Task, error) {
	data, ok, err := g.kv.Get(g.key)
	if err != nil {
		g.logger.Error("failed to read task data", "key", g.key, "err", err)
		return []taskstore.Task{}, fmt.Errorf("failed to read task data: %w", err)
	}
	if !ok {
		return []taskstore.Task{}, nil
	}

	var tasks []taskstore.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		g.logger.Error("stored task data is corrupt", "key", g.key, "err", err)
		return []taskstore.Task{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if tasks == nil {
		tasks = []taskstore.Task{}
	}
	return tasks, nil
}

// SaveData stores the full collection as a JSON array.
func (g *Gateway) SaveData(tasks []taskstore.Task) error {
	if tasks == nil {
		tasks = []taskstore.Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	if err := g.kv.Set(g.key, data); err != nil {
		g.logger.Error("failed to save task data", "key", g.key, "err", err)
		return fmt.Errorf("failed to save tasks: %w", err)
	}

	g.logger.Debug("saved task data", "key", g.key, "tasks", len(tasks))
	return nil
}

// GenerateID returns a new task ID.
func (g *Gateway) GenerateID() string {
	return idPrefix + uuid.NewString()
}

// ClearAllData removes the slot.
func (g *Gateway) ClearAllData() error {
	if err := g.kv.Remove(g.key); err != nil {
		g.logger.Error("failed to clear task data", "key", g.key, "err", err)
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	return nil
}

// Export writes tasks to w in the given format.
func (g *Gateway) Export(w io.Writer, tasks []taskstore.Task, format Format) error {
	return Encode(w, tasks, format)
}

// ExportToFile writes tasks to filename, picking the format from its
// extension. Unknown extensions get JSON.
func (g *Gateway) ExportToFile(tasks []taskstore.Task, filename string) error {
	format := FormatFromPath(filename)
	if format == FormatUnknown {
		format = FormatJSON
	}

	var buf bytes.Buffer
	if err := Encode(&buf, tasks, format); err != nil {
		return err
	}

	if err := writeAtomic(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}

	g.logger.Info("exported tasks", "file", filename, "format", format, "tasks", len(tasks))
	return nil
}

// ParseImport reads an import file. FormatUnknown sniffs the content.
// Malformed content, a schema violation or an unparseable timestamp is
// reported as an *ImportError.
func ParseImport(r io.Reader, format Format) ([]taskstore.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	if format == FormatUnknown {
		format = DetectFormat(data)
	}

	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("Invalid %s file", formatLabel(format)), Err: err}
	}

	if v := ValidateImportedData(raw); !v.Valid {
		return nil, &ImportError{Reason: v.Error}
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, &ImportError{Reason: "Invalid data types", Err: err}
	}

	var tasks []taskstore.Task
	if err := json.Unmarshal(normalized, &tasks); err != nil {
		return nil, &ImportError{Reason: "Invalid data types", Err: err}
	}
	if tasks == nil {
		tasks = []taskstore.Task{}
	}
	for i := range tasks {
		tasks[i].CreatedAt = tasks[i].CreatedAt.UTC()
		tasks[i].UpdatedAt = tasks[i].UpdatedAt.UTC()
	}

	return tasks, nil
}

// ImportFile opens path and parses it, taking the format from the
// extension when it has a known one.
func ImportFile(path string) ([]taskstore.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseImport(f, FormatFromPath(path))
}

func formatLabel(f Format) string {
	switch f {
	case FormatYAML:
		return "YAML"
	case FormatTOML:
		return "TOML"
	default:
		return "JSON"
	}
}
