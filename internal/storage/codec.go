package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yarlson/go-planner/internal/taskstore"
)

// Format is an export file encoding.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

// String returns the string representation of the Format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name such as "json" or "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return FormatUnknown, fmt.Errorf("unsupported format %q", name)
	}
}

// FormatFromPath returns the format implied by a file extension, or
// FormatUnknown.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatUnknown
	}
	return f
}

// tomlMarkers indicate TOML content.
var tomlMarkers = []string{
	"[[tasks]]",
	"tasks = [",
}

// DetectFormat guesses the format of content that came without a usable
// file extension. JSON is recognised by its opening bracket, TOML by its
// array-of-tables header; anything else is treated as YAML.
func DetectFormat(content []byte) Format {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && (trimmed[0] == '[' && !bytes.HasPrefix(trimmed, []byte("[[")) || trimmed[0] == '{') {
		return FormatJSON
	}

	for _, marker := range tomlMarkers {
		if bytes.Contains(content, []byte(marker)) {
			return FormatTOML
		}
	}

	return FormatYAML
}

// tomlDocument wraps the collection because TOML has no top-level arrays.
type tomlDocument struct {
	Tasks []taskstore.Task `toml:"tasks"`
}

// Encode writes tasks to w in the given format. JSON is indented with two
// spaces.
func Encode(w io.Writer, tasks []taskstore.Task, format Format) error {
	if tasks == nil {
		tasks = []taskstore.Task{}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write tasks: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(tomlDocument{Tasks: tasks}); err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// decodeRaw parses content into plain values without applying the task
// shape, so that the import schema sees exactly what the file holds.
// Dates and timestamps written without quotes keep their source text.
func decodeRaw(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		v, err := yamlValue(&doc)
		if err != nil {
			return nil, err
		}
		raw = v
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, err
		}
		raw = tomlTimes(doc["tasks"])
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return raw, nil
}

// yamlValue converts a node tree to plain values. Plain scalars that YAML
// would resolve to a timestamp are returned as written.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected yaml node kind %d", n.Kind)
	}
}

// tomlLocalDate is the location BurntSushi/toml gives to local dates.
const tomlLocalDate = "date-local"

// tomlTimes replaces TOML date and datetime values with strings. Local
// dates become YYYY-MM-DD, everything else RFC 3339.
func tomlTimes(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Location().String() == tomlLocalDate {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	case map[string]any:
		for k, item := range x {
			x[k] = tomlTimes(item)
		}
		return x
	case []map[string]any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = tomlTimes(item)
		}
		return items
	case []any:
		for i, item := range x {
			x[i] = tomlTimes(item)
		}
		return x
	default:
		return v
	}
}
