package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const importSchemaURL = "planner://schemas/import.json"

// importSchema describes an importable collection. It checks shape only;
// the field rules of the add form are not applied, so past due dates load.
const importSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "dueDate", "duration", "tag", "createdAt", "updatedAt"],
    "properties": {
      "id": {"type": "string"},
      "title": {"type": "string"},
      "tag": {"type": "string"},
      "duration": {"type": "number"},
      "dueDate": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
      "createdAt": {"type": "string", "format": "date-time"},
      "updatedAt": {"type": "string", "format": "date-time"}
    }
  }
}`

var requiredFields = []string{"id", "title", "dueDate", "duration", "tag", "createdAt", "updatedAt"}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(importSchemaURL, strings.NewReader(importSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(importSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ImportValidation is the outcome of checking imported data.
type ImportValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateImportedData checks that data has the shape of a task collection:
// an array of objects, each holding every task field, with string title and
// tag, a numeric duration and a YYYY-MM-DD due date.
func ValidateImportedData(data any) ImportValidation {
	normalized, err := normalize(data)
	if err != nil {
		return ImportValidation{Error: "Data must be an array"}
	}

	s, err := compiledSchema()
	if err != nil {
		return ImportValidation{Error: err.Error()}
	}

	if err := s.Validate(normalized); err != nil {
		return ImportValidation{Error: describeSchemaError(err, normalized)}
	}
	return ImportValidation{Valid: true}
}

// normalize round-trips data through JSON so values decoded from YAML or
// TOML have the types the schema validator expects.
func normalize(data any) (any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// describeSchemaError turns the first leaf schema failure into a short
// message.
func describeSchemaError(err error, instance any) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	leaf := firstLeaf(ve)
	kw := leaf.KeywordLocation

	switch {
	case leaf.InstanceLocation == "" && strings.HasSuffix(kw, "/type"):
		return "Data must be an array"
	case strings.HasSuffix(kw, "/items/type"):
		return "All items must be objects"
	case strings.HasSuffix(kw, "/required"):
		if field := firstMissing(instance, leaf.InstanceLocation); field != "" {
			return "missing required field: " + field
		}
		return leaf.Message
	case strings.Contains(kw, "/properties/dueDate/"):
		return "Invalid date format in dueDate"
	case strings.Contains(kw, "/properties/createdAt/"):
		return "Invalid timestamp in createdAt"
	case strings.Contains(kw, "/properties/updatedAt/"):
		return "Invalid timestamp in updatedAt"
	case strings.Contains(kw, "/properties/"):
		return "Invalid data types"
	default:
		return fmt.Sprintf("%s: %s", jsonPointerToPath(leaf.InstanceLocation), leaf.Message)
	}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// firstMissing returns the first required field absent from the item at
// ptr, in declaration order.
func firstMissing(instance any, ptr string) string {
	items, ok := instance.([]any)
	if !ok {
		return ""
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(ptr, "/"))
	if err != nil || idx < 0 || idx >= len(items) {
		return ""
	}
	item, ok := items[idx].(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range requiredFields {
		if _, present := item[field]; !present {
			return field
		}
	}
	return ""
}

// jsonPointerToPath converts "/0/title" into "[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "(root)"
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
