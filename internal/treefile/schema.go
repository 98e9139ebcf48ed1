package treefile

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://skilltree-document.json"

// documentSchema accepts either a bare array of records or the wrapper
// object {"children": [...]}. Records may use the legacy keys "text" and
// "open" written by older versions of the app.
var documentSchema = map[string]any{
	"$defs": map[string]any{
		"record": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label":     map[string]any{"type": "string", "minLength": 1},
				"text":      map[string]any{"type": "string", "minLength": 1},
				"completed": map[string]any{"type": "boolean"},
				"expanded":  map[string]any{"type": "boolean"},
				"open":      map[string]any{"type": "boolean"},
				"children":  map[string]any{"$ref": "#/$defs/forest"},
			},
			"anyOf": []any{
				map[string]any{"required": []any{"label"}},
				map[string]any{"required": []any{"text"}},
			},
		},
		"forest": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/record"},
		},
	},
	"oneOf": []any{
		map[string]any{"$ref": "#/$defs/forest"},
		map[string]any{
			"type":     "object",
			"required": []any{"children"},
			"properties": map[string]any{
				"children": map[string]any{"$ref": "#/$defs/forest"},
			},
			"not": map[string]any{
				"anyOf": []any{
					map[string]any{"required": []any{"label"}},
					map[string]any{"required": []any{"text"}},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// validateDocument checks a parsed JSON value against the document schema.
func validateDocument(doc any) error {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, so round-trip the Go literal.
		raw, err := json.Marshal(documentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	if compileErr != nil {
		return fmt.Errorf("compile document schema: %w", compileErr)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
