package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

const schemaURL = "https://slidegame.local/puzzle.schema.json"

var (
	tileType     = reflect.TypeOf(engine.Tile(0))
	positionType = reflect.TypeOf(engine.Position{})

	compileOnce sync.Once
	compiled    *validator.Schema
	compileErr  error
)

func uint64Ptr(v uint64) *uint64 { return &v }

// tileNames lists every accepted tile name, including legacy aliases
var tileNames = []any{"wall", "trap", "loose", "sticky", "piston", "sand", "cobweb"}

func mapTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case tileType:
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "null"},
				{Type: "string", Enum: tileNames},
			},
		}
	case positionType:
		return &jsonschema.Schema{
			Type:     "array",
			Items:    &jsonschema.Schema{Type: "integer", Minimum: json.Number("0")},
			MinItems: uint64Ptr(2),
			MaxItems: uint64Ptr(2),
		}
	}
	return nil
}

// Schema reflects the JSON Schema of a puzzle library file
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		Mapper:         mapTypes,
	}
	schema := reflector.Reflect(&engine.PuzzleConfig{})
	schema.Title = "Slide Puzzle"
	schema.Description = "A sliding-block puzzle: grid rows of tiles (null for empty) plus player and target as [row, col]."

	if mapSchema, ok := schema.Properties.Get("map"); ok {
		mapSchema.MinItems = uint64Ptr(engine.MinGridSize)
		mapSchema.MaxItems = uint64Ptr(engine.MaxGridSize)
		if mapSchema.Items != nil {
			mapSchema.Items.MinItems = uint64Ptr(engine.MinGridSize)
			mapSchema.Items.MaxItems = uint64Ptr(engine.MaxGridSize)
		}
	}
	return schema
}

// SchemaJSON returns the indented schema document
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func compiledSchema() (*validator.Schema, error) {
	compileOnce.Do(func() {
		raw, err := SchemaJSON()
		if err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = validator.CompileString(schemaURL, string(raw))
	})
	return compiled, compileErr
}

// ValidateDocument checks a puzzle JSON document against the schema
func ValidateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile puzzle schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
