package serialize

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/ir-1.0.0.json
var schemaDoc []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

const schemaResourceURL = "https://go-xir.invalid/schema/ir-1.0.0.json"

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaDoc, &doc); err != nil {
			compileErr = fmt.Errorf("serialize: parse bundled schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaResourceURL, doc); err != nil {
			compileErr = fmt.Errorf("serialize: add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaResourceURL)
	})
	return compiledSchema, compileErr
}

// ValidateSchema checks that data is a well-formed document under the
// bundled IR JSON schema (spec.md §4.6 "every emitted document must pass
// schema validation"). This is a shape check only, not a substitute for
// internal/validate's semantic checks.
func ValidateSchema(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("serialize: invalid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("serialize: schema validation: %w", err)
	}
	return nil
}
