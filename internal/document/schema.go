package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://quizflow/quiz.json"

//go:embed quiz.schema.json
var quizSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the JSON Schema quiz documents are checked against.
func Schema() []byte {
	return bytes.Clone(quizSchema)
}

// validateSchema checks a decoded document against the quiz schema.
func validateSchema(tree any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(tree); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw bytes.
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(quizSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
