// Package document reads and writes quiz documents as JSON or YAML files.
//
// Loading is strict: one document per file, unknown fields rejected, the
// shape checked against a JSON Schema and the branching rules checked by
// the quiz validator. Legacy documents that spell the identifier "Id" or use
// numeric IDs are canonicalised first.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizflow/internal/quiz"
)

// ErrInvalidDocument is returned for documents that cannot be decoded or do
// not match the quiz document schema. Branching problems are reported by
// the quiz validator's own errors instead.
var ErrInvalidDocument = errors.New("invalid quiz document")

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts "json", "yaml" or "yml" into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q (want json or yaml)", s)
	}
}

// FormatFromPath picks the format from a file extension; anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads, parses and validates the quiz document at path.
func Load(path string, opts ...quiz.ValidateOption) (quiz.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("read quiz document: %w", err)
	}
	return Parse(data, FormatFromPath(path), opts...)
}

// Parse decodes a quiz document and validates it.
func Parse(data []byte, format Format, opts ...quiz.ValidateOption) (quiz.Quiz, error) {
	var (
		tree any
		err  error
	)
	switch format {
	case FormatJSON:
		tree, err = decodeJSON(data)
	case FormatYAML:
		tree, err = decodeYAML(data)
	default:
		return quiz.Quiz{}, fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := canonicalize(tree); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := validateSchema(tree); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	canonical, err := json.Marshal(tree)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("re-encode document: %w", err)
	}
	q, err := decodeQuiz(canonical)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := quiz.ValidateQuiz(q, opts...); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

// Encode renders q as a document in the given format.
func Encode(q quiz.Quiz, format Format) ([]byte, error) {
	if q.Questions == nil {
		q.Questions = []quiz.Question{}
	}
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode quiz: %w", err)
	}

	switch format {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatYAML:
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("encode quiz: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// Write encodes q to path, picking the format from the extension.
func Write(path string, q quiz.Quiz) error {
	data, err := Encode(q, FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func decodeJSON(data []byte) (any, error) {
	var tree any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return tree, nil
}

func decodeYAML(data []byte) (any, error) {
	var tree any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&tree); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml: empty document")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return normalizeYAML(tree)
}

// decodeQuiz reads the canonical JSON form into a Quiz, rejecting fields
// the model does not know.
func decodeQuiz(data []byte) (quiz.Quiz, error) {
	q := quiz.NewQuiz()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode quiz: %w", err)
	}
	if q.Questions == nil {
		q.Questions = []quiz.Question{}
	}
	for i := range q.Questions {
		if q.Questions[i].Options == nil {
			q.Questions[i].Options = []quiz.Option{}
		}
	}
	return q, nil
}
