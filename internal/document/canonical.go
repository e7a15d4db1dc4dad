package document

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// legacyIDKey is the capitalised identifier key some stored quizzes carry.
const legacyIDKey = "Id"

// canonicalize rewrites a decoded document in place so that every object
// uses a single string "id" key, numeric IDs and branching targets become
// strings, and the redundant per-question "order" key is dropped.
func canonicalize(tree any) error {
	root, ok := tree.(map[string]any)
	if !ok {
		return fmt.Errorf("document must be an object, got %s", kindOf(tree))
	}
	if err := canonicalID(root, "quiz"); err != nil {
		return err
	}

	questions, ok := root["questions"].([]any)
	if !ok {
		return nil
	}
	for i, raw := range questions {
		q, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		where := fmt.Sprintf("question at position %d", i+1)
		if err := canonicalID(q, where); err != nil {
			return err
		}
		delete(q, "order")

		if options, ok := q["options"].([]any); ok {
			for j, rawOpt := range options {
				if opt, ok := rawOpt.(map[string]any); ok {
					if err := canonicalID(opt, fmt.Sprintf("%s option %d", where, j+1)); err != nil {
						return err
					}
				}
			}
		}

		if branching, ok := q["branching"].(map[string]any); ok {
			for optionID, target := range branching {
				if n, ok := target.(json.Number); ok {
					branching[optionID] = n.String()
				}
			}
		}
	}
	return nil
}

func canonicalID(obj map[string]any, where string) error {
	if legacy, ok := obj[legacyIDKey]; ok {
		if current, has := obj["id"]; has && idString(current) != idString(legacy) {
			return fmt.Errorf("%s: conflicting id %v and Id %v", where, current, legacy)
		}
		obj["id"] = legacy
		delete(obj, legacyIDKey)
	}
	if v, ok := obj["id"]; ok {
		if n, isNum := v.(json.Number); isNum {
			obj["id"] = n.String()
		}
	}
	return nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// normalizeYAML converts a yaml.v3 decoded value into the shapes
// encoding/json produces with UseNumber, so both formats go through the
// same pipeline.
func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, child := range t {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case int:
		return json.Number(strconv.Itoa(t)), nil
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(t, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case string, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported yaml value of type %T", v)
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
