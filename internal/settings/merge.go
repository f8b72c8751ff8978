package settings

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Parse merges a settings file over Defaults. Keys the schema does not know
// and values whose JSON type disagrees with the default are dropped and
// reported as warnings.
func Parse(data []byte) (Settings, []string, error) {
	var override map[string]any
	if err := json.Unmarshal(data, &override); err != nil {
		return Defaults(), nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	base, err := toMap(Defaults())
	if err != nil {
		return Defaults(), nil, err
	}

	merged, warnings := Merge(base, override)

	raw, err := json.Marshal(merged)
	if err != nil {
		return Defaults(), warnings, fmt.Errorf("failed to encode merged settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Defaults(), warnings, fmt.Errorf("failed to decode merged settings: %w", err)
	}
	s.Clips = s.Clips.Normalize()
	return s, warnings, nil
}

// Merge recursively overlays override onto schema. schema is not modified.
func Merge(schema, override map[string]any) (map[string]any, []string) {
	var warnings []string
	out := mergeObject(schema, override, "", &warnings)
	sort.Strings(warnings)
	return out, warnings
}

func mergeObject(schema, override map[string]any, prefix string, warnings *[]string) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}

	for k, v := range override {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		def, known := schema[k]
		if !known {
			*warnings = append(*warnings, "unknown key "+path)
			continue
		}

		defObj, defIsObj := def.(map[string]any)
		overObj, overIsObj := v.(map[string]any)
		switch {
		case defIsObj && overIsObj:
			out[k] = mergeObject(defObj, overObj, path, warnings)
		case def == nil || v == nil:
			// nullable fields (outputDevice) accept anything
			out[k] = v
		case sameKind(def, v):
			out[k] = v
		default:
			*warnings = append(*warnings, fmt.Sprintf("type mismatch at %s, keeping default", path))
		}
	}
	return out
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case bool:
		_, ok := b.(bool)
		return ok
	case float64:
		_, ok := b.(float64)
		return ok
	case string:
		_, ok := b.(string)
		return ok
	case []any:
		_, ok := b.([]any)
		return ok
	case map[string]any:
		_, ok := b.(map[string]any)
		return ok
	}
	return false
}

func toMap(s Settings) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
