package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// document keeps unknown top-level keys and entry fields intact on rewrite.
type document map[string]json.RawMessage

func readDocument(path string) (document, []json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptManifest, err)
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: top level is null", ErrCorruptManifest)
	}

	raw, ok := doc["clips"]
	if !ok {
		return nil, nil, fmt.Errorf("%w: clips is missing", ErrCorruptManifest)
	}
	var clips []json.RawMessage
	if err := json.Unmarshal(raw, &clips); err != nil {
		return nil, nil, fmt.Errorf("%w: clips is not an array", ErrCorruptManifest)
	}
	// null decodes without error but leaves the slice nil
	if clips == nil {
		return nil, nil, fmt.Errorf("%w: clips is null", ErrCorruptManifest)
	}
	return doc, clips, nil
}

// writeDocument replaces path atomically: temp file in the same directory,
// fsync, rename.
func writeDocument(path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".clips-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp manifest: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
