// Package jsonfile persists each store as a single pretty-printed JSON
// object file, fully reloaded and fully rewritten on every operation.
// Writes go through a temp file and rename so a crash never leaves a
// half-written store behind.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/util"
)

func readStore(path string, sealKey []byte, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Missing file behaves as an empty mapping; it is created on
			// the first mutation.
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read store file %s: %w", path, err)
		}
	} else if len(sealKey) > 0 {
		data, err = util.Open(sealKey, data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ierr.ErrStorageCorrupt, path, err)
		}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ierr.ErrStorageCorrupt, path, err)
	}
	return nil
}

func writeStore(path string, sealKey []byte, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal store %s: %w", path, err)
	}

	if len(sealKey) > 0 {
		data, err = util.Seal(sealKey, data)
		if err != nil {
			return fmt.Errorf("failed to seal store %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store file %s: %w", path, err)
	}
	return nil
}
