package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// outputFile pairs a file name with the value serialized into it.
type outputFile struct {
	name  string
	value any
}

// writeOutputs creates dir and writes every file into it.
func writeOutputs(dir string, files []outputFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for _, f := range files {
		if err := writeJSONFile(filepath.Join(dir, f.name), f.value); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONFile writes v as indented JSON using the temp-file, fsync, rename
// pattern, so a reader never sees a partial file.
func writeJSONFile(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".legacymig-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s %s: %w", step, filepath.Base(path), err)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fail("encoding", err)
	}
	if err := w.Flush(); err != nil {
		return fail("flushing", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
