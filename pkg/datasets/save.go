package datasets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Save persists the dataset to its save path. The full key set is written
// to a temporary file in the same directory and renamed into place, so a
// crash mid-save never truncates the previous state. Datasets without a
// save path are a no-op.
func (d *Dataset) Save() error {
	if d.savePath == "" {
		return nil
	}

	dir := filepath.Dir(d.savePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create dataset directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.savePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for dataset %q: %w", d.name, err)
	}
	defer os.Remove(tmp.Name())

	if err := d.Dump(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write dataset %q: %w", d.name, err)
	}
	if err := os.Rename(tmp.Name(), d.savePath); err != nil {
		return fmt.Errorf("failed to rename dataset save file for %q: %w", d.name, err)
	}

	d.logger.Info("dataset saved",
		"dataset", d.name, "id", d.id, "path", d.savePath, "keys", d.Len())
	return nil
}

// Dump writes the dataset keys in their textual CSV form, sorted for
// stable output.
func (d *Dataset) Dump(w io.Writer) error {
	d.mu.RLock()
	keys := make([]string, 0, len(d.elems))
	for k := range d.elems {
		keys = append(keys, k)
	}
	d.mu.RUnlock()

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = d.formatKeyText(k)
	}
	sort.Strings(lines)

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write dataset %q: %w", d.name, err)
		}
	}
	return bw.Flush()
}
