package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"example.com/activityfilter/internal/domain"
)

const outputMode = 0o644

// Encode writes the header followed by every row of ds to w.
func Encode(w io.Writer, ds domain.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(ds.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// Save writes ds to path. The data goes to a temporary file in the same directory
// which is renamed over path only once it is fully written and synced, so a
// failed save never leaves a truncated output behind.
func Save(path string, ds domain.Dataset) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrite, err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, ds); err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrWrite, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", domain.ErrWrite, path, err)
	}
	if err := tmp.Chmod(outputMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", domain.ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", domain.ErrWrite, path, err)
	}
	committed = true
	return nil
}
