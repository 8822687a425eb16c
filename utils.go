package cpconv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// writeFileAtomic writes data to a temporary file in the directory of path and renames it to path
// once it is complete and synced. A reader of path sees either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	return writeFilesAtomic([]string{path}, [][]byte{data}, perm)
}

// writeFilesAtomic writes data[i] to paths[i]. All files are first staged as synced temporary
// files next to their targets; only if every file was staged are they renamed into place. If
// staging fails, no target is touched and the temporary files are removed.
func writeFilesAtomic(paths []string, data [][]byte, perm os.FileMode) (err error) {
	if len(paths) != len(data) {
		return fmt.Errorf("%d paths for %d files", len(paths), len(data))
	}

	tmpPaths := make([]string, 0, len(paths))
	defer func() {
		if err != nil {
			for _, tmp := range tmpPaths {
				_ = os.Remove(tmp)
			}
		}
	}()
	for i, path := range paths {
		tmp, err := stageFile(path, data[i], perm)
		if err != nil {
			return err
		}
		tmpPaths = append(tmpPaths, tmp)
	}

	for i, tmp := range tmpPaths {
		if err := os.Rename(tmp, paths[i]); err != nil {
			return err
		}
	}
	return nil
}

// stageFile writes data to a new temporary file in the directory of path and returns its path.
func stageFile(path string, data []byte, perm os.FileMode) (tmpPath string, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath = tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return "", err
	}
	return tmpPath, nil
}

// writeJSONFile writes v as indented JSON to path, replacing the file atomically.
func writeJSONFile(path string, v interface{}) error {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %w", path, err)
	}
	return nil
}

// splitPath splits the given file path into the dir name, the base name without extension and the
// extension (without the dot).
func splitPath(path string) (dir, baseNoExt, ext string, err error) {
	dir, file := filepath.Split(path)
	ext = filepath.Ext(file)
	if ext == "" {
		return "", "", "", fmt.Errorf("missing file extension in %q", path)
	}

	dir = strings.TrimSuffix(dir, string(os.PathSeparator))
	baseNoExt = file[0 : len(file)-len(ext)]
	ext = ext[1:]

	return dir, baseNoExt, ext, nil
}

// closeWithErrCheck calls c.Close(). If it returns an error, and (*e == nil), e is set to that
// error.
func closeWithErrCheck(c io.Closer, e *error) {
	err := c.Close()
	if err != nil && *e == nil {
		*e = err
	}
}
