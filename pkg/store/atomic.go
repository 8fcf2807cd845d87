package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicWrite writes data to path via a temp file in the same directory,
// fsync, then rename, so a concurrent reader never observes a torn record
//. The temp file carries a random suffix so concurrent writers
// to the same key never collide on the temp name itself; the rename is
// still last-writer-wins on the final path.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create-temp", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	// On any early return, best-effort clean up the temp file; once the
	// rename below succeeds this is a no-op (the file no longer exists
	// under tmpPath).
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &IOError{Op: "fsync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// appendLine appends a single line to path using O_APPEND so that
// concurrent cross-process writers (the control loop and hook-invoked
// subprocesses) never interleave partial lines.
func appendLine(path string, line []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "open-append", Path: path, Err: err}
	}
	defer f.Close()

	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}
	if _, err := f.Write(line); err != nil {
		return &IOError{Op: "append", Path: path, Err: err}
	}
	return nil
}

// readFileTolerant reads path, returning ErrNotFound (wrapped) instead of
// the raw os.ErrNotExist so callers can use errors.Is(err, store.ErrNotFound)
// uniformly across record kinds.
func readFileTolerant(kind, key, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: kind, Key: key}
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// removeIfExists deletes path, treating absence as success.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func mustAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path %q: %w", path, err)
	}
	return abs, nil
}
