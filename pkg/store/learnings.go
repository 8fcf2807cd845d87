package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LearningsDir returns the directory a session writes its durable pattern
// files into: .work/learnings/<session-id>/.
func (s *Store) LearningsDir(sessionID string) string {
	return s.path("learnings", sessionID)
}

// learningsManifestPath is the snapshot taken at "learn extract" time,
// checked again by "verify learnings" before a stop-gate allows the
// session to end.
func (s *Store) learningsManifestPath(sessionID string) string {
	return s.path("learnings", sessionID+".manifest.json")
}

type learningsManifest struct {
	Files map[string]string `json:"files"` // relative path -> sha256 hex
}

// SnapshotLearnings hashes every file currently under the session's
// learnings directory and records the manifest atomically. Absence of any
// learning files is not an error — a session may legitimately produce none.
func (s *Store) SnapshotLearnings(sessionID string) error {
	manifest, err := s.hashLearnings(sessionID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return &IOError{Op: "encode", Path: s.learningsManifestPath(sessionID), Err: err}
	}
	return atomicWrite(s.learningsManifestPath(sessionID), data, 0o644)
}

// VerifyLearnings re-hashes the learnings directory and compares it against
// the manifest taken at SnapshotLearnings time, returning a non-nil error
// (translated by the stop-gate into a blocking refusal) if any file was
// added, removed, or changed since — evidence of a truncated or corrupted
// write rather than an intentional edit.
func (s *Store) VerifyLearnings(sessionID string) error {
	path := s.learningsManifestPath(sessionID)
	data, err := readFileTolerant("learnings-manifest", sessionID, path)
	if err != nil {
		return err
	}
	var want learningsManifest
	if err := json.Unmarshal(data, &want); err != nil {
		return &IOError{Op: "decode", Path: path, Err: err}
	}

	got, err := s.hashLearnings(sessionID)
	if err != nil {
		return err
	}

	if len(want.Files) != len(got.Files) {
		return fmt.Errorf("learnings changed: expected %d file(s), found %d", len(want.Files), len(got.Files))
	}
	for rel, wantSum := range want.Files {
		gotSum, ok := got.Files[rel]
		if !ok {
			return fmt.Errorf("learnings changed: %s missing", rel)
		}
		if gotSum != wantSum {
			return fmt.Errorf("learnings changed: %s checksum mismatch", rel)
		}
	}
	return nil
}

func (s *Store) hashLearnings(sessionID string) (*learningsManifest, error) {
	dir := s.LearningsDir(sessionID)
	manifest := &learningsManifest{Files: map[string]string{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return manifest, nil
		}
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(dir, name)
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, &IOError{Op: "read", Path: full, Err: err}
		}
		sum := sha256.Sum256(data)
		manifest.Files[name] = hex.EncodeToString(sum[:])
	}
	return manifest, nil
}
