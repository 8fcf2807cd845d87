package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/cdr-labs/cadence/pkg/models"
)

// WriteHeartbeat writes heartbeat/<stage-id>.json atomically, and also
// touches sessions/<id>.heartbeat to a fresh mtime so a cheap os.Stat can
// answer "is this session's liveness signal fresh" without a full decode.
func (s *Store) WriteHeartbeat(stageID, sessionID string, hb *models.Heartbeat) error {
	data, err := json.Marshal(hb)
	if err != nil {
		return &IOError{Op: "encode", Path: s.heartbeatPath(stageID), Err: err}
	}
	if err := atomicWrite(s.heartbeatPath(stageID), data, 0o644); err != nil {
		return err
	}
	if sessionID != "" {
		if err := touch(s.heartbeatFilePath(sessionID)); err != nil {
			return &IOError{Op: "touch", Path: s.heartbeatFilePath(sessionID), Err: err}
		}
	}
	return nil
}

// LoadHeartbeat reads a stage's last-known heartbeat.
func (s *Store) LoadHeartbeat(stageID string) (*models.Heartbeat, error) {
	path := s.heartbeatPath(stageID)
	data, err := readFileTolerant("heartbeat", stageID, path)
	if err != nil {
		return nil, err
	}
	var hb models.Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return &hb, nil
}

// touch creates path if absent, or updates its mtime to now if present.
func touch(path string) error {
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}
