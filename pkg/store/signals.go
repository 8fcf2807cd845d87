package store

import "github.com/cdr-labs/cadence/pkg/models"

// WriteSignal writes signals/<session-id>.md, the one-shot assignment a
// freshly spawned session reads on start.
func (s *Store) WriteSignal(sessionID string, signal *models.Signal) error {
	data, err := encodeFrontMatter(signal, "")
	if err != nil {
		return &IOError{Op: "encode", Path: s.signalPath(sessionID), Err: err}
	}
	return atomicWrite(s.signalPath(sessionID), data, 0o644)
}

// LoadSignal reads a session's assignment.
func (s *Store) LoadSignal(sessionID string) (*models.Signal, error) {
	path := s.signalPath(sessionID)
	data, err := readFileTolerant("signal", sessionID, path)
	if err != nil {
		return nil, err
	}

	var signal models.Signal
	if _, err := decodeFrontMatter(data, &signal); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return &signal, nil
}

// RemoveSignal deletes a session's assignment, e.g. on `stage reset`.
func (s *Store) RemoveSignal(sessionID string) error {
	path := s.signalPath(sessionID)
	if err := removeIfExists(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
