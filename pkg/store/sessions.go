package store

import (
	"os"
	"sort"
	"strings"

	"github.com/cdr-labs/cadence/pkg/models"
)

// LoadSession reads sessions/<id>.md.
func (s *Store) LoadSession(id string) (*models.Session, error) {
	path := s.sessionPath(id)
	data, err := readFileTolerant("session", id, path)
	if err != nil {
		return nil, err
	}

	var session models.Session
	body, err := decodeFrontMatter(data, &session)
	if err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	session.Notes = body
	return &session, nil
}

// SaveSession writes the session record atomically.
func (s *Store) SaveSession(session *models.Session) error {
	data, err := encodeFrontMatter(session, session.Notes)
	if err != nil {
		return &IOError{Op: "encode", Path: s.sessionPath(session.ID), Err: err}
	}
	return atomicWrite(s.sessionPath(session.ID), data, 0o644)
}

// ListSessions returns every session record under sessions/, sorted by id.
func (s *Store) ListSessions() ([]*models.Session, error) {
	dir := s.path(dirSessions)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(ids)

	sessions := make([]*models.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.LoadSession(id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}
