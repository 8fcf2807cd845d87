package store

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/cdr-labs/cadence/pkg/models"
)

// LoadStage reads stages/<id>.md. Returns a *NotFoundError (wrapping
// ErrNotFound) if the stage has never been written.
func (s *Store) LoadStage(id string) (*models.Stage, error) {
	path := s.stagePath(id)
	data, err := readFileTolerant("stage", id, path)
	if err != nil {
		return nil, err
	}

	var stage models.Stage
	body, err := decodeFrontMatter(data, &stage)
	if err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	stage.Notes = body
	return &stage, nil
}

// SaveStage writes the stage record atomically.
func (s *Store) SaveStage(stage *models.Stage) error {
	data, err := encodeFrontMatter(stage, stage.Notes)
	if err != nil {
		return &IOError{Op: "encode", Path: s.stagePath(stage.ID), Err: err}
	}
	return atomicWrite(s.stagePath(stage.ID), data, 0o644)
}

// ListStages returns every stage record under stages/, sorted by id.
func (s *Store) ListStages() ([]*models.Stage, error) {
	dir := s.path(dirStages)
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

	stages := make([]*models.Stage, 0, len(ids))
	for _, id := range ids {
		stage, err := s.LoadStage(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // removed between ReadDir and LoadStage
			}
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
