package store

import (
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/pelletier/go-toml/v2"
)

// LoadWorktree reads worktrees/<stage-id>.toml.
func (s *Store) LoadWorktree(stageID string) (*models.Worktree, error) {
	path := s.worktreePath(stageID)
	data, err := readFileTolerant("worktree", stageID, path)
	if err != nil {
		return nil, err
	}
	var wt models.Worktree
	if err := toml.Unmarshal(data, &wt); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return &wt, nil
}

// SaveWorktree persists worktree metadata atomically.
func (s *Store) SaveWorktree(wt *models.Worktree) error {
	data, err := toml.Marshal(wt)
	if err != nil {
		return &IOError{Op: "encode", Path: s.worktreePath(wt.StageID), Err: err}
	}
	return atomicWrite(s.worktreePath(wt.StageID), data, 0o644)
}

// RemoveWorktree deletes the worktree metadata record, e.g. after merge.
func (s *Store) RemoveWorktree(stageID string) error {
	path := s.worktreePath(stageID)
	if err := removeIfExists(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
