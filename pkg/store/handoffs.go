package store

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cdr-labs/cadence/pkg/models"
)

// CreateHandoff writes handoffs/<stage-id>-handoff-NNN.md, numbering the
// file one past the highest existing handoff for that stage. Returns the written path.
func (s *Store) CreateHandoff(handoff *models.Handoff) (string, error) {
	n, err := s.nextHandoffNumber(handoff.StageID)
	if err != nil {
		return "", err
	}
	handoff.Number = n

	path := s.handoffPath(handoff.StageID, n)
	data, err := encodeFrontMatter(handoff, "")
	if err != nil {
		return "", &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := atomicWrite(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ListHandoffs returns every handoff recorded for a stage, in ascending
// number order.
func (s *Store) ListHandoffs(stageID string) ([]*models.Handoff, error) {
	dir := s.path(dirHandoffs)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}

	prefix := stageID + "-handoff-"
	var numbers []int
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		n, err := parseHandoffNumber(e.Name(), prefix)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	handoffs := make([]*models.Handoff, 0, len(numbers))
	for _, n := range numbers {
		h, err := s.loadHandoff(stageID, n)
		if err != nil {
			continue
		}
		handoffs = append(handoffs, h)
	}
	return handoffs, nil
}

// LatestHandoff returns the highest-numbered handoff for a stage, used to
// seed a resuming session's signal.
func (s *Store) LatestHandoff(stageID string) (*models.Handoff, error) {
	handoffs, err := s.ListHandoffs(stageID)
	if err != nil {
		return nil, err
	}
	if len(handoffs) == 0 {
		return nil, &NotFoundError{Kind: "handoff", Key: stageID}
	}
	return handoffs[len(handoffs)-1], nil
}

func (s *Store) loadHandoff(stageID string, n int) (*models.Handoff, error) {
	path := s.handoffPath(stageID, n)
	data, err := readFileTolerant("handoff", fmt.Sprintf("%s-%d", stageID, n), path)
	if err != nil {
		return nil, err
	}
	var h models.Handoff
	if _, err := decodeFrontMatter(data, &h); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return &h, nil
}

func (s *Store) nextHandoffNumber(stageID string) (int, error) {
	handoffs, err := s.ListHandoffs(stageID)
	if err != nil {
		return 0, err
	}
	if len(handoffs) == 0 {
		return 1, nil
	}
	return handoffs[len(handoffs)-1].Number + 1, nil
}

func (s *Store) handoffPath(stageID string, n int) string {
	return s.path(dirHandoffs, fmt.Sprintf("%s-handoff-%03d.md", stageID, n))
}

func parseHandoffNumber(filename, prefix string) (int, error) {
	rest := strings.TrimPrefix(filename, prefix)
	rest = strings.TrimSuffix(rest, ".md")
	return strconv.Atoi(rest)
}
