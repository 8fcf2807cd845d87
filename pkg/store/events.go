package store

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/cdr-labs/cadence/pkg/models"
)

// AppendEvent appends one JSON line to hooks/events.jsonl using O_APPEND,
// so concurrent writers (control loop and hook subprocesses) never tear a
// line.
func (s *Store) AppendEvent(event *models.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return &IOError{Op: "encode", Path: s.eventsLogPath(), Err: err}
	}
	return appendLine(s.eventsLogPath(), line)
}

// TailEvents returns up to n most recent events for a stage, in
// chronological order, used to seed handoff event-log tails.
func (s *Store) TailEvents(stageID string, n int) ([]*models.Event, error) {
	path := s.eventsLogPath()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var matched []*models.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e models.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // tolerate a stray malformed line rather than aborting the tail
		}
		if stageID != "" && e.StageID != stageID {
			continue
		}
		matched = append(matched, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "scan", Path: path, Err: err}
	}

	if n > 0 && len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	return matched, nil
}
