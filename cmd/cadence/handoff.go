package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/cdr-labs/cadence/pkg/models"
)

// cmdHandoff implements `handoff create --stage id --session id --trigger
// {precompact|session_end|manual} [--completed a,b] [--decisions a,b]
// [--remaining a,b]`: the CLI surface agent-side hook scripts invoke to
// serialize context before exiting.
func cmdHandoff(repoRoot string, args []string) error {
	if len(args) < 1 || args[0] != "create" {
		return fmt.Errorf("usage: handoff create --stage id --session id --trigger {precompact|session_end|manual}")
	}

	fs := flag.NewFlagSet("handoff create", flag.ExitOnError)
	stageID := fs.String("stage", "", "stage id")
	sessionID := fs.String("session", "", "session id")
	trigger := fs.String("trigger", "manual", "precompact|session_end|manual")
	completed := fs.String("completed", "", "comma-separated completed-work bullets")
	decisions := fs.String("decisions", "", "comma-separated key-decision bullets")
	remaining := fs.String("remaining", "", "comma-separated remaining-task summaries")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *stageID == "" {
		return fmt.Errorf("--stage is required")
	}

	var remainingTasks []models.RemainingTask
	for i, summary := range splitNonEmpty(*remaining) {
		remainingTasks = append(remainingTasks, models.RemainingTask{Priority: i + 1, Summary: summary})
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	hk := a.hookHandler()
	path, err := hk.HandoffCreate(*stageID, *sessionID, models.HandoffTrigger(*trigger), splitNonEmpty(*completed), splitNonEmpty(*decisions), remainingTasks)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
