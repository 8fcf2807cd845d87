package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// cmdStopGate implements the stop hook: writes the structured
// `{"continue":false,"reason":"..."}` refusal to stdout and exits 2 on
// refusal, or exits 0 silently on a clean allow. The
// worktree's clean/dirty state is computed here, not passed by the caller,
// since the stop hook script has no other way to know it.
func cmdStopGate(ctx context.Context, repoRoot string, args []string) error {
	fs := flag.NewFlagSet("stop-gate", flag.ExitOnError)
	stageID := fs.String("stage", os.Getenv("TOOL_STAGE_ID"), "stage id")
	sessionID := fs.String("session", os.Getenv("TOOL_SESSION_ID"), "session id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *stageID == "" {
		return fmt.Errorf("--stage is required (or TOOL_STAGE_ID)")
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}

	clean := true
	stage, err := a.store.LoadStage(*stageID)
	if err != nil {
		return err
	}
	if stage.WorktreePath != "" {
		if record, werr := a.store.LoadWorktree(*stageID); werr == nil {
			clean, err = a.worktreeManager().IsClean(ctx, record)
			if err != nil {
				return err
			}
		}
	}

	result, err := a.hookHandler().StopGate(*stageID, *sessionID, clean)
	if err != nil {
		return err
	}
	if !result.Continue {
		enc := json.NewEncoder(os.Stdout)
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		os.Exit(2)
	}
	return nil
}
