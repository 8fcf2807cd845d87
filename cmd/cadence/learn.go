package main

import (
	"flag"
	"fmt"
)

// cmdLearn implements `learn {extract|verify} --stage id --session id`: the
// CLI surface for the learning-manifest snapshot/check hooks.
// `verify` is also reachable as the standalone `verify learnings` form the
// spec's CLI-surface line lists; both resolve to the same handler method.
func cmdLearn(repoRoot string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: learn {extract|verify} --stage id --session id")
	}
	action, rest := args[0], args[1:]

	fs := flag.NewFlagSet("learn "+action, flag.ExitOnError)
	stageID := fs.String("stage", "", "stage id")
	sessionID := fs.String("session", "", "session id")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if *stageID == "" {
		return fmt.Errorf("--stage is required")
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	hk := a.hookHandler()

	switch action {
	case "extract", "pattern":
		if err := hk.LearnExtract(*stageID, *sessionID); err != nil {
			return err
		}
		fmt.Printf("snapshotted learnings for session %q\n", *sessionID)
		return nil
	case "verify", "learnings":
		if err := hk.VerifyLearnings(*stageID, *sessionID); err != nil {
			return fmt.Errorf("learning integrity check failed: %w", err)
		}
		fmt.Println("learnings verified")
		return nil
	default:
		return fmt.Errorf("unknown learn action %q", action)
	}
}
