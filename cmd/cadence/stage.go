package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cdr-labs/cadence/pkg/control"
	"github.com/cdr-labs/cadence/pkg/models"
)

// cmdStage implements `stage {complete|block|reset|waiting|resume} <id>
// [flags]`: the operator-visible front door to the same transitions hooks
// call, useful for manual intervention.
func cmdStage(ctx context.Context, repoRoot string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: stage {complete|block|reset|waiting|resume} <id> [flags]")
	}
	action, stageID, rest := args[0], args[1], args[2:]

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	hk := a.hookHandler()

	switch action {
	case "complete":
		fs := flag.NewFlagSet("stage complete", flag.ExitOnError)
		session := fs.String("session", "", "session id declaring completion")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		wt := a.worktreeManager()
		stage, err := a.store.LoadStage(stageID)
		if err != nil {
			return err
		}
		clean := true
		if stage.WorktreePath != "" {
			record, werr := a.store.LoadWorktree(stageID)
			if werr == nil {
				clean, err = wt.IsClean(ctx, record)
				if err != nil {
					return err
				}
			}
		}
		return hk.StageComplete(stageID, *session, clean)

	case "block":
		fs := flag.NewFlagSet("stage block", flag.ExitOnError)
		session := fs.String("session", "", "session id")
		reason := fs.String("reason", "blocked by operator", "why the stage is blocked")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return hk.StageBlock(stageID, *session, *reason)

	case "waiting":
		fs := flag.NewFlagSet("stage waiting", flag.ExitOnError)
		session := fs.String("session", "", "session id")
		question := fs.String("question", "", "what the session needs from the operator")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return hk.StageWaiting(stageID, *session, *question)

	case "resume":
		fs := flag.NewFlagSet("stage resume", flag.ExitOnError)
		session := fs.String("session", "", "session id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return hk.StageResume(stageID, *session)

	case "reset":
		fs := flag.NewFlagSet("stage reset", flag.ExitOnError)
		killSession := fs.Bool("kill-session", false, "terminate the live multiplexer session and hard-reset the worktree")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *killSession {
			stage, err := a.store.LoadStage(stageID)
			if err != nil {
				return err
			}
			if stage.AssignedSession != "" {
				session, err := a.store.LoadSession(stage.AssignedSession)
				if err == nil {
					if err := a.supervisor().Kill(ctx, session, a.cfg.KillGracePeriod); err != nil {
						fmt.Printf("warning: kill session %q: %v\n", session.ID, err)
					}
				}
			}
			if wtRecord, err := a.store.LoadWorktree(stageID); err == nil {
				if err := a.worktreeManager().Remove(ctx, wtRecord, true); err != nil {
					fmt.Printf("warning: remove worktree for %q: %v\n", stageID, err)
				}
				_ = a.store.RemoveWorktree(stageID)
			}
		}
		return hk.StageReset(stageID)

	default:
		return fmt.Errorf("unknown stage action %q", action)
	}
}

// cmdVerify implements `verify <id>` and the `verify learnings ...` hook
// form, dispatched on the first argument since both share the "verify" verb.
func cmdVerify(ctx context.Context, repoRoot string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: verify <id> | verify learnings --stage id --session id")
	}
	if args[0] == "learnings" {
		return cmdLearn(repoRoot, append([]string{"verify"}, args[1:]...))
	}
	stageID := args[0]

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	stage, err := a.store.LoadStage(stageID)
	if err != nil {
		return err
	}

	v := control.ShellVerifier{}
	if err := v.Verify(ctx, stage, a.cfg.AcceptanceTimeout); err != nil {
		return fmt.Errorf("acceptance failed: %w", err)
	}
	fmt.Printf("stage %q: all acceptance commands passed\n", stageID)
	return nil
}

// cmdResume implements `resume <id>`: resets a Blocked stage to Ready so the
// control loop dispatches it on its next tick. For any other state it only
// prints the stage's status and changes nothing.
func cmdResume(ctx context.Context, repoRoot string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: resume <id>")
	}
	stageID := args[0]

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	stage, err := a.store.LoadStage(stageID)
	if err != nil {
		return err
	}
	if stage.Status == models.StageBlocked {
		if err := a.hookHandler().StageReset(stageID); err != nil {
			return err
		}
		fmt.Printf("stage %q reset to Ready; the control loop will dispatch it on the next tick\n", stageID)
		return nil
	}
	fmt.Printf("stage %q is %s; the control loop resumes NeedsHandoff stages automatically\n", stageID, stage.Status)
	return nil
}
