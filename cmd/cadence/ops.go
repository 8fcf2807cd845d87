package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/cdr-labs/cadence/pkg/models"
)

// cmdAttach implements `attach [id|list|all]`: drops the operator into the
// multiplexer pane hosting a stage's session, or lists the live ones.
func cmdAttach(ctx context.Context, repoRoot string, args []string) error {
	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	mux := a.multiplexer()

	if len(args) == 0 || args[0] == "list" || args[0] == "all" {
		names, err := mux.List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no live sessions")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	stage, err := a.store.LoadStage(args[0])
	if err != nil {
		return err
	}
	if stage.AssignedSession == "" {
		return fmt.Errorf("stage %q has no assigned session", stage.ID)
	}
	session, err := a.store.LoadSession(stage.AssignedSession)
	if err != nil {
		return err
	}

	// tmux attach replaces this process's controlling terminal; there is
	// nothing meaningful to do after it returns.
	bin, err := exec.LookPath("tmux")
	if err != nil {
		return fmt.Errorf("tmux binary not found: %w", err)
	}
	argv := []string{"tmux", "attach-session", "-t", session.MultiplexerSessionName}
	return syscall.Exec(bin, argv, os.Environ())
}

// cmdSessions implements `sessions {list|kill} [id]`.
func cmdSessions(ctx context.Context, repoRoot string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sessions {list|kill} [id]")
	}
	action, rest := args[0], args[1:]

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}

	switch action {
	case "list":
		sessions, err := a.store.ListSessions()
		if err != nil {
			return err
		}
		fmt.Printf("%-28s %-10s %-10s %-8s %s\n", "SESSION", "STAGE", "STATE", "CTX%", "LAST_TOOL")
		for _, s := range sessions {
			fmt.Printf("%-28s %-10s %-10s %-8d %s\n", s.ID, s.StageID, s.State, s.ContextPercent, s.LastTool)
		}
		return nil
	case "kill":
		if len(rest) < 1 {
			return fmt.Errorf("usage: sessions kill <id>")
		}
		session, err := a.store.LoadSession(rest[0])
		if err != nil {
			return err
		}
		return a.supervisor().Kill(ctx, session, a.cfg.KillGracePeriod)
	default:
		return fmt.Errorf("unknown sessions action %q", action)
	}
}

// cmdWorktree implements `worktree {list|clean}`.
func cmdWorktree(ctx context.Context, repoRoot string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: worktree {list|clean}")
	}
	action := args[0]

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	stages, err := a.store.ListStages()
	if err != nil {
		return err
	}

	switch action {
	case "list":
		for _, s := range stages {
			if s.WorktreePath == "" {
				continue
			}
			fmt.Printf("%-20s %-10s %s\n", s.ID, s.Branch, s.WorktreePath)
		}
		return nil
	case "clean":
		wt := a.worktreeManager()
		for _, s := range stages {
			if s.WorktreePath == "" || s.Status != models.StageMerged {
				continue
			}
			record, err := a.store.LoadWorktree(s.ID)
			if err != nil {
				continue
			}
			if err := wt.Remove(ctx, record, false); err != nil {
				fmt.Printf("warning: %v\n", err)
				continue
			}
			_ = a.store.RemoveWorktree(s.ID)
			fmt.Printf("removed worktree for merged stage %q\n", s.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown worktree action %q", action)
	}
}

// cmdGraph implements `graph show`: prints the stable topological order and
// each stage's declared dependencies.
func cmdGraph(repoRoot string, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	g, err := a.graph()
	if err != nil {
		return err
	}

	for _, id := range g.TopologicalOrder() {
		deps := g.Dependencies(id)
		if len(deps) == 0 {
			fmt.Printf("%s\n", id)
			continue
		}
		fmt.Printf("%s <- %v\n", id, deps)
	}
	return nil
}

// cmdClean implements `clean [--all|--worktrees|--sessions|--state]`:
// operator-driven teardown, never invoked automatically by the loop.
func cmdClean(ctx context.Context, repoRoot string, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	all := fs.Bool("all", false, "remove worktrees, kill sessions, and wipe .work/")
	worktrees := fs.Bool("worktrees", false, "remove every tracked worktree")
	sessions := fs.Bool("sessions", false, "kill every live session")
	state := fs.Bool("state", false, "wipe .work/ entirely (irreversible)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}

	if *all || *sessions {
		sessionRecords, err := a.store.ListSessions()
		if err != nil {
			return err
		}
		sv := a.supervisor()
		for _, s := range sessionRecords {
			if !s.IsLive() {
				continue
			}
			if err := sv.Kill(ctx, s, a.cfg.KillGracePeriod); err != nil {
				fmt.Printf("warning: kill session %q: %v\n", s.ID, err)
			}
		}
	}

	if *all || *worktrees {
		stages, err := a.store.ListStages()
		if err != nil {
			return err
		}
		wt := a.worktreeManager()
		for _, s := range stages {
			if s.WorktreePath == "" {
				continue
			}
			record, err := a.store.LoadWorktree(s.ID)
			if err != nil {
				continue
			}
			if err := wt.Remove(ctx, record, true); err != nil {
				fmt.Printf("warning: remove worktree for %q: %v\n", s.ID, err)
				continue
			}
			_ = a.store.RemoveWorktree(s.ID)
		}
	}

	if *all || *state {
		if err := os.RemoveAll(a.store.Root()); err != nil {
			return err
		}
		fmt.Println("removed .work/")
	}
	return nil
}
