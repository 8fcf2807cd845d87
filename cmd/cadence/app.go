package main

import (
	"path/filepath"

	"github.com/cdr-labs/cadence/pkg/config"
	"github.com/cdr-labs/cadence/pkg/graph"
	"github.com/cdr-labs/cadence/pkg/hook"
	"github.com/cdr-labs/cadence/pkg/merge"
	"github.com/cdr-labs/cadence/pkg/store"
	"github.com/cdr-labs/cadence/pkg/supervisor"
	"github.com/cdr-labs/cadence/pkg/tmux"
	"github.com/cdr-labs/cadence/pkg/worktree"
)

// app bundles the collaborators every subcommand but init needs. It is
// built fresh per invocation; the CLI holds no state across commands
// beyond what .work/ already durably records.
type app struct {
	repoRoot string
	store    *store.Store
	cfg      *config.Config
}

func newApp(repoRoot string) (*app, error) {
	st := store.New(filepath.Join(repoRoot, ".work"))
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &app{repoRoot: repoRoot, store: st, cfg: cfg}, nil
}

// graph rebuilds the DAG from the currently persisted stage set. The
// control loop and most CLI commands only need this to compute readiness
// or display topological order; it is cheap to recompute per invocation
// rather than keep an execution-graph cache of models.Stage pointers.
func (a *app) graph() (*graph.Graph, error) {
	stages, err := a.store.ListStages()
	if err != nil {
		return nil, err
	}
	return graph.Build(stages)
}

func (a *app) worktreeManager() *worktree.Manager {
	git := worktree.NewExecGit()
	return worktree.New(git, a.repoRoot, a.store.Root(), a.cfg.ToolPrefix, a.cfg.IntegrationBranch)
}

func (a *app) multiplexer() tmux.Multiplexer {
	return tmux.New()
}

func (a *app) agentCommand() supervisor.AgentCommand {
	command, args := a.cfg.AgentCommand, a.cfg.AgentArgs
	return func(stageID, sessionID, workDir string) (string, []string) {
		return command, args
	}
}

func (a *app) supervisor() *supervisor.Supervisor {
	return supervisor.New(a.multiplexer(), a.store, a.agentCommand(), a.cfg.ToolPrefix)
}

func (a *app) mergeCoordinator() *merge.Coordinator {
	return merge.New(worktree.NewExecGit(), a.repoRoot, a.cfg.IntegrationBranch)
}

func (a *app) hookHandler() *hook.Handler {
	return hook.New(a.store)
}
