package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdr-labs/cadence/pkg/config"
	"github.com/cdr-labs/cadence/pkg/graph"
	"github.com/cdr-labs/cadence/pkg/store"
)

// cmdInit implements `init [plan] [--clean]`: parses the plan document,
// validates the DAG, and writes the initial stage records plus the
// execution-graph snapshot. No .work/ state is created if validation fails.
func cmdInit(repoRoot string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	clean := fs.Bool("clean", false, "remove any existing .work/ before initializing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	planPath := "PLAN.md"
	if fs.NArg() > 0 {
		planPath = fs.Arg(0)
	}
	if !filepath.IsAbs(planPath) {
		planPath = filepath.Join(repoRoot, planPath)
	}

	workDir := filepath.Join(repoRoot, ".work")
	if *clean {
		if err := os.RemoveAll(workDir); err != nil {
			return fmt.Errorf("clean existing .work: %w", err)
		}
	}

	st := store.New(workDir)
	p, err := st.LoadPlan(planPath)
	if err != nil {
		return err
	}

	if _, err := graph.Build(p.Stages); err != nil {
		return err
	}

	for _, stage := range p.Stages {
		if err := st.SaveStage(stage); err != nil {
			return err
		}
	}

	cfg := config.Default()
	cfg.PlanPath = planPath
	cfg.AutoMergeDefault = p.AutoMergeDefault
	if err := st.SaveExecutionGraph(cfg.ToolPrefix, p.Stages); err != nil {
		return err
	}
	if err := st.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("initialized %d stage(s) from %s\n", len(p.Stages), planPath)
	return nil
}
