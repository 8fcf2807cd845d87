// Command cadence is the orchestrator CLI: it drives the control loop and
// exposes the operator and hook-script surface (init, run, status, verify,
// resume, merge, attach, sessions, worktree, graph, stage, clean, handoff,
// learn) plus the internal hook subcommands (heartbeat, stop-gate) that
// agent-side shell scripts invoke. None of this package is part of the
// orchestration core; it only wires the core packages together the way
// cmd/tarsy/main.go wires tarsy's services.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		log.Fatalf("resolve working directory: %v", err)
	}

	// Load repo-local .env (API keys, agent credentials) the way tarsy loads
	// its config-dir .env, tolerating its absence.
	envPath := filepath.Join(repoRoot, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no .env file at %s, continuing with the inherited environment", envPath)
	}

	cmd, rest := os.Args[1], os.Args[2:]
	ctx := context.Background()

	var runErr error
	switch cmd {
	case "init":
		runErr = cmdInit(repoRoot, rest)
	case "run":
		runErr = cmdRun(ctx, repoRoot, rest)
	case "status":
		runErr = cmdStatus(repoRoot, rest)
	case "verify":
		runErr = cmdVerify(ctx, repoRoot, rest)
	case "resume":
		runErr = cmdResume(ctx, repoRoot, rest)
	case "merge":
		runErr = cmdMerge(ctx, repoRoot, rest)
	case "attach":
		runErr = cmdAttach(ctx, repoRoot, rest)
	case "sessions":
		runErr = cmdSessions(ctx, repoRoot, rest)
	case "worktree":
		runErr = cmdWorktree(ctx, repoRoot, rest)
	case "graph":
		runErr = cmdGraph(repoRoot, rest)
	case "stage":
		runErr = cmdStage(ctx, repoRoot, rest)
	case "clean":
		runErr = cmdClean(ctx, repoRoot, rest)
	case "handoff":
		runErr = cmdHandoff(repoRoot, rest)
	case "learn":
		runErr = cmdLearn(repoRoot, rest)
	case "heartbeat":
		runErr = cmdHeartbeat(repoRoot, rest)
	case "stop-gate":
		runErr = cmdStopGate(ctx, repoRoot, rest)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "cadence: unknown subcommand %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "cadence %s: %v\n", cmd, runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cadence <command> [flags]

commands:
  init [plan] [--clean]
  run [--stage id] [--max-parallel n] [--foreground] [--auto-merge]
  status
  verify <id>
  resume <id>
  merge <id> [--force]
  attach [id|list|all]
  sessions {list|kill} [id]
  worktree {list|clean}
  graph {show}
  stage {complete|block|reset|waiting|resume} <id> [flags]
  clean [--all|--worktrees|--sessions|--state]
  handoff create --stage id --session id --trigger {precompact|session_end|manual}
  learn {extract|verify} --stage id --session id
  heartbeat update --stage id --session id --tool name
  stop-gate --stage id --session id`)
}
