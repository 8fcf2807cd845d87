package main

import (
	"flag"
	"fmt"
	"os"
)

// cmdHeartbeat implements `heartbeat update --stage id --session id --tool
// name`: called on every tool use by the PostToolUse hook script (spec
// §4.7). Falls back to the TOOL_STAGE_ID/TOOL_SESSION_ID/TOOL_NAME
// environment variables the supervisor injects, so the hook script itself
// can be a one-liner.
func cmdHeartbeat(repoRoot string, args []string) error {
	if len(args) < 1 || args[0] != "update" {
		return fmt.Errorf("usage: heartbeat update --stage id --session id --tool name")
	}

	fs := flag.NewFlagSet("heartbeat update", flag.ExitOnError)
	stageID := fs.String("stage", os.Getenv("TOOL_STAGE_ID"), "stage id")
	sessionID := fs.String("session", os.Getenv("TOOL_SESSION_ID"), "session id")
	tool := fs.String("tool", os.Getenv("TOOL_NAME"), "tool name that just ran")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *stageID == "" || *sessionID == "" {
		return fmt.Errorf("--stage and --session are required (or TOOL_STAGE_ID/TOOL_SESSION_ID)")
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	return a.hookHandler().HeartbeatUpdate(*stageID, *sessionID, *tool)
}
