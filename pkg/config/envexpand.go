package config

import "os"

// ExpandEnv expands environment variables in TOML content using Go's
// standard library. Supports both ${VAR} and $VAR syntax (standard
// shell-style).
//
// Examples:
//   - ${CADENCE_TOOL_PREFIX} → value of CADENCE_TOOL_PREFIX
//   - $HOME/.config/cadence  → path under the user's home directory
//
// Missing variables expand to empty string. Nothing reports this: a field
// left empty by the expansion decodes to its zero value, and the loader's
// merge then keeps the default for it.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
