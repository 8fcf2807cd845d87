package models

// FileScope lists the files a session is expected to read or modify,
// advisory only.
type FileScope struct {
	ReadOnly []string `toml:"read_only,omitempty" yaml:"read_only,omitempty"`
	Modify   []string `toml:"modify,omitempty" yaml:"modify,omitempty"`
}

// Signal is the one-shot assignment delivered to a freshly started session.
type Signal struct {
	SessionID         string    `toml:"session_id" yaml:"session_id"`
	StageID           string    `toml:"stage_id" yaml:"stage_id"`
	Task              string    `toml:"task" yaml:"task"`
	DependencySummary string    `toml:"dependency_summary,omitempty" yaml:"dependency_summary,omitempty"`
	PriorHandoffs     []string  `toml:"prior_handoffs,omitempty" yaml:"prior_handoffs,omitempty"`
	FileScope         FileScope `toml:"file_scope" yaml:"file_scope"`
	Acceptance        []string  `toml:"acceptance,omitempty" yaml:"acceptance,omitempty"`
	NegativeBoundary  []string  `toml:"negative_boundary,omitempty" yaml:"negative_boundary,omitempty"`

	// ConflictReport is set only when this signal seeds a merge
	// conflict-resolution session.
	ConflictReport *ConflictReport `toml:"conflict_report,omitempty" yaml:"conflict_report,omitempty"`
}

// ConflictReport carries the three-way merge context for a resolution session.
type ConflictReport struct {
	ConflictedPaths []string `toml:"conflicted_paths" yaml:"conflicted_paths"`
	MarkerContext   string   `toml:"marker_context" yaml:"marker_context"`
	OurBranch       string   `toml:"our_branch" yaml:"our_branch"`
	TheirBranch     string   `toml:"their_branch" yaml:"their_branch"`
}
