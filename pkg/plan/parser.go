// Package plan implements the Plan Parser: it extracts a stage
// graph from a markdown document carrying an embedded, sentinel-delimited
// YAML block, and validates it against the strict stage schema. It does not
// build or validate the dependency graph — that is pkg/graph's job.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/cdr-labs/cadence/pkg/config"
	"github.com/cdr-labs/cadence/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	startMarker = "<!-- CADENCE METADATA -->"
	endMarker   = "<!-- END CADENCE METADATA -->"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:yaml)?\\s*\\n(.*?)```")
	stageIDRe     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// ParseFile reads path and parses its embedded metadata block.
func ParseFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return Parse(data)
}

// Parse extracts and validates the metadata block from a markdown document.
func Parse(data []byte) (*Plan, error) {
	block, err := extractMetadataBlock(data)
	if err != nil {
		return nil, err
	}
	block = config.ExpandEnv(block)

	doc, err := decodeStrict(block)
	if err != nil {
		return nil, err
	}

	if doc.Version != 1 {
		return nil, fmt.Errorf("%w: got %d, want 1", ErrUnsupportedVersion, doc.Version)
	}

	stages, err := validateStages(doc.Stages)
	if err != nil {
		return nil, err
	}

	return &Plan{AutoMergeDefault: doc.AutoMerge, Stages: stages}, nil
}

// extractMetadataBlock locates the sentinel region and the fenced code block
// within it, returning the block's raw YAML body.
func extractMetadataBlock(data []byte) ([]byte, error) {
	start := bytes.Index(data, []byte(startMarker))
	if start == -1 {
		return nil, fmt.Errorf("%w: start marker %q not found", ErrMissingMetadata, startMarker)
	}
	rest := data[start+len(startMarker):]
	end := bytes.Index(rest, []byte(endMarker))
	if end == -1 {
		return nil, fmt.Errorf("%w: end marker %q not found after start marker", ErrMissingMetadata, endMarker)
	}
	// Reject a second, unbalanced start marker nested before the end marker.
	if bytes.Index(rest[:end], []byte(startMarker)) != -1 {
		return nil, fmt.Errorf("%w: nested start marker before matching end marker", ErrMissingMetadata)
	}
	region := rest[:end]

	match := fencedBlockRe.FindSubmatch(region)
	if match == nil {
		return nil, fmt.Errorf("%w: no fenced code block inside metadata region", ErrMissingMetadata)
	}
	return match[1], nil
}

// decodeStrict decodes the YAML block, rejecting unknown top-level and
// stage-level fields so typos surface as SchemaViolation rather than being
// silently dropped.
func decodeStrict(block []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(block))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if yErr, ok := err.(*yaml.TypeError); ok {
			return nil, &SchemaViolationError{Reason: yErr.Error()}
		}
		line, col := yamlErrorPosition(err)
		return nil, &MalformedMetadataError{Line: line, Column: col, Err: err}
	}
	return &doc, nil
}

// yamlErrorPosition best-effort extracts a line/column from a yaml.v3 error.
// yaml.v3 does not expose structured position info on generic decode
// errors, so this degrades to (0, 0) rather than guessing.
func yamlErrorPosition(_ error) (line, col int) {
	return 0, 0
}

// validateStages checks required fields, id format, and uniqueness, and
// converts declarations into fresh Pending stage records.
func validateStages(decls []StageDeclaration) ([]*models.Stage, error) {
	seen := make(map[string]bool, len(decls))
	stages := make([]*models.Stage, 0, len(decls))

	for _, d := range decls {
		if d.ID == "" {
			return nil, &SchemaViolationError{Field: "id", Reason: "required"}
		}
		if !stageIDRe.MatchString(d.ID) {
			return nil, &SchemaViolationError{StageID: d.ID, Field: "id", Reason: "must match [a-z0-9][a-z0-9-]*"}
		}
		if d.Name == "" {
			return nil, &SchemaViolationError{StageID: d.ID, Field: "name", Reason: "required"}
		}
		if seen[d.ID] {
			return nil, &DuplicateStageError{StageID: d.ID}
		}
		seen[d.ID] = true

		stages = append(stages, d.ToStage())
	}

	return stages, nil
}
