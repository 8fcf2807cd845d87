package plan

import "github.com/cdr-labs/cadence/pkg/models"

// Document is the parsed form of the embedded YAML metadata block
//. Field names must match the plan document exactly;
// decoding is strict so unknown keys surface as SchemaViolation.
type Document struct {
	Version   int                `yaml:"version"`
	AutoMerge *bool              `yaml:"auto_merge,omitempty"`
	Stages    []StageDeclaration `yaml:"stages"`
}

// StageDeclaration is one entry of the plan's stages sequence.
type StageDeclaration struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description,omitempty"`
	Dependencies  []string `yaml:"dependencies"`
	ParallelGroup string   `yaml:"parallel_group,omitempty"`
	Acceptance    []string `yaml:"acceptance,omitempty"`
	Files         []string `yaml:"files,omitempty"`
	AutoMerge     *bool    `yaml:"auto_merge,omitempty"`
}

// ToStage converts a parsed declaration into a fresh, Pending stage record.
func (d StageDeclaration) ToStage() *models.Stage {
	s := &models.Stage{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Dependencies:  append([]string(nil), d.Dependencies...),
		ParallelGroup: d.ParallelGroup,
		Acceptance:    append([]string(nil), d.Acceptance...),
		Files:         append([]string(nil), d.Files...),
		Status:        models.StagePending,
	}
	if d.AutoMerge != nil {
		if *d.AutoMerge {
			s.AutoMerge = models.AutoMergeOn
		} else {
			s.AutoMerge = models.AutoMergeOff
		}
	}
	return s
}

// Plan is the fully parsed, not-yet-validated plan: the stage set plus the
// document-level auto-merge default.
type Plan struct {
	AutoMergeDefault *bool
	Stages           []*models.Stage
}
