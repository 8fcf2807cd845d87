package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `# Example Plan

<!-- CADENCE METADATA -->
` + "```" + `yaml
version: 1
auto_merge: false
stages:
  - id: a
    name: Stage A
    dependencies: []
  - id: b
    name: Stage B
    dependencies: [a]
    acceptance:
      - "go test ./..."
` + "```" + `
<!-- END CADENCE METADATA -->

Some prose outside the sentinel region is ignored.
`

func TestParse_Valid(t *testing.T) {
	p, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, "a", p.Stages[0].ID)
	assert.Equal(t, []string{"a"}, p.Stages[1].Dependencies)
	require.NotNil(t, p.AutoMergeDefault)
	assert.False(t, *p.AutoMergeDefault)
}

func TestParse_MissingMetadata(t *testing.T) {
	_, err := Parse([]byte("# Plan\n\nno metadata here\n"))
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestParse_UnbalancedMarkers(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\nstill open\n<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages: []\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestParse_MalformedYAML(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages: [this is not valid: yaml: at all\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestParse_UnknownField(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages:\n  - id: a\n    name: A\n    dependencies: []\n    bogus_field: true\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestParse_MissingRequiredField(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages:\n  - name: A\n    dependencies: []\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestParse_BadIDFormat(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages:\n  - id: Not_Kebab\n    name: A\n    dependencies: []\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestParse_DuplicateStage(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages:\n  - id: a\n    name: A\n    dependencies: []\n  - id: a\n    name: A2\n    dependencies: []\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrDuplicateStage)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 2\nstages: []\n```\n<!-- END CADENCE METADATA -->\n"
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestParse_ExpandsEnvVarsInMetadataBlock(t *testing.T) {
	t.Setenv("CADENCE_TEST_STAGE_NAME", "Stage From Env")
	doc := "<!-- CADENCE METADATA -->\n```yaml\nversion: 1\nstages:\n  - id: a\n    name: ${CADENCE_TEST_STAGE_NAME}\n    dependencies: []\n```\n<!-- END CADENCE METADATA -->\n"
	p, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
	assert.Equal(t, "Stage From Env", p.Stages[0].Name)
}
