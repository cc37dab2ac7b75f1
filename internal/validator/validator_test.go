package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/pkg/domain"
)

func knob(path string, props map[string]any) domain.Node {
	return domain.Node{Type: domain.TypeKnob, Path: path, Properties: props}
}

func TestValidTreeReportsNoDefects(t *testing.T) {
	r := ValidateTree([]domain.Node{
		{
			Type: domain.TypeGroup, Path: "synth",
			Children: []domain.Node{
				knob("cutoff", map[string]any{"min": 20, "max": 20000, "default": 1000}),
				{Type: domain.TypeFader, Path: "level"},
				{Type: domain.TypeActuator, Path: "gate"},
			},
		},
	})

	assert.True(t, r.OK())
	assert.Equal(t, 3, r.Controls)
	assert.Contains(t, r.Markdown(), "No defects found")
}

func TestInvertedRangeFlagged(t *testing.T) {
	r := ValidateTree([]domain.Node{
		knob("bad", map[string]any{"min": 10, "max": 5}),
	})

	require.Len(t, r.Issues, 1)
	assert.Equal(t, "bad", r.Issues[0].Path)
	assert.Contains(t, r.Issues[0].Reason, "exceeds max")
}

func TestDefaultOutsideRangeFlagged(t *testing.T) {
	r := ValidateTree([]domain.Node{
		knob("bad", map[string]any{"min": 10, "max": 20, "default": 50}),
	})

	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0].Reason, "outside range")
}

func TestUnsetRangePassesWithDefaults(t *testing.T) {
	// Composition defaults an unset range to 0..100.
	r := ValidateTree([]domain.Node{knob("gain", nil)})
	assert.True(t, r.OK())
}

func TestMissingPathFlagged(t *testing.T) {
	r := ValidateTree([]domain.Node{
		{Type: domain.TypeKnob, Path: ""},
	})
	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0].Reason, "missing path")
}

func TestDuplicateTopicAcrossBranchesFlagged(t *testing.T) {
	// Two different parents resolving to the same full path: the
	// resolver alone cannot see it, the cross-tree check does.
	r := ValidateTree([]domain.Node{
		{
			Type: domain.TypeGroup, Path: "mix",
			Children: []domain.Node{knob("bus/gain", nil)},
		},
		{
			Type: domain.TypeGroup, Path: "mix/bus",
			Children: []domain.Node{knob("gain", nil)},
		},
	})

	require.Len(t, r.Issues, 1)
	assert.Equal(t, "mix/bus/gain", r.Issues[0].Path)
	assert.Equal(t, "duplicate topic", r.Issues[0].Reason)
	assert.Equal(t, 1, r.Controls)
}

func TestUnknownTypeFlagged(t *testing.T) {
	r := ValidateTree([]domain.Node{
		{Type: "slider3d", Path: "mystery"},
	})
	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0].Reason, "slider3d")
}

func TestMarkdownListsDefects(t *testing.T) {
	r := ValidateTree([]domain.Node{
		knob("bad", map[string]any{"min": 1, "max": 0}),
		knob("ok", nil),
	})

	out := r.Markdown()
	assert.Contains(t, out, "Controls found: **2**")
	assert.Contains(t, out, "Defects (1)")
	assert.Contains(t, out, "`bad`")
}
