package machine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateLegacy(t *testing.T) {
	raw := map[string]any{
		"name":                   "Old Mill",
		"output_comments":        true,
		"precision":              4,
		"units":                  "G20",
		"output_tool_change":     true,
		"preamble":               "G17 G90",
		"end_of_line_characters": "\r\n",
		"processing":             map[string]any{"split_arcs": true},
	}
	got := MigrateLegacy(raw)
	want := map[string]any{
		"name":    "Old Mill",
		"version": SchemaVersion,
		"output": map[string]any{
			"comments":       true,
			"axis_precision": 4,
			"units":          "imperial",
			"end_of_line":    "\r\n",
		},
		"processing": map[string]any{
			"split_arcs":  true,
			"tool_change": true,
		},
		"blocks": map[string]any{
			"preamble": "G17 G90",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MigrateLegacy mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, raw, "precision", "the input is not modified")
}

func TestMigrateLegacy_CanonicalWins(t *testing.T) {
	raw := map[string]any{
		"comments": false,
		"output": map[string]any{
			"comments":        true,
			"output_header":   true,
			"header":          false,
			"line_numbers":    true,
			"command_space":   "",
			"axis_precision":  2,
			"output_comments": false,
		},
	}
	got := MigrateLegacy(raw)
	out := got["output"].(map[string]any)
	assert.Equal(t, true, out["comments"])
	assert.Equal(t, false, out["header"])
	assert.Equal(t, 2, out["axis_precision"])
	assert.Equal(t, "", out["command_separator"])
}

func TestFromMap(t *testing.T) {
	base := Default()
	m, err := FromMap(map[string]any{
		"name":              "Router",
		"line_numbers":      true,
		"spindle_wait":      1.5,
		"suppress_commands": []any{"G98"},
		"travel":            map[string]any{"x_max": 600.0},
	}, base)
	require.NoError(t, err)

	assert.Equal(t, "Router", m.Name)
	assert.True(t, m.Output.LineNumbers)
	assert.Equal(t, 3, m.Output.AxisPrecision, "absent fields keep the base value")
	assert.Equal(t, 1.5, m.Processing.SpindleWait)
	assert.Equal(t, []string{"G98"}, m.Processing.SuppressCommands)
	assert.Equal(t, 600.0, m.Travel.XMax)
}

func TestFromMap_RejectsNewerVersion(t *testing.T) {
	_, err := FromMap(map[string]any{"version": SchemaVersion + 1}, Default())
	assert.ErrorContains(t, err, "newer than supported")
}

func TestFromMap_BadType(t *testing.T) {
	_, err := FromMap(map[string]any{"output": map[string]any{"axis_precision": "three"}}, Default())
	assert.Error(t, err)
}

func TestDecode_PresetBase(t *testing.T) {
	m, err := Decode(map[string]any{
		"name":           "Shapeoko",
		"post_processor": "grbl",
		"output":         map[string]any{"axis_precision": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "grbl", m.PostProcessor)
	assert.Equal(t, 2, m.Output.AxisPrecision)
	assert.Equal(t, "G17 G90", m.Blocks.Preamble, "preset values fill the gaps")
	assert.True(t, m.TranslatesCycle("G81"))

	plain, err := Decode(map[string]any{"name": "Plain"})
	require.NoError(t, err)
	assert.Empty(t, plain.Blocks.Preamble)
}
