package importer

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"

	"github.com/piwi3910/postcut/internal/model"
)

// writeDrawing saves a drawing with a circle per hole and one stray line.
func writeDrawing(t *testing.T, holes ...Hole) string {
	t.Helper()
	d := dxf.NewDrawing()
	for _, h := range holes {
		_, err := d.Circle(h.X, h.Y, 0, h.Diameter/2)
		require.NoError(t, err)
	}
	_, err := d.Line(0, 0, 0, 100, 0, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "holes.dxf")
	require.NoError(t, d.SaveAs(path))
	return path
}

func TestImportDXFHoles(t *testing.T) {
	path := writeDrawing(t,
		Hole{X: 10, Y: 0, Diameter: 3},
		Hole{X: 0, Y: 0, Diameter: 3},
		Hole{X: 0, Y: 10, Diameter: 5},
		Hole{X: 10, Y: 10, Diameter: 5},
		Hole{X: 0, Y: 0, Diameter: 8},
	)

	holes, warnings, err := ImportDXFHoles(path)
	require.NoError(t, err)

	want := []Hole{
		{X: 0, Y: 0, Diameter: 3},
		{X: 10, Y: 0, Diameter: 3},
		{X: 10, Y: 10, Diameter: 5},
		{X: 0, Y: 10, Diameter: 5},
	}
	if diff := cmp.Diff(want, holes); diff != "" {
		t.Errorf("holes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{
		"Duplicate hole at (0.000, 0.000) skipped",
		"Skipped 1 non-circle entities",
	}, warnings)
}

func TestImportDXFHoles_NoCircles(t *testing.T) {
	_, _, err := ImportDXFHoles(writeDrawing(t))
	assert.ErrorContains(t, err, "no circles found")
}

func TestImportDXFHoles_MissingFile(t *testing.T) {
	_, _, err := ImportDXFHoles(filepath.Join(t.TempDir(), "missing.dxf"))
	assert.ErrorContains(t, err, "cannot open DXF file")
}

func TestSerpentine(t *testing.T) {
	holes := []Hole{
		{X: 2, Y: 5}, {X: 1, Y: 0}, {X: 3, Y: 5.0004}, {X: 0, Y: 0}, {X: 1, Y: 5}, {X: 4, Y: 9},
	}
	got := serpentine(holes)

	want := []Hole{
		{X: 0, Y: 0}, {X: 1, Y: 0},
		{X: 3, Y: 5.0004}, {X: 2, Y: 5}, {X: 1, Y: 5},
		{X: 4, Y: 9},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("serpentine order mismatch (-want +got):\n%s", diff)
	}
}

func TestDrillOperation(t *testing.T) {
	holes := []Hole{{X: 1, Y: 2}, {X: 3, Y: 4}}
	tool := model.NewToolController("Drill 3mm", 2, 9000)

	tests := []struct {
		name   string
		params DrillParams
		cycle  string
		word   string
	}{
		{"plain", DrillParams{Depth: -5, Retract: 2}, "G81", ""},
		{"dwell", DrillParams{Depth: -5, Retract: 2, Dwell: 0.5}, "G82", "P"},
		{"peck", DrillParams{Depth: -5, Retract: 2, Peck: 1, Dwell: 0.5}, "G83", "Q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := DrillOperation("Holes", tool, holes, tt.params)

			assert.Equal(t, model.KindDrilling, op.Kind)
			assert.Equal(t, tool.ID, op.ToolID)
			assert.Equal(t, []string{"(2 holes)", "G0", tt.cycle, tt.cycle}, op.Path.Names())

			z, _ := op.Path[1].Params.Get("Z")
			assert.Equal(t, 2.0, z, "safe height is never below the retract plane")

			cycle := op.Path[3]
			x, _ := cycle.Params.Get("X")
			assert.Equal(t, 3.0, x)
			r, _ := cycle.Params.Get("R")
			assert.Equal(t, 2.0, r)
			if tt.word != "" {
				assert.True(t, cycle.Params.Has(tt.word), "%s carries %s", tt.cycle, tt.word)
			}
			assert.False(t, cycle.Params.Has("F"))
			assert.Empty(t, cycle.RetractMode())
		})
	}
}

func TestDrillOperation_FeedAndRetractMode(t *testing.T) {
	op := DrillOperation("Holes", nil, []Hole{{X: 1, Y: 1}}, DrillParams{
		Depth: -3, Retract: 1, Feed: 4, RetractMode: "G99", SafeZ: 10,
	})

	assert.Empty(t, op.ToolID)
	want := model.P("X", 1, "Y", 1, "Z", -3, "R", 1, "F", 4)
	assert.True(t, want.Equal(op.Path[2].Params), "got %s", op.Path[2])
	assert.Equal(t, "G99", op.Path[2].RetractMode())

	z, _ := op.Path[1].Params.Get("Z")
	assert.Equal(t, 10.0, z)
}
