package geom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/postcut/internal/model"
)

func endOf(t *testing.T, cmd model.Command) (float64, float64) {
	t.Helper()
	x, ok := cmd.Params.Get("X")
	require.True(t, ok)
	y, ok := cmd.Params.Get("Y")
	require.True(t, ok)
	return x, y
}

func TestSplitArc_ClockwiseIJ(t *testing.T) {
	cmd := model.NewCommand("G2", model.P("X", 10, "Y", 0, "I", 5, "J", 0, "F", 20))
	out, end, err := SplitArc(cmd, knownAt(0, 0, -1), 1.0)
	require.NoError(t, err)
	require.Len(t, out, 16, "half circle of radius 5 in 1mm segments")

	for i, c := range out {
		assert.Equal(t, "G1", c.Name)
		assert.Equal(t, i == 0, c.Params.Has("F"), "feed only on the first segment")
		assert.False(t, c.Params.Has("Z"))
	}
	x, y := endOf(t, out[7])
	assert.InDelta(t, 5.0, x, 1e-9)
	assert.InDelta(t, 5.0, y, 1e-9, "clockwise from the west point passes the top")

	x, y = endOf(t, out[15])
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 0.0, y)
	assert.Equal(t, knownAt(10, 0, -1), end)
}

func TestSplitArc_CounterClockwiseR(t *testing.T) {
	cmd := model.NewCommand("G3", model.P("X", 10, "Y", 0, "R", 5))
	out, _, err := SplitArc(cmd, knownAt(0, 0, 0), 1.0)
	require.NoError(t, err)
	require.Len(t, out, 16)

	x, y := endOf(t, out[7])
	assert.InDelta(t, 5.0, x, 1e-9)
	assert.InDelta(t, -5.0, y, 1e-9)
}

func TestSplitArc_FullCircle(t *testing.T) {
	cmd := model.NewCommand("G02", model.P("X", 0, "Y", 0, "I", 5))
	out, _, err := SplitArc(cmd, knownAt(0, 0, 0), 1.0)
	require.NoError(t, err)
	assert.Len(t, out, 32)
}

func TestSplitArc_Helical(t *testing.T) {
	cmd := model.NewCommand("G3", model.P("X", 10, "Y", 0, "Z", -2, "I", 5))
	out, _, err := SplitArc(cmd, knownAt(0, 0, 0), 2.0)
	require.NoError(t, err)
	require.Len(t, out, 8)

	mid, ok := out[3].Params.Get("Z")
	require.True(t, ok)
	assert.InDelta(t, -1.0, mid, 1e-9)
	last, _ := out[7].Params.Get("Z")
	assert.Equal(t, -2.0, last)
}

func TestSplitArc_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cmd    model.Command
		start  Point
		target error
	}{
		{"unknown start", model.NewCommand("G2", model.P("X", 1, "Y", 1, "I", 1)), Point{}, ErrUnknownPosition},
		{"zero radius", model.NewCommand("G2", model.P("X", 0, "Y", 0, "I", 0, "J", 0)), knownAt(0, 0, 0), ErrDegenerateArc},
		{"radius too short", model.NewCommand("G2", model.P("X", 10, "Y", 0, "R", 2)), knownAt(0, 0, 0), ErrDegenerateArc},
		{"R full circle", model.NewCommand("G2", model.P("X", 0, "Y", 0, "R", 5)), knownAt(0, 0, 0), ErrDegenerateArc},
		{"no centre", model.NewCommand("G3", model.P("X", 10, "Y", 0)), knownAt(0, 0, 0), ErrMissingParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitArc(tt.cmd, tt.start, 1.0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	_, _, err := SplitArc(model.NewCommand("G1", model.P("X", 1)), knownAt(0, 0, 0), 1.0)
	assert.ErrorContains(t, err, "not an arc")
}
