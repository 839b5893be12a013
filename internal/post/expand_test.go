package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

func commandStrings(p model.Path) []string {
	var out []string
	for _, c := range p {
		out = append(out, c.String())
	}
	return out
}

func TestExpander_TranslatesDrillingOperations(t *testing.T) {
	m := machine.Default()
	m.Processing.TranslateDrillCycles = []string{"G81"}
	logger, _ := testLogger()
	e := NewExpander(&m, Hooks{}, logger)

	drilling := op("Holes", nil, g("G0", "X", 0, "Y", 0, "Z", 10), g("G81", "X", 5, "Y", 5, "Z", -2, "R", 1))
	drilling.Kind = model.KindDrilling
	item := model.NewOperationItem(drilling)
	e.Expand(item)

	assert.Equal(t, []string{
		"G0 X0 Y0 Z10",
		"G0 X5 Y5",
		"G0 Z1",
		"G1 Z-2",
		"G0 Z10",
		"G80",
	}, commandStrings(item.Path))
	assert.Len(t, drilling.Path, 2, "the operation itself is not modified")
}

func TestExpander_KeepsCyclesOfOtherOperations(t *testing.T) {
	m := machine.Default()
	m.Processing.TranslateDrillCycles = []string{"G81"}
	logger, _ := testLogger()
	e := NewExpander(&m, Hooks{}, logger)

	item := model.NewOperationItem(op("Profile", nil, g("G0", "X", 0, "Y", 0, "Z", 10), g("G81", "X", 5, "Y", 5, "Z", -2, "R", 1)))
	e.Expand(item)
	assert.Equal(t, []string{"G0", "G81", "G80"}, item.Path.Names())
}

func TestExpander_DegenerateArcKeepsInput(t *testing.T) {
	m := machine.Default()
	m.Processing.SplitArcs = true
	logger, buf := testLogger()
	e := NewExpander(&m, Hooks{}, logger)

	item := model.NewOperationItem(op("Bad arc", nil, g("G0", "X", 0, "Y", 0), g("G2", "X", 10, "Y", 0, "R", 2)))
	e.Expand(item)

	assert.Equal(t, []string{"G0", "G2"}, item.Path.Names())
	assert.Contains(t, buf.String(), "expansion skipped")
	assert.Contains(t, buf.String(), "arc splitting")
	assert.Contains(t, buf.String(), "Bad arc")
}

func TestExpander_PositionCarriesAcrossItems(t *testing.T) {
	m := machine.Default()
	m.Processing.SplitArcs = true
	logger, buf := testLogger()
	e := NewExpander(&m, Hooks{}, logger)

	e.Expand(model.NewOperationItem(op("Move", nil, g("G0", "X", 0, "Y", 0))))
	arc := model.NewOperationItem(op("Arc", nil, g("G2", "X", 10, "Y", 0, "I", 5)))
	e.Expand(arc)

	require.Len(t, arc.Path, 16)
	assert.NotContains(t, buf.String(), "expansion skipped")
}

func TestExpander_SpindleWait(t *testing.T) {
	m := machine.Default()
	m.Processing.SpindleWait = 2
	logger, _ := testLogger()
	e := NewExpander(&m, Hooks{}, logger)

	item := model.NewToolChangeItem(model.NewToolController("Flat", 1, 12000))
	e.Expand(item)
	assert.Equal(t, []string{"M6 T1", "M3 S12000", "G4 P2"}, commandStrings(item.Path))
}

func TestExpander_HooksAndFilter(t *testing.T) {
	m := machine.Default()
	m.Processing.FilterInefficientMoves = true
	called := 0
	hooks := Hooks{AfterExpand: func(cmds []model.Command) []model.Command {
		called++
		return append(cmds, g("G0", "X", 1))
	}}
	logger, _ := testLogger()
	e := NewExpander(&m, hooks, logger)

	item := model.NewOperationItem(op("Op", nil, g("G0", "X", 1)))
	e.Expand(item)
	assert.Equal(t, 1, called)
	assert.Equal(t, []string{"G0 X1"}, commandStrings(item.Path), "the repeated rapid is filtered")
}

func TestTorchControl(t *testing.T) {
	in := []model.Command{
		g("G0", "X", 0, "Y", 0, "Z", 5),
		g("G1", "Z", -1, "F", 1),
		g("G1", "X", 10),
		g("G0", "Z", 5),
		g("G0", "X", 20),
		g("G2", "X", 30, "I", 5),
	}
	assert.Equal(t, []string{
		"G0 X0 Y0",
		"M3",
		"G1 F1",
		"G1 X10",
		"M5",
		"G0 X20",
		"M3",
		"G2 X30 I5",
		"M5",
	}, commandStrings(TorchControl(in)))
}
