package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/postcut/internal/machine"
)

func TestLineOptimizer_RedundantAxes(t *testing.T) {
	o := NewLineOptimizer(machine.Default().Output)

	line, ok := o.Command("G0 X1.000 Y2.000")
	assert.True(t, ok)
	assert.Equal(t, "G0 X1.000 Y2.000", line)

	_, ok = o.Command("G0 X1.000 Y2.000")
	assert.False(t, ok, "a move to the current position is dropped")

	line, ok = o.Command("G1 X1.000 Y3.000 F600.000")
	assert.True(t, ok)
	assert.Equal(t, "G1 Y3.000 F600.000", line)

	line, ok = o.Command("/G0 Y3.000")
	assert.True(t, ok, "block-delete lines are written as they are")
	assert.Equal(t, "/G0 Y3.000", line)
}

func TestLineOptimizer_BlockDeleteIsNotRemembered(t *testing.T) {
	o := NewLineOptimizer(machine.Default().Output)

	o.Command("G0 X1.000 Y2.000")
	line, ok := o.Command("/G0 X5.000 Y2.000")
	assert.True(t, ok)
	assert.Equal(t, "/G0 X5.000 Y2.000", line)

	line, ok = o.Command("G0 X5.000 Y2.000")
	assert.True(t, ok, "the controller may have skipped the optional line")
	assert.Equal(t, "G0 X5.000", line)
}

func TestLineOptimizer_RepeatedCommands(t *testing.T) {
	o := NewLineOptimizer(machine.Default().Output)

	_, ok := o.Command("M3 S1000")
	assert.True(t, ok)
	_, ok = o.Command("M3 S1000")
	assert.False(t, ok)

	o.Break()
	_, ok = o.Command("M3 S1000")
	assert.True(t, ok, "a block between two lines keeps the second")
}

func TestLineOptimizer_CannedCycleKeepsAxes(t *testing.T) {
	o := NewLineOptimizer(machine.Default().Output)

	o.Command("G0 X1.000 Y3.000")
	line, ok := o.Command("G81 X1.000 Y3.000 Z-5.000 R2.000")
	assert.True(t, ok)
	assert.Equal(t, "G81 X1.000 Y3.000 Z-5.000 R2.000", line)

	line, ok = o.Command("G0 Z-5.000")
	assert.True(t, ok, "the cycle leaves Z unknown")
	assert.Equal(t, "G0 Z-5.000", line)
}

func TestLineOptimizer_ForgetAxes(t *testing.T) {
	o := NewLineOptimizer(machine.Default().Output)
	o.Command("G0 X1.000")
	o.ForgetAxes("X")
	line, ok := o.Command("G0 X1.000")
	assert.True(t, ok)
	assert.Equal(t, "G0 X1.000", line)
}

func TestLineOptimizer_DuplicatesAllowed(t *testing.T) {
	out := machine.Default().Output
	out.OutputDuplicateCommands = true
	out.OutputDuplicateParameters = true
	o := NewLineOptimizer(out)

	for i := 0; i < 2; i++ {
		line, ok := o.Command("G0 X1.000")
		assert.True(t, ok)
		assert.Equal(t, "G0 X1.000", line)
	}
}

func TestLineNumberer(t *testing.T) {
	n := NewLineNumberer(machine.Default().Output)
	assert.Equal(t, "N100 G0 X1", n.Number("G0 X1"))
	assert.Equal(t, "/N110 G1 X2", n.Number("/G1 X2"))
	assert.Equal(t, "N120 M5", n.Number("M5"))

	out := machine.OutputOptions{LineNumberStart: 1, LineIncrement: 1, LineNumberPrefix: "L"}
	n = NewLineNumberer(out)
	assert.Equal(t, "L1 G0", n.Number("G0"))
	assert.Equal(t, "L2 G0", n.Number("G0"))
}

func TestLineHasWord(t *testing.T) {
	assert.True(t, LineHasWord("G0 X1.000 A90.000", " ", "A", "B", "C"))
	assert.True(t, LineHasWord("/G0;B5", ";", "B"))
	assert.False(t, LineHasWord("G0 X1.000", " ", "A", "B", "C"))
	assert.False(t, LineHasWord("(Axis A)", " ", "A"))
}
