package post

import (
	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/model"
)

// CycleTerminator brackets runs of canned cycles with an explicit retract
// mode and a trailing G80. The active retract mode is remembered across
// calls, so one terminator belongs to one export run.
type CycleTerminator struct {
	retract string
}

// Terminate returns cmds with a retract-mode command inserted before each
// cycle start whose RetractMode annotation differs from the active mode,
// and G80 inserted before every event that ends the active cycle. Cycles
// without the annotation leave the retract mode alone. Consecutive cycles of the
// same code, retract mode and non-positional words continue without a
// terminator. Existing G80 and G98/G99 commands are honoured, which makes
// the transform idempotent.
func (t *CycleTerminator) Terminate(cmds []model.Command) []model.Command {
	out := make([]model.Command, 0, len(cmds)+2)
	var active *model.Command
	activeMode := ""

	terminate := func() {
		if active != nil {
			out = append(out, model.NewCommand("G80", nil))
			active = nil
		}
	}

	for i := range cmds {
		cmd := cmds[i]
		switch {
		case cmd.Name == "G80":
			active = nil
			out = append(out, cmd)
		case gcode.IsRetractMode(cmd.Name):
			if active != nil && cmd.Name != activeMode {
				terminate()
			}
			t.retract = cmd.Name
			out = append(out, cmd)
		case gcode.IsCannedCycle(cmd.Name):
			mode := cmd.RetractMode()
			if active != nil && !continuesCycle(*active, activeMode, cmd, mode) {
				terminate()
			}
			if active == nil && mode != "" && mode != t.retract {
				out = append(out, model.NewCommand(mode, nil))
				t.retract = mode
			}
			out = append(out, cmd)
			active, activeMode = &cmds[i], mode
		default:
			terminate()
			out = append(out, cmd)
		}
	}
	terminate()
	return out
}

// continuesCycle reports whether next repeats the active cycle at another
// hole position.
func continuesCycle(active model.Command, activeMode string, next model.Command, nextMode string) bool {
	if active.Name != next.Name || activeMode != nextMode {
		return false
	}
	return active.Params.Without("X", "Y").Equal(next.Params.Without("X", "Y"))
}

// TerminateCannedCycles runs a fresh CycleTerminator over cmds.
func TerminateCannedCycles(cmds []model.Command) []model.Command {
	var t CycleTerminator
	return t.Terminate(cmds)
}
