package gcode

import "github.com/piwi3910/postcut/internal/model"

// position tracks the known machine position per axis letter. Unknown axes
// are absent.
type position map[string]float64

// FilterInefficientMoves drops rapid moves that do not move the machine: a
// G0 whose every word is an axis word equal to the tracked position. Any
// move that changes an axis is kept. Canned cycles and commands with
// unknown side effects invalidate the tracked position.
func FilterInefficientMoves(cmds []model.Command) []model.Command {
	pos := position{}
	out := make([]model.Command, 0, len(cmds))
	for _, cmd := range cmds {
		switch {
		case cmd.IsComment():
		case cmd.BlockDelete():
			// The controller may skip the line, so its axes become unknown.
			pos.forget(cmd)
		case IsRapid(cmd.Name) && pos.reaches(cmd):
			continue
		case IsMotion(cmd.Name):
			pos.apply(cmd)
		case IsCannedCycle(cmd.Name):
			// Cycles end at a retract plane that depends on controller state.
			pos.apply(cmd)
			delete(pos, "Z")
		case cmd.Name == "G4" || cmd.Name == "G04" || IsRetractMode(cmd.Name) || cmd.Name == "G80":
		case IsSpindleStart(cmd.Name):
		default:
			pos = position{}
		}
		out = append(out, cmd)
	}
	return out
}

// reaches reports whether cmd only carries axis words, at least one, all of
// which equal the known position.
func (p position) reaches(cmd model.Command) bool {
	if len(cmd.Params) == 0 {
		return false
	}
	for _, w := range cmd.Params {
		if !IsAxisLetter(w.Letter) {
			return false
		}
		cur, known := p[w.Letter]
		if !known || cur != w.Value {
			return false
		}
	}
	return true
}

func (p position) apply(cmd model.Command) {
	for _, w := range cmd.Params {
		if IsAxisLetter(w.Letter) {
			p[w.Letter] = w.Value
		}
	}
}

func (p position) forget(cmd model.Command) {
	for _, w := range cmd.Params {
		delete(p, w.Letter)
	}
}
