package post

import (
	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/model"
)

// Hooks are the controller-specific pieces a post processor adds on top of
// its configuration preset.
type Hooks struct {
	// AfterExpand rewrites each item's commands after arc splitting and
	// before the spindle-wait dwell is injected.
	AfterExpand func([]model.Command) []model.Command
	// ExtraCommands are accepted by the converter in addition to the
	// supported set.
	ExtraCommands []string
}

// PlasmaHooks returns the hooks of the plasma post: the torch is switched
// on (M3) before the first cut of a run and off (M5) before the next rapid.
// Z words are dropped since the torch height controller owns that axis.
func PlasmaHooks() Hooks {
	return Hooks{
		AfterExpand:   TorchControl,
		ExtraCommands: []string{"M5", "M05"},
	}
}

// TorchControl inserts torch on/off commands around cutting moves.
func TorchControl(cmds []model.Command) []model.Command {
	out := make([]model.Command, 0, len(cmds)+2)
	on := false
	for _, cmd := range cmds {
		if gcode.IsMotion(cmd.Name) && cmd.Params.Has("Z") {
			cmd.Params = cmd.Params.Without("Z")
			if len(cmd.Params) == 0 {
				continue
			}
		}
		cutting := gcode.IsFeed(cmd.Name)
		if arc, _ := gcode.IsArc(cmd.Name); arc {
			cutting = true
		}
		switch {
		case cutting && !on:
			out = append(out, model.NewCommand("M3", nil))
			on = true
		case gcode.IsRapid(cmd.Name) && on:
			out = append(out, model.NewCommand("M5", nil))
			on = false
		}
		out = append(out, cmd)
	}
	if on {
		out = append(out, model.NewCommand("M5", nil))
	}
	return out
}
