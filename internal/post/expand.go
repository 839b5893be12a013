package post

import (
	"log/slog"
	"strconv"

	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/geom"
	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// Expander rewrites the command list of every item before conversion:
// canned-cycle termination, drill translation, arc splitting, post hooks
// and spindle-wait injection, in that order. It follows the machine
// position from item to item, so one Expander serves one export run.
type Expander struct {
	m       *machine.Machine
	hooks   Hooks
	logger  *slog.Logger
	term    CycleTerminator
	tracker geom.Tracker
}

// NewExpander creates an expander for one export run.
func NewExpander(m *machine.Machine, hooks Hooks, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{m: m, hooks: hooks, logger: logger}
}

// Expand replaces the item's commands with their expanded form. A geometric
// failure leaves that transform's input unchanged and is logged; the export
// continues with the next item.
func (e *Expander) Expand(item model.Postable) {
	cmds := []model.Command(item.Commands())
	start := e.tracker.Pos
	proc := e.m.Processing

	cmds = e.term.Terminate(cmds)

	if op, ok := item.(*model.OperationItem); ok && op.Op.IsDrilling() && len(proc.TranslateDrillCycles) > 0 {
		cmds = e.guard(item, "drill translation", cmds, func() ([]model.Command, error) {
			return e.translateDrills(cmds, start)
		})
	}
	if proc.SplitArcs {
		cmds = e.guard(item, "arc splitting", cmds, func() ([]model.Command, error) {
			return splitArcs(cmds, start, proc.ArcSegmentLength)
		})
	}
	if e.hooks.AfterExpand != nil {
		cmds = e.hooks.AfterExpand(cmds)
	}
	if proc.SpindleWait > 0 {
		cmds = injectSpindleWait(cmds, proc.SpindleWait)
	}
	if proc.FilterInefficientMoves {
		cmds = gcode.FilterInefficientMoves(cmds)
	}

	for _, c := range cmds {
		e.tracker.Apply(c)
	}
	item.SetCommands(cmds)
}

func (e *Expander) guard(item model.Postable, stage string, in []model.Command,
	fn func() ([]model.Command, error)) []model.Command {

	out, err := fn()
	if err != nil {
		e.logger.Warn("expansion skipped",
			"stage", stage,
			"item", itemLabel(item),
			"error", err,
		)
		return in
	}
	return out
}

// translateDrills replaces every configured canned cycle with primitive
// moves.
func (e *Expander) translateDrills(cmds []model.Command, start geom.Point) ([]model.Command, error) {
	tr := geom.Tracker{Pos: start}
	opts := geom.DrillOptions{ChipBreak: e.m.Processing.ChipBreakRetract}
	out := make([]model.Command, 0, len(cmds))
	for _, cmd := range cmds {
		if !gcode.IsCannedCycle(cmd.Name) || !e.m.TranslatesCycle(cmd.Name) {
			out = append(out, cmd)
			tr.Apply(cmd)
			continue
		}
		moves, end, err := geom.TranslateDrill(cmd, tr.Pos, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, moves...)
		tr.Pos = end
	}
	return out, nil
}

func splitArcs(cmds []model.Command, start geom.Point, segLen float64) ([]model.Command, error) {
	tr := geom.Tracker{Pos: start}
	out := make([]model.Command, 0, len(cmds))
	for _, cmd := range cmds {
		if arc, _ := gcode.IsArc(cmd.Name); !arc {
			out = append(out, cmd)
			tr.Apply(cmd)
			continue
		}
		segs, end, err := geom.SplitArc(cmd, tr.Pos, segLen)
		if err != nil {
			return nil, err
		}
		out = append(out, segs...)
		tr.Pos = end
	}
	return out, nil
}

// injectSpindleWait adds a G4 dwell after every spindle start.
func injectSpindleWait(cmds []model.Command, seconds float64) []model.Command {
	out := make([]model.Command, 0, len(cmds)+1)
	for _, cmd := range cmds {
		out = append(out, cmd)
		if gcode.IsSpindleStart(cmd.Name) {
			out = append(out, model.NewCommand("G4", model.P("P", seconds)))
		}
	}
	return out
}

func itemLabel(item model.Postable) string {
	switch it := item.(type) {
	case *model.OperationItem:
		return it.Label()
	case *model.ToolChangeItem:
		return "tool change T" + strconv.Itoa(it.Tool.ToolNumber)
	case *model.FixtureItem:
		return "fixture " + it.Code()
	}
	return item.Kind().String()
}
