package geom

import (
	"fmt"
	"math"

	"github.com/piwi3910/postcut/internal/model"
)

// DrillOptions tune the primitive moves produced for canned cycles.
type DrillOptions struct {
	// ChipBreak is the back-off distance of G73 and the rapid clearance
	// above the previous depth for G83 (mm).
	ChipBreak float64
}

// TranslateDrill expands one canned drill cycle into G0/G1 moves plus a G4
// dwell when the cycle carries P. start is the position before the cycle;
// its Z is the initial plane. The returned point is the position after the
// expansion.
func TranslateDrill(cmd model.Command, start Point, opts DrillOptions) ([]model.Command, Point, error) {
	depth, ok := cmd.Params.Get("Z")
	if !ok {
		return nil, start, missing(cmd, "Z")
	}
	r, ok := cmd.Params.Get("R")
	if !ok {
		return nil, start, missing(cmd, "R")
	}
	if depth > r {
		return nil, start, fmt.Errorf("%s: hole bottom Z%.4f is above retract plane R%.4f", cmd.Name, depth, r)
	}
	x, hasX := cmd.Params.Get("X")
	y, hasY := cmd.Params.Get("Y")
	if (!hasX && !start.KnownX) || (!hasY && !start.KnownY) {
		return nil, start, fmt.Errorf("%s: %w", cmd.Name, ErrUnknownPosition)
	}
	if !hasX {
		x = start.X
	}
	if !hasY {
		y = start.Y
	}

	initial := r
	if start.KnownZ {
		initial = start.Z
	}
	retractTo := math.Max(initial, r)
	if cmd.RetractMode() == "G99" {
		retractTo = r
	}

	feed, hasFeed := cmd.Params.Get("F")
	feedTo := func(z float64) model.Command {
		ps := model.P("Z", z)
		if hasFeed {
			ps = ps.With("F", feed)
		}
		return model.NewCommand("G1", ps)
	}
	rapidZ := func(z float64) model.Command {
		return model.NewCommand("G0", model.P("Z", z))
	}

	var out []model.Command
	curZ := initial
	if curZ < r {
		out = append(out, rapidZ(r))
		curZ = r
	}
	if !start.XYKnown() || x != start.X || y != start.Y {
		out = append(out, model.NewCommand("G0", model.P("X", x, "Y", y)))
	}
	if curZ != r {
		out = append(out, rapidZ(r))
	}

	q, _ := cmd.Params.Get("Q")
	q = math.Abs(q)
	switch {
	case (cmd.Name == "G83" || cmd.Name == "G73") && q > 0:
		out = append(out, pecks(cmd.Name, r, depth, q, opts.ChipBreak, feedTo, rapidZ)...)
	default:
		out = append(out, feedTo(depth))
	}

	if p, ok := cmd.Params.Get("P"); ok && p > 0 {
		out = append(out, model.NewCommand("G4", model.P("P", p)))
	}
	out = append(out, rapidZ(retractTo))

	end := Point{X: x, Y: y, Z: retractTo, KnownX: true, KnownY: true, KnownZ: true}
	return out, end, nil
}

// pecks produces the feed/retract sequence of a peck cycle. G83 retracts to
// the R plane after every peck; G73 only backs off by chipBreak.
func pecks(name string, r, depth, q, chipBreak float64,
	feedTo, rapidZ func(float64) model.Command) []model.Command {

	var out []model.Command
	cur := r
	for cur > depth {
		next := math.Max(cur-q, depth)
		if cur != r && name == "G83" {
			// Come back down to just above the previous peck.
			out = append(out, rapidZ(math.Min(cur+chipBreak, r)))
		}
		out = append(out, feedTo(next))
		cur = next
		if cur <= depth {
			break
		}
		if name == "G83" {
			out = append(out, rapidZ(r))
		} else {
			out = append(out, rapidZ(cur+chipBreak))
		}
	}
	return out
}
