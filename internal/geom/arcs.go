package geom

import (
	"fmt"
	"math"

	"github.com/piwi3910/postcut/internal/model"
)

// SplitArc approximates an XY-plane arc (G2/G3) by G1 segments no longer
// than segLen along the arc. The centre comes from I/J offsets relative to
// the start point, or from R (negative R selects the arc above 180°). Z is
// interpolated linearly for helical moves. The feed, if any, is carried on
// the first segment.
func SplitArc(cmd model.Command, start Point, segLen float64) ([]model.Command, Point, error) {
	var clockwise bool
	switch cmd.Name {
	case "G2", "G02":
		clockwise = true
	case "G3", "G03":
		clockwise = false
	default:
		return nil, start, fmt.Errorf("%s is not an arc", cmd.Name)
	}
	if !start.XYKnown() {
		return nil, start, fmt.Errorf("%s: %w", cmd.Name, ErrUnknownPosition)
	}
	if segLen <= 0 {
		segLen = 1.0
	}

	ex, ey, ez := start.X, start.Y, start.Z
	if v, ok := cmd.Params.Get("X"); ok {
		ex = v
	}
	if v, ok := cmd.Params.Get("Y"); ok {
		ey = v
	}
	hasZ := cmd.Params.Has("Z")
	if hasZ {
		if !start.KnownZ {
			return nil, start, fmt.Errorf("%s: helical arc from unknown Z: %w", cmd.Name, ErrUnknownPosition)
		}
		ez, _ = cmd.Params.Get("Z")
	}

	cx, cy, err := arcCenter(cmd, start, ex, ey, clockwise)
	if err != nil {
		return nil, start, err
	}
	radius := math.Hypot(start.X-cx, start.Y-cy)
	if radius < 1e-9 {
		return nil, start, fmt.Errorf("%s: %w: zero radius", cmd.Name, ErrDegenerateArc)
	}

	a0 := math.Atan2(start.Y-cy, start.X-cx)
	a1 := math.Atan2(ey-cy, ex-cx)
	sweep := a1 - a0
	if clockwise {
		sweep = a0 - a1
	}
	for sweep <= 1e-12 {
		sweep += 2 * math.Pi
	}

	n := int(math.Ceil(radius * sweep / segLen))
	if n < 1 {
		n = 1
	}

	feed, hasFeed := cmd.Params.Get("F")
	dir := 1.0
	if clockwise {
		dir = -1.0
	}
	out := make([]model.Command, 0, n)
	for i := 1; i <= n; i++ {
		var x, y, z float64
		if i == n {
			x, y, z = ex, ey, ez
		} else {
			t := float64(i) / float64(n)
			a := a0 + dir*sweep*t
			x = cx + radius*math.Cos(a)
			y = cy + radius*math.Sin(a)
			z = start.Z + (ez-start.Z)*t
		}
		ps := model.P("X", x, "Y", y)
		if hasZ {
			ps = ps.With("Z", z)
		}
		if hasFeed && i == 1 {
			ps = ps.With("F", feed)
		}
		out = append(out, model.NewCommand("G1", ps))
	}

	end := start
	end.X, end.Y, end.Z = ex, ey, ez
	return out, end, nil
}

// arcCenter resolves the arc centre from I/J or R.
func arcCenter(cmd model.Command, start Point, ex, ey float64, clockwise bool) (float64, float64, error) {
	i, hasI := cmd.Params.Get("I")
	j, hasJ := cmd.Params.Get("J")
	if hasI || hasJ {
		return start.X + i, start.Y + j, nil
	}
	r, ok := cmd.Params.Get("R")
	if !ok {
		return 0, 0, missing(cmd, "I/J or R")
	}

	dx, dy := ex-start.X, ey-start.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return 0, 0, fmt.Errorf("%s: %w: R form cannot describe a full circle", cmd.Name, ErrDegenerateArc)
	}
	half := chord / 2
	if math.Abs(r) < half-1e-9 {
		return 0, 0, fmt.Errorf("%s: %w: radius %.4f shorter than half chord %.4f", cmd.Name, ErrDegenerateArc, math.Abs(r), half)
	}
	h := math.Sqrt(math.Max(r*r-half*half, 0))
	mx, my := start.X+dx/2, start.Y+dy/2
	// Unit normal to the chord, pointing left of travel.
	nx, ny := -dy/chord, dx/chord
	// The minor arc's centre lies right of travel for clockwise arcs.
	side := 1.0
	if clockwise {
		side = -1.0
	}
	if r < 0 {
		side = -side
	}
	return mx + side*h*nx, my + side*h*ny, nil
}
