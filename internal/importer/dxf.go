package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/postcut/internal/model"
)

// Hole is a drill location read from a drawing.
type Hole struct {
	X, Y     float64
	Diameter float64
}

// DrillParams describe the canned cycle emitted for each hole.
type DrillParams struct {
	Depth       float64 // Z of the hole bottom
	Retract     float64 // R plane
	Feed        float64 // mm/s
	Peck        float64 // Q; > 0 selects G83
	Dwell       float64 // P in seconds; > 0 selects G82
	RetractMode string  // "G98" or "G99"
	SafeZ       float64 // rapid height before the first hole
}

// ImportDXFHoles reads every CIRCLE of a DXF drawing as a hole. Holes are
// returned in a serpentine order, row by row in Y, to keep rapids short.
// Circles at the same centre count once.
func ImportDXFHoles(path string) ([]Hole, []string, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open DXF file: %w", err)
	}

	var holes []Hole
	var warnings []string
	skipped := 0
	for _, ent := range drawing.Entities() {
		c, ok := ent.(*entity.Circle)
		if !ok {
			skipped++
			continue
		}
		h := Hole{X: c.Center[0], Y: c.Center[1], Diameter: 2 * c.Radius}
		if containsHole(holes, h) {
			warnings = append(warnings, fmt.Sprintf("Duplicate hole at (%.3f, %.3f) skipped", h.X, h.Y))
			continue
		}
		holes = append(holes, h)
	}
	if skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d non-circle entities", skipped))
	}
	if len(holes) == 0 {
		return nil, warnings, fmt.Errorf("no circles found in DXF file")
	}
	return serpentine(holes), warnings, nil
}

func containsHole(holes []Hole, h Hole) bool {
	for _, o := range holes {
		if math.Abs(o.X-h.X) < 1e-6 && math.Abs(o.Y-h.Y) < 1e-6 {
			return true
		}
	}
	return false
}

// serpentine sorts holes by Y, then by X alternating direction per row.
func serpentine(holes []Hole) []Hole {
	const rowTol = 1e-3
	sort.SliceStable(holes, func(i, j int) bool {
		if math.Abs(holes[i].Y-holes[j].Y) > rowTol {
			return holes[i].Y < holes[j].Y
		}
		return holes[i].X < holes[j].X
	})
	out := make([]Hole, 0, len(holes))
	for start, row := 0, 0; start < len(holes); row++ {
		end := start + 1
		for end < len(holes) && math.Abs(holes[end].Y-holes[start].Y) <= rowTol {
			end++
		}
		seg := append([]Hole(nil), holes[start:end]...)
		if row%2 == 1 {
			for i, j := 0, len(seg)-1; i < j; i, j = i+1, j-1 {
				seg[i], seg[j] = seg[j], seg[i]
			}
		}
		out = append(out, seg...)
		start = end
	}
	return out
}

// DrillOperation builds a drilling operation visiting holes with one canned
// cycle each. The path starts with a rapid to the safe height.
func DrillOperation(label string, tool *model.ToolController, holes []Hole, p DrillParams) *model.Operation {
	name := "G81"
	switch {
	case p.Peck > 0:
		name = "G83"
	case p.Dwell > 0:
		name = "G82"
	}
	safe := p.SafeZ
	if safe < p.Retract {
		safe = p.Retract
	}

	path := model.Path{
		model.Comment(fmt.Sprintf("%d holes", len(holes))),
		model.NewCommand("G0", model.P("Z", safe)),
	}
	for _, h := range holes {
		ps := model.P("X", h.X, "Y", h.Y, "Z", p.Depth, "R", p.Retract)
		if p.Peck > 0 {
			ps = ps.With("Q", p.Peck)
		}
		if p.Dwell > 0 && p.Peck <= 0 {
			ps = ps.With("P", p.Dwell)
		}
		if p.Feed > 0 {
			ps = ps.With("F", p.Feed)
		}
		cmd := model.NewCommand(name, ps)
		if p.RetractMode != "" {
			cmd = cmd.WithAnnotation(model.AnnotationRetractMode, p.RetractMode)
		}
		path = append(path, cmd)
	}

	op := model.NewOperation(label, tool, path)
	op.Kind = model.KindDrilling
	return op
}
