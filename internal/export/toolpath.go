package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/postcut/internal/gcode"
)

// DXF layer names of the toolpath preview.
const (
	LayerRapid = "RAPID"
	LayerFeed  = "FEED"
)

// WriteToolpathDXF draws every move of the G-code text as a 3D line. Rapid
// and retract moves go to the RAPID layer, cutting moves to FEED. Arcs are
// drawn as chords between their end points.
func WriteToolpathDXF(path, code string) error {
	moves := gcode.ParseGCode(code)
	if len(moves) == 0 {
		return fmt.Errorf("no moves to draw")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerRapid, color.Yellow, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerRapid, err)
	}
	if _, err := d.AddLayer(LayerFeed, color.Red, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerFeed, err)
	}

	current := ""
	for _, m := range moves {
		layer := LayerFeed
		if m.Type == gcode.MoveRapid || m.Type == gcode.MoveRetract {
			layer = LayerRapid
		}
		if layer != current {
			if err := d.ChangeLayer(layer); err != nil {
				return err
			}
			current = layer
		}
		if _, err := d.Line(m.FromX, m.FromY, m.FromZ, m.ToX, m.ToY, m.ToZ); err != nil {
			return fmt.Errorf("failed to draw move on line %d: %w", m.Line, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}
