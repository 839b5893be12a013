package importer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/model"
)

// ImportGCode reads G-code text into a command path. Every G or M word
// starts a command; the other words of the line belong to the command
// before them. Lines with only coordinates repeat the last motion code.
// Line numbers are dropped, block-delete slashes become annotations and
// units are taken as they are written.
func ImportGCode(r io.Reader) (model.Path, error) {
	var path model.Path
	motion := ""
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		b := gcode.ParseLine(sc.Text())
		if b.Comment != "" {
			path = append(path, model.Comment(b.Comment))
		}
		if len(b.Words) == 0 {
			continue
		}

		var cmds []model.Command
		for _, w := range b.Words {
			switch w.Letter {
			case "G", "M":
				name := w.Letter + formatCode(w.Value)
				cmds = append(cmds, model.NewCommand(name, nil))
				if gcode.IsMotion(name) || gcode.IsCannedCycle(name) {
					motion = name
				}
				if name == "G80" {
					motion = ""
				}
			default:
				if len(cmds) == 0 {
					if motion == "" {
						return nil, fmt.Errorf("line %d: word %s%g without a command", lineNo, w.Letter, w.Value)
					}
					cmds = append(cmds, model.NewCommand(motion, nil))
				}
				last := &cmds[len(cmds)-1]
				last.Params = last.Params.With(w.Letter, w.Value)
			}
		}
		for _, c := range cmds {
			if b.BlockDelete {
				c = c.WithAnnotation(model.AnnotationBlockDelete, true)
			}
			path = append(path, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return path, nil
}

// formatCode renders a G/M number as written in the supported set: "1",
// "54", "59.1".
func formatCode(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
