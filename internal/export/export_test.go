package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
	"github.com/piwi3910/postcut/internal/post"
)

const sampleCode = `G21
G54
G0 X0.000 Y0.000 Z5.000
G1 Z-1.000 F120.000
G1 X10.000
G1 Y10.000
G0 Z5.000
`

func sampleSummary() JobSummary {
	job := model.NewJob("bracket")
	job.Fixtures = []string{"G54", "G55"}
	flat := model.NewToolController("Flat 6mm", 1, 18000)
	flat.ToolDiameter = 6
	flat.HorizFeed = 20
	flat.VertFeed = 5
	drill := model.NewToolController("Drill 3mm", 2, 9000)

	job.AddOperation(model.NewOperation("Profile", flat, model.Path{
		model.NewCommand("G0", model.P("Z", 5)),
		model.NewCommand("G1", model.P("Z", -1)),
	}))
	pocket := model.NewOperation("Pocket", flat, nil)
	pocket.Fixtures = []string{"G55"}
	job.AddOperation(pocket)
	holes := model.NewOperation("Holes", drill, nil)
	holes.Kind = model.KindDrilling
	job.AddOperation(holes)
	off := model.NewOperation("Disabled", drill, nil)
	off.Disabled = true
	job.AddOperation(off)

	outputs := []post.Output{{Name: model.AllItemsKey, FileName: "bracket.nc", GCode: sampleCode}}
	return Summarize(job, "linuxcnc", "Router", "metric", outputs)
}

func TestSummarize(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, "bracket", s.Job)
	assert.Equal(t, "linuxcnc", s.PostProcessor)
	assert.Equal(t, []FileSummary{{Section: "allitems", File: "bracket.nc", Lines: 7}}, s.Files)

	require.Len(t, s.Operations, 3, "disabled operations are left out")
	assert.Equal(t, OperationEntry{Label: "Profile", Tool: 1, Fixtures: []string{"G54", "G55"}, Commands: 2}, s.Operations[0])
	assert.Equal(t, []string{"G55"}, s.Operations[1].Fixtures)
	assert.Equal(t, "drilling", s.Operations[2].Kind)

	require.Len(t, s.Tools, 2)
	assert.Equal(t, 2, s.Tools[0].Operations)
	assert.Equal(t, 1, s.Tools[1].Operations)
	assert.Equal(t, "Forward", s.Tools[0].SpindleDir)
}

func TestWriteSetupSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.pdf")
	require.NoError(t, WriteSetupSheet(path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output is a PDF document")
}

func TestFeedText(t *testing.T) {
	tool := ToolSummary{HorizFeed: 20, VertFeed: 5}
	assert.Equal(t, "1200.0 / 300.0", feedText(tool, machine.Metric))
	assert.Equal(t, "47.2 / 11.8", feedText(tool, machine.Imperial))
}

func TestWriteToolTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.xlsx")
	require.NoError(t, WriteToolTable(path, sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(toolSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, toolColumns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Flat 6mm", rows[1][1])
	assert.Equal(t, "6", rows[1][2])
	assert.Equal(t, "18000", rows[1][3])
	assert.Equal(t, "Drill 3mm", rows[2][1])
}

func TestWriteToolpathDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.dxf")
	require.NoError(t, WriteToolpathDXF(path, sampleCode))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)
	lines := 0
	for _, e := range drawing.Entities() {
		if _, ok := e.(*entity.Line); ok {
			lines++
		}
	}
	assert.Equal(t, 5, lines)
}

func TestWriteToolpathDXF_NoMoves(t *testing.T) {
	err := WriteToolpathDXF(filepath.Join(t.TempDir(), "empty.dxf"), "G21\nM5\n")
	assert.ErrorContains(t, err, "no moves")
}
