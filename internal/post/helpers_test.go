package post

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// describeItems renders items as short tokens: fixture codes, "T<n>" for
// tool changes and operation labels.
func describeItems(items []model.Postable) []string {
	var out []string
	for _, it := range items {
		switch it := it.(type) {
		case *model.FixtureItem:
			out = append(out, it.Code())
		case *model.ToolChangeItem:
			out = append(out, fmt.Sprintf("T%d", it.Tool.ToolNumber))
		case *model.OperationItem:
			out = append(out, it.Label())
		}
	}
	return out
}

func op(label string, tc *model.ToolController, cmds ...model.Command) *model.Operation {
	return model.NewOperation(label, tc, model.Path(cmds))
}

func g(name string, pairs ...any) model.Command {
	if len(pairs) == 0 {
		return model.NewCommand(name, nil)
	}
	return model.NewCommand(name, model.P(pairs...))
}

// threeOpJob has operations A(T1), B(T2), C(T1) cut in G54 and G55.
func threeOpJob() *model.Job {
	t1 := model.NewToolController("Flat 6mm", 1, 0)
	t2 := model.NewToolController("Drill 3mm", 2, 0)
	job := model.NewJob("demo")
	job.Fixtures = []string{"G54", "G55"}
	job.AddOperation(op("A", t1, g("G0", "X", 1)))
	job.AddOperation(op("B", t2, g("G0", "X", 2)))
	job.AddOperation(op("C", t1, g("G0", "X", 3)))
	return job
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func testOptions(t *testing.T) Options {
	t.Helper()
	logger, _ := testLogger()
	return Options{
		Logger: logger,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func exportOne(t *testing.T, m machine.Machine, job *model.Job) string {
	t.Helper()
	outs, err := NewExporter("generic", m, testOptions(t)).Export(job)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(outs) != 1 {
		t.Fatalf("expected one output, got %d", len(outs))
	}
	return outs[0].GCode
}
