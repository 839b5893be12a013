// Package export writes supplementary documents for a post-processed job:
// a setup sheet, a tool table and a toolpath preview.
package export

import (
	"strings"

	"github.com/piwi3910/postcut/internal/model"
	"github.com/piwi3910/postcut/internal/post"
)

// JobSummary is the shop-floor view of one export.
type JobSummary struct {
	Job           string           `json:"job"`
	PostProcessor string           `json:"post_processor"`
	Machine       string           `json:"machine,omitempty"`
	Units         string           `json:"units"`
	Fixtures      []string         `json:"fixtures,omitempty"`
	Files         []FileSummary    `json:"files"`
	Tools         []ToolSummary    `json:"tools"`
	Operations    []OperationEntry `json:"operations"`
}

// FileSummary describes one written G-code file.
type FileSummary struct {
	Section string `json:"section"`
	File    string `json:"file"`
	Lines   int    `json:"lines"`
}

// ToolSummary is one row of the tool table.
type ToolSummary struct {
	Number       int     `json:"number"`
	Label        string  `json:"label"`
	Diameter     float64 `json:"diameter"`
	SpindleSpeed float64 `json:"spindle_speed"`
	SpindleDir   string  `json:"spindle_dir"`
	HorizFeed    float64 `json:"horiz_feed"`
	VertFeed     float64 `json:"vert_feed"`
	Operations   int     `json:"operations"`
}

// OperationEntry is one enabled operation in job order.
type OperationEntry struct {
	Label    string   `json:"label"`
	Kind     string   `json:"kind,omitempty"`
	Tool     int      `json:"tool,omitempty"`
	Fixtures []string `json:"fixtures,omitempty"`
	Commands int      `json:"commands"`
}

// Summarize collects the summary of a job and the outputs produced for it.
func Summarize(job *model.Job, processor, machineName, units string, outputs []post.Output) JobSummary {
	s := JobSummary{
		Job:           job.Name,
		PostProcessor: processor,
		Machine:       machineName,
		Units:         units,
		Fixtures:      job.Fixtures,
	}
	for _, out := range outputs {
		s.Files = append(s.Files, FileSummary{
			Section: out.Name,
			File:    out.FileName,
			Lines:   strings.Count(out.GCode, "\n"),
		})
	}

	uses := map[string]int{}
	for _, op := range job.Operations {
		if op.Disabled {
			continue
		}
		entry := OperationEntry{
			Label:    op.Label,
			Kind:     string(op.Kind),
			Fixtures: job.FixturesFor(op),
			Commands: len(op.Path),
		}
		if op.Tool != nil {
			entry.Tool = op.Tool.ToolNumber
			uses[op.Tool.ID]++
		}
		s.Operations = append(s.Operations, entry)
	}
	for _, tc := range job.Tools {
		s.Tools = append(s.Tools, ToolSummary{
			Number:       tc.ToolNumber,
			Label:        tc.Label,
			Diameter:     tc.ToolDiameter,
			SpindleSpeed: tc.SpindleSpeed,
			SpindleDir:   string(tc.SpindleDir),
			HorizFeed:    tc.HorizFeed,
			VertFeed:     tc.VertFeed,
			Operations:   uses[tc.ID],
		})
	}
	return s
}
