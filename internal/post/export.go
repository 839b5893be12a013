package post

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// Output is the G-code of one section. GCode is empty when the section
// produced no content.
type Output struct {
	Name     string // section key
	FileName string // resolved output pattern
	GCode    string
}

// Options are the collaborators of an export.
type Options struct {
	Logger   *slog.Logger
	Now      func() time.Time // clock for the header timestamp
	MacroDir string           // substituted for %M
	Hooks    Hooks
}

// Exporter runs the full pipeline for one machine configuration. It holds no
// per-export state, so one Exporter may serve several exports, including
// concurrent ones.
type Exporter struct {
	name string
	m    machine.Machine
	opts Options
}

// NewExporter creates an exporter for the named post processor.
func NewExporter(name string, m machine.Machine, opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m.Normalize()
	return &Exporter{name: name, m: m, opts: opts}
}

// Name returns the post processor name.
func (e *Exporter) Name() string { return e.name }

// Machine returns the configuration the exporter writes for.
func (e *Exporter) Machine() machine.Machine { return e.m }

// line is one output line. Header lines are never numbered.
type line struct {
	text   string
	header bool
}

// run is the state of a single export: modal words, the retract mode, the
// machine position and the emitted lines.
type run struct {
	e        *Exporter
	m        *machine.Machine
	job      *model.Job
	conv     *gcode.Converter
	opt      *gcode.LineOptimizer
	expander *Expander
	lines    []line
}

// Export orders, expands and converts the job and returns one output per
// section. An unsupported command aborts the export.
func (e *Exporter) Export(job *model.Job) ([]Output, error) {
	m := e.m
	r := &run{
		e:   e,
		m:   &m,
		job: job,
	}
	r.conv = gcode.NewConverter(r.m)
	r.conv.Allow(e.opts.Hooks.ExtraCommands...)
	r.opt = gcode.NewLineOptimizer(m.Output)
	r.expander = NewExpander(r.m, e.opts.Hooks, e.opts.Logger)

	sections := BuildPostList(job, m.Processing.EarlyToolPrep)
	bodies := make([][]line, len(sections))
	for i, sec := range sections {
		r.lines = nil
		if i == 0 {
			r.writeStart()
		}
		for _, item := range sec.Items {
			r.expander.Expand(item)
			if err := r.writeItem(item); err != nil {
				return nil, fmt.Errorf("section %q: %w", sec.Key, err)
			}
		}
		if i == len(sections)-1 {
			r.writeEnd()
		}
		bodies[i] = r.lines
		e.opts.Logger.Debug("section assembled",
			"section", sec.Key,
			"items", len(sec.Items),
			"lines", len(r.lines),
		)
	}

	if m.Output.LineNumbers {
		numberer := gcode.NewLineNumberer(m.Output)
		for _, body := range bodies {
			for j := range body {
				if !body[j].header {
					body[j].text = numberer.Number(body[j].text)
				}
			}
		}
	}

	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = ResolveFilename(job.OutputPattern, sectionContext(job, i, sec, e.opts.MacroDir))
	}
	names = uniqueNames(names)

	outputs := make([]Output, len(sections))
	for i, sec := range sections {
		outputs[i] = Output{Name: sec.Key, FileName: names[i], GCode: r.render(bodies[i])}
	}
	return outputs, nil
}

func (r *run) render(body []line) string {
	if len(body) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range body {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	text := b.String()
	if eol := r.m.Output.EndOfLine; eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}
	return text
}

func (r *run) writeStart() {
	r.block(r.m.Blocks.SafetyBlock)
	if r.m.Output.Header {
		r.writeHeader()
	}
	r.comment("Begin preamble")
	r.block(r.m.Blocks.Preamble)
	r.raw(r.m.Output.Units.Command())
	r.block(r.m.Blocks.PreJob)
}

func (r *run) writeEnd() {
	r.block(r.m.Blocks.PostJob)
	r.comment("Begin postamble")
	r.block(r.m.Blocks.Postamble)
}

func (r *run) writeHeader() {
	header := func(text string) {
		r.lines = append(r.lines, line{text: r.conv.FormatComment(text), header: true})
	}
	header("Exported by PostCut")
	header("Post Processor: " + r.e.name)
	if r.m.Name != "" {
		header("Machine: " + r.m.Name)
	}
	if r.job.Name != "" {
		header("Job: " + r.job.Name)
	}
	if r.m.Output.HeaderTime {
		header("Output Time: " + r.e.opts.Now().Format(time.RFC3339))
	}
}

func (r *run) writeItem(item model.Postable) error {
	switch it := item.(type) {
	case *model.OperationItem:
		return r.writeOperation(it)
	case *model.ToolChangeItem:
		return r.writeToolChange(it)
	case *model.FixtureItem:
		return r.writeFixture(it)
	}
	return fmt.Errorf("unknown postable item %T", item)
}

func (r *run) writeOperation(op *model.OperationItem) error {
	b := r.m.Blocks
	r.comment("Begin operation: " + op.Label())
	r.block(b.PreOperation)

	rotary := false
	for _, cmd := range op.Path {
		text, ok, err := r.conv.Convert(cmd)
		if err != nil {
			return fmt.Errorf("operation %q: %w", op.Label(), err)
		}
		if !ok {
			continue
		}
		if !cmd.IsComment() {
			if text, ok = r.opt.Command(text); !ok {
				continue
			}
		}
		// Rotary runs are bracketed by what is actually written.
		isRotary := !cmd.IsComment() && gcode.LineHasWord(text, r.m.Output.CommandSeparator, gcode.RotaryLetters...)
		if isRotary && !rotary {
			r.blockLines(b.PreRotaryMove)
		}
		if !isRotary && rotary {
			r.blockLines(b.PostRotaryMove)
		}
		rotary = isRotary
		r.lines = append(r.lines, line{text: text})
		if cmd.IsComment() {
			r.opt.Break()
		}
	}
	if rotary {
		r.block(b.PostRotaryMove)
	}

	r.comment("Finish operation: " + op.Label())
	r.block(b.PostOperation)
	return nil
}

func (r *run) writeToolChange(tc *model.ToolChangeItem) error {
	b := r.m.Blocks
	r.comment("Begin toolchange")
	r.block(b.PreToolChange)
	for _, cmd := range tc.Path {
		if !gcode.IsToolChange(cmd.Name) {
			if err := r.command(cmd); err != nil {
				return err
			}
			continue
		}
		text, ok, err := r.conv.Convert(cmd)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !r.m.Processing.ToolChange {
			r.comment(text)
			continue
		}
		r.emit(text)
		if tc.PrepNext > 0 {
			r.raw(r.conv.FormatWord("T", float64(tc.PrepNext)))
		}
	}
	r.block(b.PostToolChange)
	r.block(b.ToolReturn)
	return nil
}

func (r *run) writeFixture(f *model.FixtureItem) error {
	r.comment("Begin fixture change")
	r.block(r.m.Blocks.PreFixtureChange)
	// Positions written so far belong to the previous work offset.
	r.conv.Forget(gcode.AxisLetters...)
	r.opt.ForgetAxes(gcode.AxisLetters...)
	for _, cmd := range f.Path {
		if err := r.command(cmd); err != nil {
			return err
		}
	}
	r.block(r.m.Blocks.PostFixtureChange)
	return nil
}

// command converts cmd and emits the resulting line, if any.
func (r *run) command(cmd model.Command) error {
	text, ok, err := r.conv.Convert(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if cmd.IsComment() {
		r.lines = append(r.lines, line{text: text})
		r.opt.Break()
		return nil
	}
	r.emit(text)
	return nil
}

// emit passes a command line through the line optimizer.
func (r *run) emit(text string) {
	if text, ok := r.opt.Command(text); ok {
		r.lines = append(r.lines, line{text: text})
	}
}

// comment writes a framing comment when comments are enabled.
func (r *run) comment(text string) {
	if !r.m.Output.Comments {
		return
	}
	r.lines = append(r.lines, line{text: r.conv.FormatComment(text)})
	r.opt.Break()
}

// raw writes a generated command line that bypasses conversion.
func (r *run) raw(text string) {
	r.lines = append(r.lines, line{text: text})
	r.opt.Break()
}

// block writes a configured text block line by line.
func (r *run) block(text string) {
	if r.blockLines(text) {
		r.opt.Break()
	}
}

// blockLines appends the lines of a text block without touching the line
// optimizer. It reports whether anything was written.
func (r *run) blockLines(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r \t")
		if l == "" {
			continue
		}
		r.lines = append(r.lines, line{text: l})
	}
	return true
}
