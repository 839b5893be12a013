package post

import (
	"fmt"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// LegacyScript is a post processor written as a single function over the
// ordered items. It gets no expansion, conversion or assembly.
type LegacyScript func(items []model.Postable, m machine.Machine) (string, error)

// LegacyProcessor adapts a LegacyScript to the Processor interface. The
// script always receives the combined item list and produces one output.
type LegacyProcessor struct {
	name   string
	m      machine.Machine
	opts   Options
	script LegacyScript
}

// NewLegacyProcessor wraps script under name.
func NewLegacyProcessor(name string, m machine.Machine, opts Options, script LegacyScript) *LegacyProcessor {
	return &LegacyProcessor{name: name, m: m, opts: opts, script: script}
}

func (p *LegacyProcessor) Name() string { return p.name }

// Export runs the ordering stage and hands the items to the script.
func (p *LegacyProcessor) Export(job *model.Job) ([]Output, error) {
	sections := BuildPostList(job, p.m.Processing.EarlyToolPrep)
	var items []model.Postable
	for _, sec := range sections {
		items = append(items, sec.Items...)
	}
	text, err := p.script(items, p.m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	all := model.Section{Key: model.AllItemsKey, Items: items}
	return []Output{{
		Name:     model.AllItemsKey,
		FileName: ResolveFilename(job.OutputPattern, sectionContext(job, 0, all, p.opts.MacroDir)),
		GCode:    text,
	}}, nil
}

// DumpCommands lists every command unformatted, one per line, under a
// comment naming its item. It is meant for inspecting the ordering stage.
func DumpCommands(items []model.Postable, _ machine.Machine) (string, error) {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "(%s: %s)\n", it.Kind(), itemLabel(it))
		for _, cmd := range it.Commands() {
			b.WriteString(cmd.String())
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
