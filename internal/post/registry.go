package post

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// Processor turns a job into G-code sections.
type Processor interface {
	Name() string
	Export(job *model.Job) ([]Output, error)
}

// Factory builds a processor for a machine configuration.
type Factory func(m machine.Machine, opts Options) Processor

// Registry maps post processor names to factories. Names are matched
// case-insensitively.
type Registry struct {
	factories map[string]Factory
	names     map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
	}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	key := strings.ToLower(name)
	r.factories[key] = f
	r.names[key] = name
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, &ResolutionError{Kind: "post processor", Name: name}
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.names))
	for _, n := range r.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry holding every built-in post processor:
// the machine presets plus the command dumper.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range machine.Presets {
		name := p.Name
		var hooks Hooks
		if name == "plasma" {
			hooks = PlasmaHooks()
		}
		r.Register(name, func(m machine.Machine, opts Options) Processor {
			if opts.Hooks.AfterExpand == nil && len(opts.Hooks.ExtraCommands) == 0 {
				opts.Hooks = hooks
			}
			return NewExporter(name, m, opts)
		})
	}
	r.Register("dumper", func(m machine.Machine, opts Options) Processor {
		return NewLegacyProcessor("dumper", m, opts, DumpCommands)
	})
	return r
}

// MachineSource looks up machine configurations by name.
type MachineSource interface {
	Machine(name string) (machine.Machine, error)
}

// Resolve picks the machine and post processor for a job. A job without a
// machine uses machine.Default() with every feature off. Resolution errors
// are returned before anything is converted.
func (r *Registry) Resolve(job *model.Job, machines MachineSource, opts Options) (Processor, error) {
	m := machine.Default()
	if job.Machine != "" {
		if machines == nil {
			return nil, &ResolutionError{Kind: "machine", Name: job.Machine}
		}
		var err error
		m, err = machines.Machine(job.Machine)
		if err != nil {
			return nil, fmt.Errorf("resolve machine for job %q: %w", job.Name, err)
		}
	}
	return r.Build(PostProcessorName(job, m), m, opts)
}

// Build creates the named processor for m.
func (r *Registry) Build(name string, m machine.Machine, opts Options) (Processor, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(m, opts), nil
}

// PostProcessorName picks the post processor for a job: the job's own
// choice, then the machine's, then "generic".
func PostProcessorName(job *model.Job, m machine.Machine) string {
	switch {
	case job.PostProcessor != "":
		return job.PostProcessor
	case m.PostProcessor != "":
		return m.PostProcessor
	}
	return "generic"
}
