package machine

import "strings"

// Preset is a named post-processor configuration. Presets are data: the
// pipeline is the same for all of them.
type Preset struct {
	Name        string
	Description string
	Configure   func(m *Machine)
}

// Presets lists the built-in post-processor configurations.
var Presets = []Preset{
	{
		Name:        "generic",
		Description: "Generic RS-274 output",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Processing.ToolChange = true
		},
	},
	{
		Name:        "linuxcnc",
		Description: "LinuxCNC (formerly EMC2)",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Output.AxisPrecision = 3
			m.Output.FeedPrecision = 3
			m.Processing.ToolChange = true
			m.Blocks.Preamble = "G17 G54 G40 G49 G80 G90"
			m.Blocks.Postamble = "M05\nG17 G54 G90 G80 G40\nM2"
		},
	},
	{
		Name:        "grbl",
		Description: "Grbl 1.1 (Arduino CNC shields)",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Output.CommentSymbol = "("
			m.Processing.ToolChange = false
			m.Processing.SplitArcs = false
			m.Processing.TranslateDrillCycles = []string{"G73", "G81", "G82", "G83"}
			m.Processing.SuppressCommands = []string{"G98", "G99", "G80"}
			m.Blocks.Preamble = "G17 G90"
			m.Blocks.Postamble = "M5\nG17 G90\nM2"
		},
	},
	{
		Name:        "mach3",
		Description: "Mach3/Mach4 CNC control software",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Output.AxisPrecision = 4
			m.Output.FeedPrecision = 3
			m.Processing.ToolChange = true
			m.Blocks.Preamble = "G17 G54 G40 G49 G80 G90"
			m.Blocks.Postamble = "M05\nG17 G54 G90 G80 G40\nM2"
		},
	},
	{
		Name:        "centroid",
		Description: "Centroid controllers",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Output.CommentSymbol = ";"
			m.Output.AxisPrecision = 4
			m.Output.FeedPrecision = 1
			m.Processing.ToolChange = true
			m.Processing.ToolBeforeChange = true
			m.Blocks.SafetyBlock = "G80 G40 G49"
			m.Blocks.Preamble = "G53 G00 G17"
			m.Blocks.Postamble = "M99"
			m.Blocks.ToolReturn = "G53 G00 Z0"
		},
	},
	{
		Name:        "plasma",
		Description: "Plasma/laser cutter with torch control",
		Configure: func(m *Machine) {
			m.Output.Comments = true
			m.Output.Header = true
			m.Processing.ToolChange = false
			m.Processing.SplitArcs = true
			m.Blocks.Preamble = "G17 G90"
			m.Blocks.Postamble = "M5\nM2"
		},
	},
}

// LookupPreset returns the preset with the given name, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetNames returns the names of all built-in presets.
func PresetNames() []string {
	var names []string
	for _, p := range Presets {
		names = append(names, p.Name)
	}
	return names
}

// ForPreset returns Default() configured by the named preset.
func ForPreset(name string) (Machine, bool) {
	p, ok := LookupPreset(name)
	if !ok {
		return Machine{}, false
	}
	m := Default()
	m.PostProcessor = p.Name
	p.Configure(&m)
	m.Normalize()
	return m, true
}
