// Package machine defines the canonical machine and post-processor
// configuration consumed by the export pipeline.
package machine

import "strings"

// SchemaVersion is the current configuration schema version.
const SchemaVersion = 1

// Units selects the output unit system.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// Command returns the G-code word selecting these units.
func (u Units) Command() string {
	if u == Imperial {
		return "G20"
	}
	return "G21"
}

// FeedLabel is the unit string used in comments.
func (u Units) FeedLabel() string {
	if u == Imperial {
		return "in/min"
	}
	return "mm/min"
}

// DefaultParameterOrder is the word order used when none is configured.
var DefaultParameterOrder = []string{
	"X", "Y", "Z", "A", "B", "C", "U", "V", "W",
	"I", "J", "K", "R", "Q", "P", "F", "S", "T", "D", "H", "L",
}

// Machine is the complete configuration of one machine and its post
// processor.
type Machine struct {
	Version       int               `json:"version"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	PostProcessor string            `json:"post_processor"`
	Output        OutputOptions     `json:"output"`
	Processing    ProcessingOptions `json:"processing"`
	Blocks        Blocks            `json:"blocks"`
	Travel        Travel            `json:"travel"`
}

// OutputOptions control how commands are written as text.
type OutputOptions struct {
	Units           Units `json:"units"`
	AxisPrecision   int   `json:"axis_precision"`   // decimals for axis words
	FeedPrecision   int   `json:"feed_precision"`   // decimals for F
	SpindleDecimals int   `json:"spindle_decimals"` // decimals for S

	Comments      bool   `json:"comments"`
	CommentSymbol string `json:"comment_symbol"` // "(" wraps, anything else prefixes

	Header     bool `json:"header"`
	HeaderTime bool `json:"header_time"` // include "Output Time" in the header

	LineNumbers      bool   `json:"line_numbers"`
	LineNumberStart  int    `json:"line_number_start"`
	LineIncrement    int    `json:"line_increment"`
	LineNumberPrefix string `json:"line_number_prefix"`

	CommandSeparator string `json:"command_separator"`
	EndOfLine        string `json:"end_of_line"`

	OutputDuplicateParameters bool `json:"output_duplicate_parameters"`
	OutputDuplicateCommands   bool `json:"output_duplicate_commands"`

	ParameterOrder []string `json:"parameter_order"`
}

// ProcessingOptions control the command expansion stage.
type ProcessingOptions struct {
	TranslateDrillCycles   []string `json:"translate_drill_cycles"`
	SplitArcs              bool     `json:"split_arcs"`
	ArcSegmentLength       float64  `json:"arc_segment_length"`  // mm
	ChipBreakRetract       float64  `json:"chip_break_retract"`  // mm, G73 back-off
	SpindleWait            float64  `json:"spindle_wait"`        // seconds
	SuppressCommands       []string `json:"suppress_commands"`
	ToolChange             bool     `json:"tool_change"`
	EarlyToolPrep          bool     `json:"early_tool_prep"`
	ToolBeforeChange       bool     `json:"tool_before_change"`
	FilterInefficientMoves bool     `json:"filter_inefficient_moves"`
}

// Blocks are raw G-code snippets inserted at fixed points of the output.
type Blocks struct {
	SafetyBlock       string `json:"safetyblock"`
	Preamble          string `json:"preamble"`
	Postamble         string `json:"postamble"`
	PreJob            string `json:"pre_job"`
	PostJob           string `json:"post_job"`
	PreOperation      string `json:"pre_operation"`
	PostOperation     string `json:"post_operation"`
	PreToolChange     string `json:"pre_tool_change"`
	PostToolChange    string `json:"post_tool_change"`
	ToolReturn        string `json:"tool_return"`
	PreFixtureChange  string `json:"pre_fixture_change"`
	PostFixtureChange string `json:"post_fixture_change"`
	PreRotaryMove     string `json:"pre_rotary_move"`
	PostRotaryMove    string `json:"post_rotary_move"`
}

// Travel holds soft limits of the machine in millimetres. A zero range on an
// axis disables the check for it.
type Travel struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
	ZMin float64 `json:"z_min"`
	ZMax float64 `json:"z_max"`
}

// Default returns a configuration with every optional feature off. It is
// also used for jobs that have no machine assigned yet.
func Default() Machine {
	return Machine{
		Version: SchemaVersion,
		Output: OutputOptions{
			Units:            Metric,
			AxisPrecision:    3,
			FeedPrecision:    3,
			SpindleDecimals:  0,
			CommentSymbol:    "(",
			LineNumberStart:  100,
			LineIncrement:    10,
			LineNumberPrefix: "N",
			CommandSeparator: " ",
			EndOfLine:        "\n",
			ParameterOrder:   append([]string(nil), DefaultParameterOrder...),
		},
		Processing: ProcessingOptions{
			ArcSegmentLength: 1.0,
			ChipBreakRetract: 0.25,
		},
	}
}

// Normalize fills zero values that would make the pipeline misbehave with
// their defaults. It is applied after every load.
func (m *Machine) Normalize() {
	d := Default()
	if m.Version == 0 {
		m.Version = SchemaVersion
	}
	o := &m.Output
	switch Units(strings.ToLower(string(o.Units))) {
	case Imperial:
		o.Units = Imperial
	default:
		o.Units = Metric
	}
	if o.CommentSymbol == "" {
		o.CommentSymbol = d.Output.CommentSymbol
	}
	if o.LineIncrement == 0 {
		o.LineIncrement = d.Output.LineIncrement
	}
	if o.LineNumberPrefix == "" {
		o.LineNumberPrefix = d.Output.LineNumberPrefix
	}
	if o.CommandSeparator == "" {
		o.CommandSeparator = d.Output.CommandSeparator
	}
	if o.EndOfLine == "" {
		o.EndOfLine = d.Output.EndOfLine
	}
	if len(o.ParameterOrder) == 0 {
		o.ParameterOrder = d.Output.ParameterOrder
	}
	for i, l := range o.ParameterOrder {
		o.ParameterOrder[i] = strings.ToUpper(l)
	}
	p := &m.Processing
	if p.ArcSegmentLength <= 0 {
		p.ArcSegmentLength = d.Processing.ArcSegmentLength
	}
	if p.ChipBreakRetract <= 0 {
		p.ChipBreakRetract = d.Processing.ChipBreakRetract
	}
}

// Suppressed reports whether a command name is configured to be dropped.
func (m *Machine) Suppressed(name string) bool {
	for _, s := range m.Processing.SuppressCommands {
		if s == name {
			return true
		}
	}
	return false
}

// TranslatesCycle reports whether a drill cycle is to be expanded into
// primitive moves.
func (m *Machine) TranslatesCycle(name string) bool {
	for _, s := range m.Processing.TranslateDrillCycles {
		if s == name {
			return true
		}
	}
	return false
}
