package model

import (
	"fmt"

	"github.com/google/uuid"
)

// OrderBy selects the grouping axis used when ordering postable items.
type OrderBy string

const (
	OrderByOperation OrderBy = "Operation" // Job order, changes inserted as needed
	OrderByTool      OrderBy = "Tool"      // All operations of a tool together
	OrderByFixture   OrderBy = "Fixture"   // All operations of a fixture together
)

func (o OrderBy) String() string {
	if o == "" {
		return string(OrderByOperation)
	}
	return string(o)
}

// OperationKind classifies operations for the expansion stage.
type OperationKind string

const (
	KindGeneric  OperationKind = ""
	KindProfile  OperationKind = "profile"
	KindPocket   OperationKind = "pocket"
	KindDrilling OperationKind = "drilling"
)

// SpindleDir is the spindle rotation direction of a tool controller.
type SpindleDir string

const (
	SpindleForward SpindleDir = "Forward" // M3
	SpindleReverse SpindleDir = "Reverse" // M4
	SpindleNone    SpindleDir = "None"
)

// ToolController binds a tool number to its cutting parameters.
type ToolController struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	ToolNumber   int        `json:"tool_number"`
	ToolDiameter float64    `json:"tool_diameter"` // mm
	SpindleSpeed float64    `json:"spindle_speed"` // RPM
	SpindleDir   SpindleDir `json:"spindle_dir"`
	HorizFeed    float64    `json:"horiz_feed"` // mm/s
	VertFeed     float64    `json:"vert_feed"`  // mm/s
}

// NewToolController creates a tool controller with a generated ID.
func NewToolController(label string, number int, spindleSpeed float64) *ToolController {
	return &ToolController{
		ID:           uuid.New().String()[:8],
		Label:        label,
		ToolNumber:   number,
		SpindleSpeed: spindleSpeed,
		SpindleDir:   SpindleForward,
	}
}

// Operation is one toolpath operation of a job.
type Operation struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Kind     OperationKind `json:"kind,omitempty"`
	ToolID   string        `json:"tool_id,omitempty"`  // references ToolController.ID
	Fixtures []string      `json:"fixtures,omitempty"` // subset of the job fixtures; empty means all
	Disabled bool          `json:"disabled,omitempty"`
	Path     Path          `json:"path"`

	// Tool is resolved from ToolID by Job.Resolve.
	Tool *ToolController `json:"-"`
}

// NewOperation creates an operation with a generated ID.
func NewOperation(label string, tool *ToolController, path Path) *Operation {
	op := &Operation{
		ID:    uuid.New().String()[:8],
		Label: label,
		Tool:  tool,
		Path:  path,
	}
	if tool != nil {
		op.ToolID = tool.ID
	}
	return op
}

// IsDrilling reports whether the operation produces drill cycles that may be
// translated into primitive moves.
func (o *Operation) IsDrilling() bool {
	return o.Kind == KindDrilling
}

// Job is the unit of export: ordered operations, tools and fixtures.
type Job struct {
	Name            string            `json:"name"`
	Document        string            `json:"document,omitempty"` // source document file path
	Machine         string            `json:"machine,omitempty"`  // machine configuration name; empty means none assigned
	PostProcessor   string            `json:"post_processor,omitempty"`
	Tools           []*ToolController `json:"tools"`
	Operations      []*Operation      `json:"operations"`
	Fixtures        []string          `json:"fixtures"`
	SplitOutput     bool              `json:"split_output"`
	OrderOutputBy   OrderBy           `json:"order_output_by"`
	OutputPattern   string            `json:"output_pattern,omitempty"`
	ClearanceHeight *float64          `json:"clearance_height,omitempty"` // mm, rapid Z after a fixture change
}

// NewJob returns an empty job using the default fixture.
func NewJob(name string) *Job {
	return &Job{
		Name:          name,
		Tools:         []*ToolController{},
		Operations:    []*Operation{},
		Fixtures:      []string{"G54"},
		OrderOutputBy: OrderByOperation,
	}
}

// AddOperation appends op and registers its tool controller if needed.
func (j *Job) AddOperation(op *Operation) {
	if op.Tool != nil && j.ToolByID(op.Tool.ID) == nil {
		j.Tools = append(j.Tools, op.Tool)
	}
	j.Operations = append(j.Operations, op)
}

// ToolByID returns the tool controller with the given ID or nil.
func (j *Job) ToolByID(id string) *ToolController {
	for _, tc := range j.Tools {
		if tc.ID == id {
			return tc
		}
	}
	return nil
}

// Resolve links operations to their tool controllers after decoding.
func (j *Job) Resolve() error {
	for _, op := range j.Operations {
		if op.ToolID == "" {
			op.Tool = nil
			continue
		}
		tc := j.ToolByID(op.ToolID)
		if tc == nil {
			return fmt.Errorf("operation %q references unknown tool controller %q", op.Label, op.ToolID)
		}
		op.Tool = tc
	}
	return nil
}

// FixturesFor returns the fixtures an operation is cut in, in job order.
func (j *Job) FixturesFor(op *Operation) []string {
	if len(op.Fixtures) == 0 {
		return j.Fixtures
	}
	var out []string
	for _, f := range j.Fixtures {
		for _, want := range op.Fixtures {
			if f == want {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
