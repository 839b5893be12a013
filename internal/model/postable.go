package model

// ItemKind discriminates postable items.
type ItemKind int

const (
	ItemOperation ItemKind = iota
	ItemToolChange
	ItemFixture
)

func (k ItemKind) String() string {
	switch k {
	case ItemToolChange:
		return "ToolChange"
	case ItemFixture:
		return "Fixture"
	default:
		return "Operation"
	}
}

// Postable is an item eligible to be emitted into the output stream. The
// concrete types are *OperationItem, *ToolChangeItem and *FixtureItem.
type Postable interface {
	Kind() ItemKind
	// Commands returns the item's command list. The expansion stage
	// replaces it through SetCommands.
	Commands() Path
	SetCommands(Path)
	postable()
}

// OperationItem is an operation's toolpath as visited by the ordering stage.
// Path is a private copy so one operation visited in several fixtures can
// be expanded independently.
type OperationItem struct {
	Op   *Operation
	Path Path
}

// NewOperationItem copies op's path into a new item.
func NewOperationItem(op *Operation) *OperationItem {
	return &OperationItem{Op: op, Path: op.Path.Clone()}
}

func (o *OperationItem) Kind() ItemKind { return ItemOperation }
func (o *OperationItem) Commands() Path { return o.Path }
func (o *OperationItem) SetCommands(p Path) { o.Path = p }
func (o *OperationItem) postable() {}
func (o *OperationItem) Label() string { return o.Op.Label }

// ToolChangeItem loads a tool. PrepNext, when non-zero, is the number of the
// next different tool, announced right after the change so the controller
// can stage it while this tool cuts.
type ToolChangeItem struct {
	Tool     *ToolController
	PrepNext int
	Path     Path
}

// NewToolChangeItem builds the change path: M6 T<n>, then the spindle start
// when the controller has a speed.
func NewToolChangeItem(tc *ToolController) *ToolChangeItem {
	path := Path{NewCommand("M6", P("T", tc.ToolNumber))}
	if tc.SpindleSpeed > 0 && tc.SpindleDir != SpindleNone {
		name := "M3"
		if tc.SpindleDir == SpindleReverse {
			name = "M4"
		}
		path = append(path, NewCommand(name, P("S", tc.SpindleSpeed)))
	}
	return &ToolChangeItem{Tool: tc, Path: path}
}

func (t *ToolChangeItem) Kind() ItemKind { return ItemToolChange }
func (t *ToolChangeItem) Commands() Path { return t.Path }
func (t *ToolChangeItem) SetCommands(p Path) { t.Path = p }
func (t *ToolChangeItem) postable() {}

// FixtureItem selects a work coordinate system. The first command's name is
// the fixture code.
type FixtureItem struct {
	Path Path
}

// NewFixtureItem creates a fixture marker. A non-nil clearance adds a rapid
// to that Z height after the selection.
func NewFixtureItem(code string, clearance *float64) *FixtureItem {
	path := Path{{Name: code}}
	if clearance != nil {
		path = append(path, NewCommand("G0", P("Z", *clearance)))
	}
	return &FixtureItem{Path: path}
}

// Code returns the fixture code, e.g. "G54".
func (f *FixtureItem) Code() string {
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[0].Name
}

func (f *FixtureItem) Kind() ItemKind { return ItemFixture }
func (f *FixtureItem) Commands() Path { return f.Path }
func (f *FixtureItem) SetCommands(p Path) { f.Path = p }
func (f *FixtureItem) postable() {}

// AllItemsKey is the section key used when output is not split.
const AllItemsKey = "allitems"

// Section is one group of postable items, later written as one output.
type Section struct {
	Key   string
	Items []Postable
}
