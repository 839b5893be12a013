package post

import (
	"strconv"
	"strings"

	"github.com/piwi3910/postcut/internal/model"
)

// group is one section under construction.
type group struct {
	key   string
	items []model.Postable
}

// orderState tracks the active tool and fixture while items are emitted.
type orderState struct {
	job          *model.Job
	tool         *model.ToolController
	fixture      string
	fixtureCount int
}

// needsTcOp reports whether switching to next requires a tool change. The
// same controller never does, even when reached through another operation.
func needsTcOp(prev, next *model.ToolController) bool {
	if next == nil {
		return false
	}
	return !sameTool(prev, next)
}

func sameTool(a, b *model.ToolController) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	return a.ID != "" && a.ID == b.ID
}

func (s *orderState) fixtureItem(code string) *model.FixtureItem {
	var clearance *float64
	if s.fixtureCount > 0 {
		clearance = s.job.ClearanceHeight
	}
	s.fixtureCount++
	s.fixture = code
	return model.NewFixtureItem(code, clearance)
}

// switchFixture returns a fixture marker when code differs from the active
// fixture. The implicit fixture "" never produces a marker.
func (s *orderState) switchFixture(code string) []model.Postable {
	if code == "" || code == s.fixture {
		return nil
	}
	return []model.Postable{s.fixtureItem(code)}
}

func (s *orderState) switchTool(tc *model.ToolController) []model.Postable {
	if !needsTcOp(s.tool, tc) {
		return nil
	}
	s.tool = tc
	return []model.Postable{model.NewToolChangeItem(tc)}
}

// BuildPostList orders the job's operations, tool changes and fixture
// changes into sections according to OrderOutputBy and SplitOutput. With
// earlyToolPrep every tool change announces the next different tool.
func BuildPostList(job *model.Job, earlyToolPrep bool) []model.Section {
	var ops []*model.Operation
	for _, op := range job.Operations {
		if !op.Disabled {
			ops = append(ops, op)
		}
	}

	state := &orderState{job: job}
	var groups []group
	switch job.OrderOutputBy {
	case model.OrderByFixture:
		groups = orderByFixture(state, ops)
	case model.OrderByTool:
		groups = orderByTool(state, ops, toolKeyFunc(job.OutputPattern))
	default:
		groups = orderByOperation(state, ops)
	}

	if earlyToolPrep {
		assignToolPrep(groups)
	}

	total := 0
	for _, g := range groups {
		total += len(g.items)
	}
	if total == 0 {
		return []model.Section{{Key: model.AllItemsKey}}
	}

	if !job.SplitOutput {
		all := model.Section{Key: model.AllItemsKey, Items: make([]model.Postable, 0, total)}
		for _, g := range groups {
			all.Items = append(all.Items, g.items...)
		}
		return []model.Section{all}
	}

	sections := make([]model.Section, 0, len(groups))
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		sections = append(sections, model.Section{Key: g.key, Items: g.items})
	}
	return sections
}

// jobFixtures returns the job fixtures, or the implicit fixture "" when the
// job defines none.
func jobFixtures(job *model.Job) []string {
	if len(job.Fixtures) == 0 {
		return []string{""}
	}
	return job.Fixtures
}

func opFixtures(job *model.Job, op *model.Operation) []string {
	if len(job.Fixtures) == 0 {
		return []string{""}
	}
	return job.FixturesFor(op)
}

func orderByOperation(s *orderState, ops []*model.Operation) []group {
	var groups []group
	for _, op := range ops {
		g := group{}
		for _, f := range opFixtures(s.job, op) {
			g.items = append(g.items, s.switchFixture(f)...)
			g.items = append(g.items, s.switchTool(op.Tool)...)
			g.items = append(g.items, model.NewOperationItem(op))
		}
		groups = append(groups, g)
	}
	return groups
}

func orderByFixture(s *orderState, ops []*model.Operation) []group {
	var groups []group
	for _, f := range jobFixtures(s.job) {
		g := group{key: f}
		for _, op := range ops {
			if !containsString(opFixtures(s.job, op), f) {
				continue
			}
			if len(g.items) == 0 && f != "" {
				g.items = append(g.items, s.fixtureItem(f))
			}
			g.items = append(g.items, s.switchTool(op.Tool)...)
			g.items = append(g.items, model.NewOperationItem(op))
		}
		groups = append(groups, g)
	}
	return groups
}

func orderByTool(s *orderState, ops []*model.Operation, key func(*model.ToolController) string) []group {
	var tools []*model.ToolController
	hasUntooled := false
	for _, op := range ops {
		if op.Tool == nil {
			hasUntooled = true
			continue
		}
		seen := false
		for _, t := range tools {
			if sameTool(t, op.Tool) {
				seen = true
				break
			}
		}
		if !seen {
			tools = append(tools, op.Tool)
		}
	}
	if hasUntooled {
		tools = append(tools, nil)
	}

	var groups []group
	for _, tc := range tools {
		g := group{key: key(tc)}
		g.items = append(g.items, s.switchTool(tc)...)
		s.fixture = ""
		for _, f := range jobFixtures(s.job) {
			for _, op := range ops {
				if !sameTool(op.Tool, tc) || !containsString(opFixtures(s.job, op), f) {
					continue
				}
				g.items = append(g.items, s.switchFixture(f)...)
				g.items = append(g.items, model.NewOperationItem(op))
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// toolKeyFunc picks the group key of tool-ordered output from the filename
// pattern: the later of %T (tool number) and %t (tool label) wins. The tool
// number is the default.
func toolKeyFunc(pattern string) func(*model.ToolController) string {
	useLabel := strings.LastIndex(pattern, "%t") > strings.LastIndex(pattern, "%T")
	return func(tc *model.ToolController) string {
		if tc == nil {
			return ""
		}
		if useLabel {
			return Sanitize(tc.Label)
		}
		return strconv.Itoa(tc.ToolNumber)
	}
}

// assignToolPrep points every tool change at the next different tool in
// output order.
func assignToolPrep(groups []group) {
	var changes []*model.ToolChangeItem
	for _, g := range groups {
		for _, it := range g.items {
			if tc, ok := it.(*model.ToolChangeItem); ok {
				changes = append(changes, tc)
			}
		}
	}
	for i, tc := range changes {
		tc.PrepNext = 0
		for _, next := range changes[i+1:] {
			if next.Tool.ToolNumber != tc.Tool.ToolNumber {
				tc.PrepNext = next.Tool.ToolNumber
				break
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
