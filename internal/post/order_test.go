package post

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/postcut/internal/model"
)

func TestBuildPostList_Ordering(t *testing.T) {
	tests := []struct {
		name     string
		orderBy  model.OrderBy
		wantKeys []string
		want     [][]string
	}{
		{
			name:     "by operation",
			orderBy:  model.OrderByOperation,
			wantKeys: []string{"", "", ""},
			want: [][]string{
				{"G54", "T1", "A", "G55", "A"},
				{"G54", "T2", "B", "G55", "B"},
				{"G54", "T1", "C", "G55", "C"},
			},
		},
		{
			name:     "by fixture",
			orderBy:  model.OrderByFixture,
			wantKeys: []string{"G54", "G55"},
			want: [][]string{
				{"G54", "T1", "A", "T2", "B", "T1", "C"},
				{"G55", "A", "T2", "B", "T1", "C"},
			},
		},
		{
			name:     "by tool",
			orderBy:  model.OrderByTool,
			wantKeys: []string{"1", "2"},
			want: [][]string{
				{"T1", "G54", "A", "C", "G55", "A", "C"},
				{"T2", "G54", "B", "G55", "B"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := threeOpJob()
			job.OrderOutputBy = tt.orderBy
			job.SplitOutput = true

			sections := BuildPostList(job, false)
			require.Len(t, sections, len(tt.want))
			var flat []string
			for i, sec := range sections {
				assert.Equal(t, tt.wantKeys[i], sec.Key)
				if diff := cmp.Diff(tt.want[i], describeItems(sec.Items)); diff != "" {
					t.Errorf("section %d mismatch (-want +got):\n%s", i, diff)
				}
				flat = append(flat, describeItems(sec.Items)...)
			}

			job.SplitOutput = false
			combined := BuildPostList(job, false)
			require.Len(t, combined, 1)
			assert.Equal(t, model.AllItemsKey, combined[0].Key)
			assert.Equal(t, flat, describeItems(combined[0].Items), "splitting never changes the item order")
		})
	}
}

func TestBuildPostList_EmptyJob(t *testing.T) {
	sections := BuildPostList(model.NewJob("empty"), true)
	require.Len(t, sections, 1)
	assert.Equal(t, model.AllItemsKey, sections[0].Key)
	assert.Empty(t, sections[0].Items)
}

func TestBuildPostList_DisabledOperationSkipped(t *testing.T) {
	job := threeOpJob()
	job.Fixtures = []string{"G54"}
	job.Operations[1].Disabled = true

	sections := BuildPostList(job, false)
	assert.Equal(t, []string{"G54", "T1", "A", "C"}, describeItems(sections[0].Items))
}

func TestBuildPostList_NoFixtures(t *testing.T) {
	job := threeOpJob()
	job.Fixtures = nil
	job.OrderOutputBy = model.OrderByFixture

	sections := BuildPostList(job, false)
	assert.Equal(t, []string{"T1", "A", "T2", "B", "T1", "C"}, describeItems(sections[0].Items))
}

func TestBuildPostList_OperationFixtureSubset(t *testing.T) {
	job := threeOpJob()
	job.Operations[1].Fixtures = []string{"G55"}

	sections := BuildPostList(job, false)
	assert.Equal(t,
		[]string{"G54", "T1", "A", "G55", "A", "T2", "B", "G54", "T1", "C", "G55", "C"},
		describeItems(sections[0].Items))
}

func TestBuildPostList_ClearanceAfterFirstFixture(t *testing.T) {
	job := threeOpJob()
	job.OrderOutputBy = model.OrderByTool
	clearance := 25.0
	job.ClearanceHeight = &clearance

	var fixtures []*model.FixtureItem
	for _, it := range BuildPostList(job, false)[0].Items {
		if f, ok := it.(*model.FixtureItem); ok {
			fixtures = append(fixtures, f)
		}
	}
	require.Len(t, fixtures, 4)
	assert.Len(t, fixtures[0].Path, 1, "the first fixture needs no clearance move")
	for _, f := range fixtures[1:] {
		require.Len(t, f.Path, 2)
		assert.Equal(t, "G0 Z25", f.Path[1].String())
	}
}

func TestBuildPostList_UntooledOperationsLast(t *testing.T) {
	job := threeOpJob()
	job.Fixtures = []string{"G54"}
	job.OrderOutputBy = model.OrderByTool
	job.SplitOutput = true
	job.Operations = append([]*model.Operation{op("Probe", nil, g("G0", "Z", 5))}, job.Operations...)

	sections := BuildPostList(job, false)
	require.Len(t, sections, 3)
	assert.Equal(t, "", sections[2].Key)
	assert.Equal(t, []string{"G54", "Probe"}, describeItems(sections[2].Items))
}

func TestBuildPostList_ToolKeyFromPattern(t *testing.T) {
	job := threeOpJob()
	job.OrderOutputBy = model.OrderByTool
	job.SplitOutput = true
	job.OutputPattern = "%T-%t.nc"

	sections := BuildPostList(job, false)
	require.Len(t, sections, 2)
	assert.Equal(t, "Flat_6mm", sections[0].Key)
	assert.Equal(t, "Drill_3mm", sections[1].Key)
}

func TestBuildPostList_EarlyToolPrep(t *testing.T) {
	job := threeOpJob()
	job.Fixtures = []string{"G54"}

	var prep []int
	for _, it := range BuildPostList(job, true)[0].Items {
		if tc, ok := it.(*model.ToolChangeItem); ok {
			prep = append(prep, tc.PrepNext)
		}
	}
	assert.Equal(t, []int{2, 1, 0}, prep)
}

func TestBuildPostList_EarlyToolPrepSkipsSameNumber(t *testing.T) {
	slow := model.NewToolController("Flat slow", 1, 8000)
	fast := model.NewToolController("Flat fast", 1, 18000)
	drill := model.NewToolController("Drill", 2, 9000)
	job := model.NewJob("demo")
	job.AddOperation(op("Rough", slow, g("G0", "X", 1)))
	job.AddOperation(op("Finish", fast, g("G0", "X", 2)))
	job.AddOperation(op("Holes", drill, g("G0", "X", 3)))

	items := BuildPostList(job, true)[0].Items
	assert.Equal(t, []string{"G54", "T1", "Rough", "T1", "Finish", "T2", "Holes"}, describeItems(items))

	var prep []int
	for _, it := range items {
		if tc, ok := it.(*model.ToolChangeItem); ok {
			prep = append(prep, tc.PrepNext)
		}
	}
	assert.Equal(t, []int{2, 2, 0}, prep, "prep looks past a controller with the same tool number")
}

func TestBuildPostList_SameToolNeverChanges(t *testing.T) {
	t1 := model.NewToolController("Flat", 1, 0)
	copyOfT1 := *t1
	job := model.NewJob("demo")
	job.AddOperation(op("A", t1, g("G0", "X", 1)))
	job.Operations = append(job.Operations, op("B", &copyOfT1, g("G0", "X", 2)))

	assert.Equal(t, []string{"G54", "T1", "A", "B"}, describeItems(BuildPostList(job, false)[0].Items))
}
