package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agg(name string) *cohort.Aggregate { return &cohort.Aggregate{Name: name} }

func container(name string, children ...cohort.ContainerNode) *cohort.Container {
	return &cohort.Container{Name: name, Contents: children}
}

func TestRender_Scenarios(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  *cohort.Configuration
		want []string
	}{
		{
			name: "single child union collapses",
			cfg: &cohort.Configuration{
				Description: "Diabetics over 50",
				Root:        container("UNION", agg("AgeFilter")),
			},
			want: []string{
				"Diabetics over 50",
				"\tAgeFilter",
				"PATIENT INDEX TABLES:",
				"None",
			},
		},
		{
			name: "intersect with two aggregates",
			cfg: &cohort.Configuration{
				Description: "d",
				Root:        container("INTERSECT", agg("A"), agg("B")),
			},
			want: []string{
				"d",
				"\tINTERSECT",
				"\t\tA",
				"\t\tB",
				"PATIENT INDEX TABLES:",
				"None",
			},
		},
		{
			name: "aggregate with filters",
			cfg: &cohort.Configuration{
				Description: "d",
				Root: container("Root",
					&cohort.Aggregate{
						Name: "Agg",
						RootFilter: &cohort.FilterContainer{
							Operation: "AND",
							Filters:   []*cohort.Filter{{Name: "F1"}, {Name: "F2"}},
						},
					},
				),
			},
			want: []string{
				"d",
				"\tRoot",
				"\t\tAgg",
				"\t\t\tAND",
				"\t\t\t\tF1",
				"\t\t\t\tF2",
				"PATIENT INDEX TABLES:",
				"None",
			},
		},
		{
			name: "joinable rendered at depth zero",
			cfg: &cohort.Configuration{
				Description: "d",
				Root:        container("INTERSECT", agg("A"), agg("B")),
				Joinables:   []*cohort.Joinable{{Aggregate: agg("IndexTable1")}},
			},
			want: []string{
				"d",
				"\tINTERSECT",
				"\t\tA",
				"\t\tB",
				"PATIENT INDEX TABLES:",
				"IndexTable1",
			},
		},
		{
			name: "nested single child excepts collapse fully",
			cfg: &cohort.Configuration{
				Description: "d",
				Root:        container("EXCEPT", container("EXCEPT", container("EXCEPT", agg("Leaf")))),
			},
			want: []string{
				"d",
				"\tLeaf",
				"PATIENT INDEX TABLES:",
				"None",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Render(tc.cfg))
		})
	}
}

func TestRender_CollapseOnlyForSetOperations(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root:        container("My Group", agg("Only")),
	}

	got := Render(cfg)
	assert.Equal(t, []string{"d", "\tMy Group", "\t\tOnly", PatientIndexTablesHeader, NoJoinables}, got)
}

func TestRender_CollapseIsCaseSensitive(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{Root: container("union", agg("Only"))}
	got := Render(cfg)
	assert.Contains(t, got, "\tunion")
	assert.Contains(t, got, "\t\tOnly")
}

func TestRender_SingleChildFilterContainerIsNotCollapsed(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root: container("UNION", &cohort.Aggregate{
			Name: "A",
			RootFilter: &cohort.FilterContainer{
				Operation: "AND",
				SubContainers: []*cohort.FilterContainer{
					{Operation: "OR", Filters: []*cohort.Filter{{Name: "F"}}},
				},
			},
		}),
	}

	assert.Equal(t, []string{
		"d",
		"\tA",
		"\t\tAND",
		"\t\t\tOR",
		"\t\t\t\tF",
		PatientIndexTablesHeader,
		NoJoinables,
	}, Render(cfg))
}

func TestRender_SubFilterContainersBeforeFilters(t *testing.T) {
	t.Parallel()

	a := &cohort.Aggregate{
		Name: "A",
		RootFilter: &cohort.FilterContainer{
			Operation:     "AND",
			Filters:       []*cohort.Filter{{Name: "F1"}},
			SubContainers: []*cohort.FilterContainer{{Operation: "OR"}},
		},
	}
	cfg := &cohort.Configuration{Joinables: []*cohort.Joinable{{Aggregate: a}}}

	got := Render(cfg)
	assert.Equal(t, []string{PatientIndexTablesHeader, "A", "\tAND", "\t\tOR", "\t\tF1"}, got[len(got)-5:])
}

func TestRender_EmptyAndAbsentContainers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		root *cohort.Container
	}{
		{name: "nil root", root: nil},
		{name: "empty union", root: container("UNION")},
		{name: "empty plain container", root: container("Anything")},
		{name: "typed nil child only", root: container("UNION", (*cohort.Container)(nil))},
		{name: "single empty child", root: container("INTERSECT", container("EXCEPT"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Render(&cohort.Configuration{Description: "d", Root: tc.root})
			assert.Equal(t, []string{"d", PatientIndexTablesHeader, NoJoinables}, got)
		})
	}
}

func TestRender_NilConfigurationStartsWithEmptyDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"", PatientIndexTablesHeader, NoJoinables}, Render(nil))
	assert.Equal(t, "\n"+PatientIndexTablesHeader+"\n"+NoJoinables+"\n", Text(nil))
}

func TestRender_JoinablesWithoutAggregatesRenderNone(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		joinables []*cohort.Joinable
		want      []string
	}{
		{name: "nil and empty entries", joinables: []*cohort.Joinable{nil, {}}, want: []string{NoJoinables}},
		{name: "empty slice", joinables: []*cohort.Joinable{}, want: []string{NoJoinables}},
		{name: "mixed keeps only real tables", joinables: []*cohort.Joinable{nil, {Aggregate: agg("IndexTable1")}, {}}, want: []string{"IndexTable1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Render(&cohort.Configuration{Description: "d", Joinables: tc.joinables})
			assert.Equal(t, append([]string{"d", PatientIndexTablesHeader}, tc.want...), got)
		})
	}
}

func TestRender_EmptyChildContainerElidedInsideParent(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root:        container("UNION", agg("A"), container("EXCEPT"), agg("B")),
	}

	assert.Equal(t, []string{"d", "\tUNION", "\t\tA", "\t\tB", PatientIndexTablesHeader, NoJoinables}, Render(cfg))
}

func TestRender_ChildDepthIsParentPlusOne(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root: container("UNION",
			agg("A"),
			container("INTERSECT", agg("B"), container("EXCEPT", agg("C"), agg("D"))),
		),
	}

	assert.Equal(t, []string{
		"d",
		"\tUNION",
		"\t\tA",
		"\t\tINTERSECT",
		"\t\t\tB",
		"\t\t\tEXCEPT",
		"\t\t\t\tC",
		"\t\t\t\tD",
		PatientIndexTablesHeader,
		NoJoinables,
	}, Render(cfg))
}

func TestRender_CollapsedChainInsideParentKeepsParentDepth(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root: container("UNION",
			agg("A"),
			container("INTERSECT", container("UNION", agg("B"))),
		),
	}

	assert.Equal(t, []string{"d", "\tUNION", "\t\tA", "\t\tB", PatientIndexTablesHeader, NoJoinables}, Render(cfg))
}

func TestRender_ChildOrderFollowsInput(t *testing.T) {
	t.Parallel()

	forward := &cohort.Configuration{Root: container("UNION", agg("A"), agg("B"), agg("C"))}
	reversed := &cohort.Configuration{Root: container("UNION", agg("C"), agg("B"), agg("A"))}

	assert.Equal(t, []string{"", "\tUNION", "\t\tA", "\t\tB", "\t\tC"}, Render(forward)[:5])
	assert.Equal(t, []string{"", "\tUNION", "\t\tC", "\t\tB", "\t\tA"}, Render(reversed)[:5])
}

func TestRender_RepeatedAggregateRenderedEachTime(t *testing.T) {
	t.Parallel()

	shared := agg("Shared")
	cfg := &cohort.Configuration{
		Description: "d",
		Root:        container("UNION", shared, shared),
		Joinables:   []*cohort.Joinable{{Aggregate: shared}},
	}

	count := 0
	for _, l := range Render(cfg) {
		if strings.TrimLeft(l, "\t") == "Shared" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestRender_DescriptionVerbatim(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{Description: "  line one\r\nline two\t"}
	got := Render(cfg)
	require.NotEmpty(t, got)
	assert.Equal(t, "  line one\r\nline two\t", got[0])
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "d",
		Root:        container("UNION", agg("A"), container("INTERSECT", agg("B"), agg("C"))),
		Joinables:   []*cohort.Joinable{{Aggregate: agg("J1")}, {Aggregate: agg("J2")}},
	}

	assert.Equal(t, Text(cfg), Text(cfg))
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	root := container("UNION", container("EXCEPT", agg("A")))
	cfg := &cohort.Configuration{Description: "d", Root: root}
	_ = Render(cfg)

	require.Len(t, root.Contents, 1)
	inner, ok := root.Contents[0].(*cohort.Container)
	require.True(t, ok)
	assert.Equal(t, "EXCEPT", inner.Name)
	assert.Len(t, inner.Contents, 1)
}

func TestText_AndWriteTo(t *testing.T) {
	t.Parallel()

	cfg := &cohort.Configuration{
		Description: "Diabetics over 50",
		Root:        container("UNION", agg("AgeFilter")),
	}
	want := "Diabetics over 50\n\tAgeFilter\nPATIENT INDEX TABLES:\nNone\n"

	assert.Equal(t, want, Text(cfg))

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, cfg))
	assert.Equal(t, want, buf.String())
}

func TestIndent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", indent(0))
	assert.Equal(t, "", indent(-1))
	assert.Equal(t, "\t\t\t", indent(3))
}
