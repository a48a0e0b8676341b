package visits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVisits() []Visit {
	return []Visit{
		{ID: "id-1", EntityRef: "component:default/gamma", Pathname: "/gamma", Name: "Gamma", Timestamp: 3000, Hits: 1},
		{ID: "id-2", EntityRef: "component:default/alpha", Pathname: "/alpha", Name: "Alpha", Timestamp: 1000, Hits: 5},
		{ID: "id-3", EntityRef: "component:default/beta", Pathname: "/beta", Name: "Beta", Timestamp: 2000, Hits: 3},
	}
}

func TestApply_NoQueryPreservesInput(t *testing.T) {
	in := sampleVisits()
	out, err := Apply(in, Query{})
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sampleVisits()
	want := sampleVisits()

	_, err := Apply(in, Query{OrderBy: []OrderBy{{Field: FieldName}}})
	require.NoError(t, err)
	assert.Equal(t, want, in, "input slice must stay untouched")
}

func TestApply_SortSingleKey(t *testing.T) {
	tests := []struct {
		name  string
		key   OrderBy
		first string
	}{
		{"timestamp ascending", OrderBy{Field: FieldTimestamp}, "id-2"},
		{"timestamp descending", OrderBy{Field: FieldTimestamp, Descending: true}, "id-1"},
		{"name ascending", OrderBy{Field: FieldName}, "id-2"},
		{"name descending", OrderBy{Field: FieldName, Descending: true}, "id-1"},
		{"hits descending", OrderBy{Field: FieldHits, Descending: true}, "id-2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Apply(sampleVisits(), Query{OrderBy: []OrderBy{tc.key}})
			require.NoError(t, err)
			require.Len(t, out, 3)
			assert.Equal(t, tc.first, out[0].ID)
		})
	}
}

func TestApply_SortMultiKey(t *testing.T) {
	in := []Visit{
		{ID: "id-1", EntityRef: "component:default/c", Name: "Playback Order Odd", Timestamp: 1000},
		{ID: "id-2", EntityRef: "component:default/b", Name: "Playback Order Even", Timestamp: 2000},
		{ID: "id-3", EntityRef: "component:default/a", Name: "Playback Order Odd", Timestamp: 3000},
	}

	out, err := Apply(in, Query{OrderBy: []OrderBy{{Field: FieldName}, {Field: FieldEntityRef}}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "id-2", out[0].ID, "Even sorts before Odd")
	assert.Equal(t, "id-3", out[1].ID, ".../a before .../c under the secondary key")
	assert.Equal(t, "id-1", out[2].ID)
}

func TestApply_SortIsStable(t *testing.T) {
	in := []Visit{
		{ID: "id-1", Name: "Same", Timestamp: 1000},
		{ID: "id-2", Name: "Same", Timestamp: 1000},
		{ID: "id-3", Name: "Same", Timestamp: 1000},
	}

	out, err := Apply(in, Query{OrderBy: []OrderBy{{Field: FieldName}, {Field: FieldTimestamp}}})
	require.NoError(t, err)
	assert.Equal(t, in, out, "equal records keep their relative input order")
}

func TestApply_SortIsIdempotent(t *testing.T) {
	key := []OrderBy{{Field: FieldTimestamp, Descending: true}}

	once, err := Apply(sampleVisits(), Query{OrderBy: key})
	require.NoError(t, err)
	twice, err := Apply(once, Query{OrderBy: key})
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestApply_FilterNumericOperators(t *testing.T) {
	tests := []struct {
		name string
		f    FilterExpr
		ids  []string
	}{
		{"greater", FilterExpr{Field: FieldTimestamp, Op: OpGreater, Value: int64(1000)}, []string{"id-1", "id-3"}},
		{"greater or equal", FilterExpr{Field: FieldTimestamp, Op: OpGreaterEq, Value: int64(2000)}, []string{"id-1", "id-3"}},
		{"less", FilterExpr{Field: FieldTimestamp, Op: OpLess, Value: int64(2000)}, []string{"id-2"}},
		{"less or equal", FilterExpr{Field: FieldTimestamp, Op: OpLessEq, Value: int64(2000)}, []string{"id-2", "id-3"}},
		{"equal on hits", FilterExpr{Field: FieldHits, Op: OpEqual, Value: 3}, []string{"id-3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Apply(sampleVisits(), Query{FilterBy: []FilterExpr{tc.f}})
			require.NoError(t, err)
			var ids []string
			for _, v := range out {
				ids = append(ids, v.ID)
			}
			assert.ElementsMatch(t, tc.ids, ids)
		})
	}
}

func TestApply_FilterStringOperators(t *testing.T) {
	out, err := Apply(sampleVisits(), Query{
		FilterBy: []FilterExpr{{Field: FieldName, Op: OpEqual, Value: "Beta"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-3", out[0].ID)

	out, err = Apply(sampleVisits(), Query{
		FilterBy: []FilterExpr{{Field: FieldEntityRef, Op: OpContains, Value: "default/a"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-2", out[0].ID)
}

func TestApply_FiltersCombineWithAnd(t *testing.T) {
	out, err := Apply(sampleVisits(), Query{
		FilterBy: []FilterExpr{
			{Field: FieldTimestamp, Op: OpGreaterEq, Value: int64(2000)},
			{Field: FieldName, Op: OpContains, Value: "a"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.GreaterOrEqual(t, v.Timestamp, int64(2000))
		assert.Contains(t, v.Name, "a")
	}
}

func TestApply_FilterThenSort(t *testing.T) {
	out, err := Apply(sampleVisits(), Query{
		FilterBy: []FilterExpr{{Field: FieldTimestamp, Op: OpGreater, Value: int64(1000)}},
		OrderBy:  []OrderBy{{Field: FieldHits, Descending: true}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "id-3", out[0].ID)
	assert.Equal(t, "id-1", out[1].ID)
}

func TestApply_StringOrderIsByCodePoint(t *testing.T) {
	in := []Visit{
		{ID: "id-1", Name: "b"},
		{ID: "id-2", Name: "A"},
		{ID: "id-3", Name: "a"},
		{ID: "id-4", Name: "B"},
	}

	out, err := Apply(in, Query{OrderBy: []OrderBy{{Field: FieldName}}})
	require.NoError(t, err)
	// Uppercase code points sort before lowercase; no locale folding.
	assert.Equal(t, []string{"A", "B", "a", "b"}, []string{out[0].Name, out[1].Name, out[2].Name, out[3].Name})
}

func TestApply_RejectsMalformedSpecs(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"unknown filter field", Query{FilterBy: []FilterExpr{{Field: "bogus", Op: OpEqual, Value: "x"}}}},
		{"unknown sort field", Query{OrderBy: []OrderBy{{Field: "bogus"}}}},
		{"unknown operator", Query{FilterBy: []FilterExpr{{Field: FieldName, Op: "!=", Value: "x"}}}},
		{"ordering on string field", Query{FilterBy: []FilterExpr{{Field: FieldName, Op: OpLess, Value: "x"}}}},
		{"contains on numeric field", Query{FilterBy: []FilterExpr{{Field: FieldTimestamp, Op: OpContains, Value: "1"}}}},
		{"string value for numeric field", Query{FilterBy: []FilterExpr{{Field: FieldHits, Op: OpEqual, Value: "3"}}}},
		{"numeric value for string field", Query{FilterBy: []FilterExpr{{Field: FieldName, Op: OpEqual, Value: 3}}}},
		{"contains with numeric value", Query{FilterBy: []FilterExpr{{Field: FieldName, Op: OpContains, Value: 3}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(sampleVisits(), tc.q)
			var qerr *QuerySpecError
			require.ErrorAs(t, err, &qerr)
		})
	}
}

func TestApply_EmptyInput(t *testing.T) {
	out, err := Apply(nil, Query{
		FilterBy: []FilterExpr{{Field: FieldName, Op: OpContains, Value: "x"}},
		OrderBy:  []OrderBy{{Field: FieldName}},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}
