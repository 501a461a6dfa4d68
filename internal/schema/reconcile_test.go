package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/datalayer/internal/datalayer"
)

func record(pairs ...string) *datalayer.Record {
	r := datalayer.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], datalayer.String(pairs[i+1]))
	}
	return r
}

func TestReconcile_ImpressionAndInteraction(t *testing.T) {
	records := []*datalayer.Record{
		record("event", "moduleImpression", "module_title", "Hero"),
		record("event", "moduleInteraction", "module_title", "Hero", "module_element_name", "cta"),
	}

	table := Reconcile(records)

	want := []string{"index", "event", "module_title", "module_element_name"}
	if diff := cmp.Diff(want, table.Header.Keys()); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Index", table.Header[0].Title)
	assert.Equal(t, "module_title", table.Header[2].Title)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "moduleImpression", "Hero", ""}, table.Rows[0].Strings())
	assert.Equal(t, []string{"2", "moduleInteraction", "Hero", "cta"}, table.Rows[1].Strings())

	v, ok := table.Get(table.Rows[0], "module_element_name")
	require.True(t, ok)
	assert.Equal(t, datalayer.KindString, v.Kind(), "missing keys are filled with an empty string, not null")
}

func TestReconcile_Uniformity(t *testing.T) {
	records := []*datalayer.Record{
		record("a", "1"),
		record("b", "2", "a", "3"),
		record("c", "4"),
		record(),
	}

	table := Reconcile(records)
	assert.Equal(t, []string{"index", "a", "b", "c"}, table.Header.Keys())
	require.Len(t, table.Rows, len(records))

	for i, row := range table.Rows {
		assert.Equal(t, i+1, row.Index)
		assert.Len(t, row.Values, len(table.Header)-1)
	}
	assert.Equal(t, []string{"2", "3", "2", ""}, table.Rows[1].Strings())
	assert.Equal(t, []string{"4", "", "", ""}, table.Rows[3].Strings())
}

func TestReconcile_KeepsScalarTypes(t *testing.T) {
	r := datalayer.NewRecord()
	r.Set("n", datalayer.Number("0"))
	r.Set("b", datalayer.Bool(false))
	r.Set("z", datalayer.Null())

	table := Reconcile([]*datalayer.Record{r})
	// Falsy values are real values and must not be blanked.
	assert.Equal(t, []string{"1", "0", "false", ""}, table.Rows[0].Strings())

	z, _ := table.Get(table.Rows[0], "z")
	assert.True(t, z.IsNull())
}

func TestReconcile_Empty(t *testing.T) {
	table := Reconcile(nil)
	assert.Equal(t, []string{"index"}, table.Header.Keys())
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Columns())
}

func TestReconcile_IndexKeyIsReserved(t *testing.T) {
	table := Reconcile([]*datalayer.Record{record("index", "99", "x", "y")})
	assert.Equal(t, []string{"index", "x"}, table.Header.Keys())
	assert.Equal(t, []string{"1", "y"}, table.Rows[0].Strings())
}
