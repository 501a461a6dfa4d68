package datalayer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// cells renders a record as key -> cell text for easy comparison.
func cells(r *Record) map[string]string {
	out := make(map[string]string, r.Len())
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out[k] = v.String()
	}
	return out
}

func TestFlatten_FlatInput(t *testing.T) {
	in := MustDecode(`{"title":"Hero","position":2,"visible":true}`)
	got := Flatten(in, "module")

	assert.Equal(t, []string{"module_title", "module_position", "module_visible"}, got.Keys())
	assert.Equal(t, map[string]string{
		"module_title":    "Hero",
		"module_position": "2",
		"module_visible":  "true",
	}, cells(got))
}

func TestFlatten_Nested(t *testing.T) {
	in := MustDecode(`{
		"name": "carousel",
		"element": {"name": "cta", "meta": {"rank": 1, "tags": ["a", "b"]}},
		"empty": {},
		"gone": null
	}`)
	got := Flatten(in, "module")

	want := []string{
		"module_name",
		"module_element_name",
		"module_element_meta_rank",
		"module_element_meta_tags_0",
		"module_element_meta_tags_1",
		"module_gone",
	}
	if diff := cmp.Diff(want, got.Keys()); diff != "" {
		t.Errorf("flattened keys mismatch (-want +got):\n%s", diff)
	}

	gone, ok := got.Get("module_gone")
	assert.True(t, ok, "null must be kept as a leaf")
	assert.True(t, gone.IsNull())
}

func TestFlatten_EveryLeafOnce(t *testing.T) {
	in := MustDecode(`{"a":{"b":{"c":1,"d":[2,3]},"e":4},"f":[{"g":5}]}`)
	got := Flatten(in, "")

	assert.Equal(t, map[string]string{
		"a_b_c":   "1",
		"a_b_d_0": "2",
		"a_b_d_1": "3",
		"a_e":     "4",
		"f_0_g":   "5",
	}, cells(got))
}

func TestFlatten_CollisionLaterWins(t *testing.T) {
	// "a_b" as a literal key collides with the path a -> b.
	in := MustDecode(`{"a_b":"first","a":{"b":"second"}}`)
	got := Flatten(in, "")

	assert.Equal(t, []string{"a_b"}, got.Keys())
	v, _ := got.Get("a_b")
	assert.Equal(t, "second", v.String())
}

func TestFlatten_ScalarAtTop(t *testing.T) {
	got := Flatten(String("hero"), "module")
	assert.Equal(t, map[string]string{"module": "hero"}, cells(got))

	assert.Equal(t, 0, Flatten(String("x"), "").Len())
}
