package merge

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return v
}

func TestApplyScalarFieldsOverride(t *testing.T) {
	base := decode(t, `{"titel":"alt","wahlperiode":20,"verfassungsaendernd":false}`)
	overlay := decode(t, `{"titel":"neu"}`)
	got := Apply(base, overlay)
	want := decode(t, `{"titel":"neu","wahlperiode":20,"verfassungsaendernd":false}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyNestedObjectIsPatchedNotReplaced(t *testing.T) {
	base := decode(t, `{"gremium":{"name":"Innenausschuss","parlament":"BB","wahlperiode":20}}`)
	overlay := decode(t, `{"gremium":{"name":"Rechtsausschuss"}}`)
	got := Apply(base, overlay)
	want := decode(t, `{"gremium":{"name":"Rechtsausschuss","parlament":"BB","wahlperiode":20}}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyEmptyOverlayObjectKeepsBase(t *testing.T) {
	base := decode(t, `{"a":1,"b":[1,2]}`)
	got := Apply(base, decode(t, `{}`))
	if !reflect.DeepEqual(got, base) {
		t.Fatalf("empty overlay should keep base: want=%v got=%v", base, got)
	}
}

func TestApplyAbsentArrayFieldPassesThrough(t *testing.T) {
	base := decode(t, `{"stationen":[{"typ":"parl-initiativ"}],"titel":"x"}`)
	overlay := decode(t, `{"titel":"y"}`)
	got := Apply(base, overlay)
	want := decode(t, `{"stationen":[{"typ":"parl-initiativ"}],"titel":"y"}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyEmptyOverlayArrayClears(t *testing.T) {
	base := decode(t, `{"links":["a","b"]}`)
	overlay := decode(t, `{"links":[]}`)
	got := Apply(base, overlay)
	want := decode(t, `{"links":[]}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyArrayElisionScalars(t *testing.T) {
	base := decode(t, `[1,2,3]`)
	overlay := decode(t, `[null,null,1]`)
	got := Apply(base, overlay)
	want := decode(t, `[1]`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyArrayElisionObjects(t *testing.T) {
	base := decode(t, `[{"x":4,"y":8},{"x":1,"y":2},{"x":9,"y":9}]`)
	overlay := decode(t, `[null,{"y":15},null,{"x":15,"y":23}]`)
	got := Apply(base, overlay)
	want := decode(t, `[{"x":1,"y":15},{"x":15,"y":23}]`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyEmptyObjectElementKeepsBaseElement(t *testing.T) {
	base := decode(t, `[{"x":4},{"x":5}]`)
	overlay := decode(t, `[{},{"x":6}]`)
	got := Apply(base, overlay)
	want := decode(t, `[{"x":4},{"x":6}]`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyShortOverlayKeepsBaseTail(t *testing.T) {
	base := decode(t, `[1,2,3,4]`)
	overlay := decode(t, `[9]`)
	got := Apply(base, overlay)
	want := decode(t, `[9,2,3,4]`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyOverlayLongerThanBaseAppends(t *testing.T) {
	base := decode(t, `[{"x":1}]`)
	overlay := decode(t, `[{"y":2},{"x":3},{"x":4}]`)
	got := Apply(base, overlay)
	want := decode(t, `[{"x":1,"y":2},{"x":3},{"x":4}]`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyTypeMismatchOverlayWins(t *testing.T) {
	base := decode(t, `{"a":[1,2]}`)
	overlay := decode(t, `{"a":"s"}`)
	got := Apply(base, overlay)
	want := decode(t, `{"a":"s"}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyExplicitNullOverridesScalar(t *testing.T) {
	base := decode(t, `{"kurztitel":"kurz"}`)
	overlay := decode(t, `{"kurztitel":null}`)
	got := Apply(base, overlay)
	want := decode(t, `{"kurztitel":null}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge result: want=%v got=%v", want, got)
	}
}

func TestApplyDisjointOverlaysAssociate(t *testing.T) {
	cases := []struct {
		name    string
		base    string
		ovA     string
		ovB     string
		unioned string
	}{
		{
			name:    "flat scalars",
			base:    `{"a":1,"b":2,"c":3}`,
			ovA:     `{"a":10}`,
			ovB:     `{"b":20}`,
			unioned: `{"a":10,"b":20}`,
		},
		{
			name:    "nested objects",
			base:    `{"gremium":{"name":"alt","wahlperiode":20},"titel":"x"}`,
			ovA:     `{"gremium":{"name":"neu"}}`,
			ovB:     `{"titel":"y"}`,
			unioned: `{"gremium":{"name":"neu"},"titel":"y"}`,
		},
		{
			name:    "array next to scalar",
			base:    `{"links":["a","b"],"kurztitel":"k"}`,
			ovA:     `{"links":["c"]}`,
			ovB:     `{"kurztitel":"kk"}`,
			unioned: `{"links":["c"],"kurztitel":"kk"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := decode(t, tc.base)
			sequential := Apply(Apply(base, decode(t, tc.ovA)), decode(t, tc.ovB))
			union := Apply(base, decode(t, tc.unioned))
			if !reflect.DeepEqual(sequential, union) {
				t.Fatalf("disjoint overlays should commute with their union: seq=%v union=%v", sequential, union)
			}
		})
	}
}

func TestApplyDoesNotMutateInputs(t *testing.T) {
	base := decode(t, `{"a":{"b":[1,2]}}`)
	overlay := decode(t, `{"a":{"b":[null,3]}}`)
	baseCopy := decode(t, `{"a":{"b":[1,2]}}`)
	overlayCopy := decode(t, `{"a":{"b":[null,3]}}`)
	_ = Apply(base, overlay)
	if !reflect.DeepEqual(base, baseCopy) {
		t.Fatalf("base mutated: %v", base)
	}
	if !reflect.DeepEqual(overlay, overlayCopy) {
		t.Fatalf("overlay mutated: %v", overlay)
	}
}
