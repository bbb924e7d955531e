package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver([]ColumnMapping{
		{SourceName: "s_suppkey", TargetName: "s_suppkey_t"},
		{SourceName: "S_Address", TargetName: "S_ADDRESS_T"},
	})

	cols := []string{"s_suppkey", "s_address", "s_name"}

	assert.Equal(t, NewColumnSet(cols...), r.Resolve(cols, Source))
	assert.Equal(t, NewColumnSet("s_suppkey_t", "s_address_t", "s_name"), r.Resolve(cols, Target))

	assert.Equal(t, "s_suppkey_t", r.ResolveOne("s_suppkey", Target))
	assert.Equal(t, "s_suppkey", r.ResolveOne("s_suppkey", Source))
	assert.Equal(t, "s_name", r.ResolveOne("s_name", Target))
}

func TestResolver_Reverse(t *testing.T) {
	r := NewResolver([]ColumnMapping{{SourceName: "s_col", TargetName: "t_col"}})

	assert.Equal(t, NewColumnSet("s_col", "other"), r.Reverse([]string{"t_col", "other"}))
	assert.Equal(t, "s_col", r.ReverseOne("t_col", Target))
	assert.Equal(t, "t_col", r.ReverseOne("t_col", Source), "reverse is identity on the source layer")
}

func TestResolver_NoMappings(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "a", r.ResolveOne("a", Target))
	assert.Equal(t, "a", r.ReverseOne("a", Target))
	assert.Empty(t, r.Resolve(nil, Target))
}

// A selected source column is reported under its target name.
func TestTable_SelectColumnsMappedOnTarget(t *testing.T) {
	table := NewTable(TableSpec{
		SourceName:    "supplier",
		TargetName:    "supplier",
		SelectColumns: []string{"s_col"},
		ColumnMapping: []ColumnMapping{{SourceName: "s_col", TargetName: "t_col"}},
	})

	got := table.SelectColumns(nil, Target)
	assert.Equal(t, NewColumnSet("t_col"), got)
}

var nameGen = rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`)

// Round-trip law: resolving a source name to the target side and reversing
// it gives the source name back, and names outside the mapping are fixed
// points in both directions.
func TestResolver_MappingSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfNDistinct(nameGen, 2, 40, rapid.ID[string]).Draw(t, "names")
		half := len(names) / 2
		sources, targets := names[:half], names[half:2*half]

		mappings := make([]ColumnMapping, len(sources))
		for i := range sources {
			mappings[i] = ColumnMapping{SourceName: sources[i], TargetName: targets[i]}
		}
		r := NewResolver(mappings)

		for i, s := range sources {
			tgt := r.ResolveOne(s, Target)
			if tgt != targets[i] {
				t.Fatalf("ResolveOne(%q, target) = %q, want %q", s, tgt, targets[i])
			}
			back := r.Reverse([]string{tgt})
			if !back.Contains(s) || len(back) != 1 {
				t.Fatalf("Reverse(%q) = %v, want {%q}", tgt, back.Sorted(), s)
			}
			if got := r.Resolve(back.Sorted(), Source); !got.Contains(s) || len(got) != 1 {
				t.Fatalf("Resolve(%v, source) = %v", back.Sorted(), got.Sorted())
			}
		}

		mapped := NewColumnSet(names[:2*half]...)
		free := nameGen.Filter(func(s string) bool { return !mapped.Contains(s) }).Draw(t, "free")
		if got := r.ResolveOne(free, Target); got != free {
			t.Fatalf("unmapped %q resolved to %q", free, got)
		}
		if got := r.ReverseOne(free, Target); got != free {
			t.Fatalf("unmapped %q reversed to %q", free, got)
		}
	})
}
