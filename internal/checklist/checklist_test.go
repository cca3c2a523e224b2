package checklist

import (
	"reflect"
	"testing"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{"empty", nil},
		{"single", []string{"salt"}},
		{"ordered", []string{"200g spaghetti", "2 cups tomato sauce", "2 cloves garlic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Initialize(tt.labels)
			if len(entries) != len(tt.labels) {
				t.Fatalf("expected %d entries, got %d", len(tt.labels), len(entries))
			}
			for i, e := range entries {
				if e.Label != tt.labels[i] {
					t.Errorf("entry %d: got label %q, want %q", i, e.Label, tt.labels[i])
				}
				if e.Checked {
					t.Errorf("entry %d: expected unchecked", i)
				}
			}
		})
	}
}

func TestToggleScenario(t *testing.T) {
	entries := Initialize([]string{"egg", "flour"})

	want := []Entry{{ID: "1", Label: "egg"}, {ID: "2", Label: "flour"}}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("initialize: got %+v, want %+v", entries, want)
	}

	toggled := Toggle(entries, "1")
	want = []Entry{{ID: "1", Label: "egg", Checked: true}, {ID: "2", Label: "flour"}}
	if !reflect.DeepEqual(toggled, want) {
		t.Fatalf("toggle: got %+v, want %+v", toggled, want)
	}

	// The input must not be mutated.
	if entries[0].Checked {
		t.Fatal("toggle mutated its input")
	}
}

func TestToggleFlipsExactlyOne(t *testing.T) {
	entries := Initialize([]string{"a", "b", "c", "d"})
	entries = Toggle(entries, "3")

	for _, id := range []string{"1", "2", "3", "4"} {
		t.Run(id, func(t *testing.T) {
			out := Toggle(entries, id)
			if len(out) != len(entries) {
				t.Fatalf("length changed: %d -> %d", len(entries), len(out))
			}
			diff := 0
			for i := range out {
				if out[i].ID != entries[i].ID || out[i].Label != entries[i].Label {
					t.Fatalf("order changed at %d", i)
				}
				if out[i].Checked != entries[i].Checked {
					diff++
				}
			}
			if diff != 1 {
				t.Fatalf("expected exactly one flag flipped, got %d", diff)
			}
		})
	}
}

func TestToggleUnknownID(t *testing.T) {
	entries := Initialize([]string{"egg", "flour"})
	out := Toggle(entries, "nope")
	if !reflect.DeepEqual(out, entries) {
		t.Fatalf("expected unchanged entries, got %+v", out)
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	entries := Toggle(Initialize([]string{"x", "y", "z"}), "2")

	for _, id := range []string{"1", "2", "3", "missing"} {
		t.Run(id, func(t *testing.T) {
			out := Toggle(Toggle(entries, id), id)
			if !reflect.DeepEqual(out, entries) {
				t.Fatalf("toggle twice: got %+v, want %+v", out, entries)
			}
		})
	}
}

func TestCount(t *testing.T) {
	entries := Initialize([]string{"a", "b", "c"})
	entries = Toggle(entries, "1")
	entries = Toggle(entries, "3")

	checked, total := Count(entries)
	if checked != 2 || total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", checked, total)
	}
}
