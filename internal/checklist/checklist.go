// Package checklist holds the per-screen ingredient checklist. Entries are
// derived from a recipe's ingredient labels every time the recipe is loaded
// and are never persisted.
package checklist

import "strconv"

// Entry is one ingredient line on the detail screen.
type Entry struct {
	ID      string
	Label   string
	Checked bool
}

// Initialize builds one unchecked entry per label, preserving order.
// Entry IDs are the 1-based position of the label.
func Initialize(labels []string) []Entry {
	entries := make([]Entry, len(labels))
	for i, label := range labels {
		entries[i] = Entry{ID: strconv.Itoa(i + 1), Label: label}
	}
	return entries
}

// Toggle returns a copy of entries with the checked flag of the entry
// matching targetID inverted. If nothing matches, entries is returned as is.
func Toggle(entries []Entry, targetID string) []Entry {
	idx := -1
	for i := range entries {
		if entries[i].ID == targetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entries
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	out[idx].Checked = !out[idx].Checked
	return out
}

// Count returns how many entries are checked and the total.
func Count(entries []Entry) (checked, total int) {
	for _, e := range entries {
		if e.Checked {
			checked++
		}
	}
	return checked, len(entries)
}
