package dispatch

import (
	"sort"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Table holds the bindings of every mode, keyed by input.
// A table is immutable once handed to a Dispatcher.
type Table struct {
	modes map[string]map[event.Key][]*Binding
}

func NewTable() *Table {
	return &Table{modes: make(map[string]map[event.Key][]*Binding)}
}

// Add appends b to the bindings of its input in mode
func (t *Table) Add(mode string, b *Binding) {
	if t.modes[mode] == nil {
		t.modes[mode] = make(map[event.Key][]*Binding)
	}
	t.modes[mode][b.Input] = append(t.modes[mode][b.Input], b)
}

// Lookup returns the bindings of the first mode in lineage that binds key.
// A mode therefore overrides whatever its parents bind to the same input.
func (t *Table) Lookup(lineage []string, key event.Key) []*Binding {
	for _, mode := range lineage {
		if bs, ok := t.modes[mode][key]; ok {
			return bs
		}
	}
	return nil
}

// Bindings returns every binding of mode
func (t *Table) Bindings(mode string) []*Binding {
	var out []*Binding
	for _, bs := range t.modes[mode] {
		out = append(out, bs...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Input.String() < out[j].Input.String()
	})
	return out
}

// Modes lists the modes with at least one binding
func (t *Table) Modes() []string {
	out := make([]string, 0, len(t.modes))
	for m := range t.modes {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Len counts the bindings over all modes
func (t *Table) Len() int {
	n := 0
	for _, keys := range t.modes {
		for _, bs := range keys {
			n += len(bs)
		}
	}
	return n
}
