package accountlist

import "fmt"

// NoSelection is the selected index when nothing is selected.
const NoSelection = -1

// SelectionListener is notified whenever the selected index of a Model
// changes, including changes caused by inserting or removing rows.
type SelectionListener func(index int, adjusting bool)

// Model is an ordered list of entries with a single selection.
//
// Every mutation that moves the selection notifies the listener
// synchronously, before the mutating call returns.
type Model struct {
	entries   []Entry
	selected  int
	adjusting bool
	listener  SelectionListener
}

// NewModel creates an empty model with no selection.
func NewModel() *Model {
	return &Model{selected: NoSelection}
}

// SetListener registers the selection listener, replacing any previous one.
func (m *Model) SetListener(l SelectionListener) {
	m.listener = l
}

// Len returns the number of entries.
func (m *Model) Len() int { return len(m.entries) }

// Selected returns the selected index or NoSelection.
func (m *Model) Selected() int { return m.selected }

// IsAdjusting reports whether the selection is still in flux.
func (m *Model) IsAdjusting() bool { return m.adjusting }

// At returns the entry at index i. It panics if i is out of range.
func (m *Model) At(i int) Entry {
	m.checkIndex(i, len(m.entries))
	return m.entries[i]
}

// Entries returns a copy of the entries in order.
func (m *Model) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Reset replaces all entries and clears the selection.
func (m *Model) Reset(entries []Entry) {
	m.entries = append(m.entries[:0:0], entries...)
	m.adjusting = false
	m.moveSelection(NoSelection)
}

// Insert places e at index i, shifting later entries right.
func (m *Model) Insert(i int, e Entry) {
	m.checkIndex(i, len(m.entries)+1)

	m.entries = append(m.entries, Entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e

	if m.selected != NoSelection && m.selected >= i {
		m.moveSelection(m.selected + 1)
	}
}

// Remove deletes and returns the entry at index i. Removing the selected
// entry clears the selection.
func (m *Model) Remove(i int) Entry {
	m.checkIndex(i, len(m.entries))

	e := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)

	switch {
	case m.selected == i:
		m.moveSelection(NoSelection)
	case m.selected > i:
		m.moveSelection(m.selected - 1)
	}
	return e
}

// Set replaces the entry at index i without touching the selection.
func (m *Model) Set(i int, e Entry) {
	m.checkIndex(i, len(m.entries))
	m.entries[i] = e
}

// SetSelected selects index i, or clears the selection for NoSelection.
// While adjusting is true the selection is considered in flux; the first
// call with adjusting false after that always notifies, even if the index
// did not change.
func (m *Model) SetSelected(i int, adjusting bool) {
	if i != NoSelection {
		m.checkIndex(i, len(m.entries))
	}

	settled := m.adjusting && !adjusting
	m.adjusting = adjusting

	if i == m.selected && !settled {
		return
	}
	m.selected = i
	m.notify()
}

func (m *Model) moveSelection(i int) {
	if i == m.selected {
		return
	}
	m.selected = i
	m.notify()
}

func (m *Model) notify() {
	if m.listener != nil {
		m.listener(m.selected, m.adjusting)
	}
}

func (m *Model) checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("accountlist: index %d out of range [0,%d)", i, n))
	}
}
