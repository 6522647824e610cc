package slot

import "sort"

// Memory remembers the slots that were already alerted on.
// It only grows; entries live as long as the process.
type Memory struct {
	seen map[Key]struct{}
}

// NewMemory creates an empty memory
func NewMemory() *Memory {
	return &Memory{seen: make(map[Key]struct{})}
}

// IsNew reports whether no alert was recorded for the key yet
func (m *Memory) IsNew(k Key) bool {
	_, ok := m.seen[k]
	return !ok
}

// Record marks the key as alerted
func (m *Memory) Record(k Key) {
	m.seen[k] = struct{}{}
}

// Len returns the number of recorded keys
func (m *Memory) Len() int {
	return len(m.seen)
}

// Board holds the most recent slots reported for each target
type Board struct {
	byTarget map[string][]Slot
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{byTarget: make(map[string][]Slot)}
}

// Update replaces the known slots of one target. Targets that are not
// updated keep whatever they had before.
func (b *Board) Update(target string, slots []Slot) {
	cp := make([]Slot, len(slots))
	copy(cp, slots)
	b.byTarget[target] = cp
}

// All returns every known slot sorted by date, then target
func (b *Board) All() []Slot {
	all := make([]Slot, 0)
	for _, slots := range b.byTarget {
		all = append(all, slots...)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].Target < all[j].Target
	})

	return all
}

// Nearest returns the earliest known slot across all targets
func (b *Board) Nearest() (Slot, bool) {
	all := b.All()
	if len(all) == 0 {
		return Slot{}, false
	}
	return all[0], true
}

// Len returns the number of known slots
func (b *Board) Len() int {
	n := 0
	for _, slots := range b.byTarget {
		n += len(slots)
	}
	return n
}
