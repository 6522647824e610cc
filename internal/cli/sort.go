package cli

import (
	"sort"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByTarget SortOrder = "target"
)

// sortMatches sorts matches based on the specified sort order
func sortMatches(matches []criteria.Match, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(matches, func(i, j int) bool {
			return compareByDate(matches[i], matches[j])
		})
	case SortByTarget:
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Slot.Target != matches[j].Slot.Target {
				return matches[i].Slot.Target < matches[j].Slot.Target
			}
			// If targets are equal, sort by date
			return compareByDate(matches[i], matches[j])
		})
	}
}

// compareByDate returns true if match i should come before match j
func compareByDate(i, j criteria.Match) bool {
	if !i.Slot.Date.Equal(j.Slot.Date) {
		return i.Slot.Date.Before(j.Slot.Date)
	}
	return i.Slot.Target < j.Slot.Target
}
