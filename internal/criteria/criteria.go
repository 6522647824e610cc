// Package criteria decides which appointment slots are urgent.
//
// A Criterion is either a date threshold (the slot must be strictly
// earlier) or a substring that must appear in the slot's header text,
// typically a month such as ".08.2025".
package criteria

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/termin-watch/internal/slot"
)

// Kind selects how a criterion is evaluated
type Kind string

const (
	KindBeforeDate     Kind = "before_date"
	KindMonthSubstring Kind = "month_substring"
)

// Criterion is a single urgency rule
type Criterion struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Value  string `json:"value" yaml:"value"`
	Reason string `json:"reason" yaml:"reason"`
}

// Match pairs a slot with the criterion it satisfied
type Match struct {
	Slot      slot.Slot `json:"slot"`
	Criterion Criterion `json:"criterion"`
}

// BeforeDate builds a threshold criterion from a time value
func BeforeDate(t time.Time, reason string) Criterion {
	return Criterion{Kind: KindBeforeDate, Value: t.Format(slot.DateLayout), Reason: reason}
}

// Validate checks that the criterion can be evaluated
func (c Criterion) Validate() error {
	if strings.TrimSpace(c.Value) == "" {
		return fmt.Errorf("criterion %q: value is required", c.Kind)
	}

	switch c.Kind {
	case KindBeforeDate:
		if _, ok := slot.ParseDate(c.Value); !ok {
			return fmt.Errorf("criterion %q: invalid date %q (want dd.mm.yyyy)", c.Kind, c.Value)
		}
	case KindMonthSubstring:
	default:
		return fmt.Errorf("unknown criterion kind %q", c.Kind)
	}

	return nil
}

// Matches reports whether the slot satisfies the criterion.
// An invalid criterion never matches.
func (c Criterion) Matches(s slot.Slot) bool {
	switch c.Kind {
	case KindBeforeDate:
		threshold, ok := slot.ParseDate(c.Value)
		if !ok {
			return false
		}
		return s.Date.Before(threshold)
	case KindMonthSubstring:
		return c.Value != "" && strings.Contains(s.Text, c.Value)
	default:
		return false
	}
}

// Describe returns a human-readable form of the rule
func (c Criterion) Describe() string {
	if c.Reason != "" {
		return c.Reason
	}
	switch c.Kind {
	case KindBeforeDate:
		return "dates before " + c.Value
	case KindMonthSubstring:
		return "dates containing " + c.Value
	default:
		return string(c.Kind)
	}
}

// Evaluate returns every criterion the slot satisfies, in configuration order
func Evaluate(s slot.Slot, list []Criterion) []Match {
	var matches []Match
	for _, c := range list {
		if c.Matches(s) {
			matches = append(matches, Match{Slot: s, Criterion: c})
		}
	}
	return matches
}
