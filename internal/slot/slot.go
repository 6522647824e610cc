package slot

import (
	"strings"
	"time"
)

// DateLayout is the day.month.year format used by the scheduler site.
// Single-digit days and months are accepted when parsing.
const DateLayout = "02.01.2006"

const keyLayout = "2006-01-02"

// Target is one monitored office and calendar
type Target struct {
	Name       string `json:"name" yaml:"name"`
	Office     string `json:"office" yaml:"office"`
	CalendarID string `json:"calendar_id" yaml:"calendar_id"`
}

// Slot is an open appointment date for a target
type Slot struct {
	Target string    `json:"target"`
	Date   time.Time `json:"date"`
	Text   string    `json:"text"` // header text as shown on the page, e.g. "Mo, 15.08.2025"
}

// Key identifies a slot for deduplication
type Key struct {
	Target string
	Date   string
}

// String renders the key as "target|2006-01-02"
func (k Key) String() string {
	return k.Target + "|" + k.Date
}

// Key returns the dedup key of the slot
func (s Slot) Key() Key {
	return Key{Target: s.Target, Date: s.Date.Format(keyLayout)}
}

// New builds a slot from a header text. ok is false when the text holds
// no recognizable date and should be skipped.
func New(target, text string) (Slot, bool) {
	date, ok := ParseDate(text)
	if !ok {
		return Slot{}, false
	}
	return Slot{Target: target, Date: date, Text: strings.TrimSpace(text)}, true
}

// ParseDate extracts the date from header text like "Mo, 15.08.2025".
// An optional weekday label before the last comma is ignored.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if i := strings.LastIndex(text, ","); i >= 0 {
		text = strings.TrimSpace(text[i+1:])
	}

	t, err := time.Parse("2.1.2006", text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
