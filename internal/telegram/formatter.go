package telegram

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
	"github.com/pfrederiksen/termin-watch/internal/slot"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes text safe to embed in a legacy Markdown message
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// code wraps text in an inline code span. Backticks cannot be escaped
// inside a span, so they are dropped.
func code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "") + "`"
}

// FormatUrgent formats an alert for a newly found slot
func FormatUrgent(m criteria.Match) string {
	var msg strings.Builder

	msg.WriteString("🚨 *New appointment date found!* 🚨\n\n")
	msg.WriteString(fmt.Sprintf("📍 Office: *%s*\n", escape(m.Slot.Target)))
	msg.WriteString(fmt.Sprintf("🗓️ Date: %s\n", code(m.Slot.Text)))
	msg.WriteString(fmt.Sprintf("📌 Reason: %s", escape(m.Criterion.Describe())))

	return msg.String()
}

// FormatDailyReport formats the daily summary. nearest is the earliest
// known slot, nil when none is known. slots are listed per target in the
// order they are given.
func FormatDailyReport(nearest *slot.Slot, slots []slot.Slot, hour int, zone string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("📊 *Daily report (%02d:00 %s)*\n\n", hour, escape(zone)))

	if nearest == nil {
		msg.WriteString("No available dates found at the moment.")
		return msg.String()
	}

	msg.WriteString(fmt.Sprintf("⏩ Nearest date: %s (*%s*)\n", code(nearest.Text), escape(nearest.Target)))

	// Group by target, keeping the order in which targets first appear
	order := make([]string, 0)
	byTarget := make(map[string][]slot.Slot)
	for _, s := range slots {
		if _, ok := byTarget[s.Target]; !ok {
			order = append(order, s.Target)
		}
		byTarget[s.Target] = append(byTarget[s.Target], s)
	}

	for _, target := range order {
		targetSlots := byTarget[target]
		msg.WriteString(fmt.Sprintf("\n*%s* (%d date%s):\n", escape(strings.ToUpper(target)), len(targetSlots), pluralize(len(targetSlots))))
		for _, s := range targetSlots {
			msg.WriteString(fmt.Sprintf("  - %s\n", code(s.Text)))
		}
	}

	return strings.TrimRight(msg.String(), "\n")
}

// FormatStartup formats the message sent when monitoring starts
func FormatStartup(targets []slot.Target, rules []criteria.Criterion, hour int, zone string) string {
	var msg strings.Builder

	msg.WriteString("✅ *Bot started.*\n")

	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, escape(t.Name))
	}
	msg.WriteString(fmt.Sprintf("- Offices: %s\n", strings.Join(names, ", ")))

	for _, c := range rules {
		msg.WriteString(fmt.Sprintf("- Urgent alerts: %s\n", escape(c.Describe())))
	}

	msg.WriteString(fmt.Sprintf("- Daily report: at %02d:00 %s", hour, escape(zone)))

	return msg.String()
}

// FormatShutdown formats the message sent when monitoring stops
func FormatShutdown() string {
	return "⏹️ *Bot stopped*."
}

// FormatCrash formats the message sent when monitoring ends with an error
func FormatCrash(err error) string {
	return fmt.Sprintf("❌ *Critical error!* The bot terminated abnormally.\n\n*Error:* %s", code(err.Error()))
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
