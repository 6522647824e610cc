package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains the outcome of a sweep
type OutputResult struct {
	CheckedAt  time.Time        `json:"checked_at"`
	Targets    []string         `json:"targets"`
	Matches    []criteria.Match `json:"matches"`
	MatchCount int              `json:"match_count"`
	Failed     []string         `json:"failed,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, target := range result.Failed {
		fmt.Fprintf(w, "WARN: could not check %s\n", target)
	}

	if result.MatchCount == 0 {
		fmt.Fprintln(w, "No urgent dates found.")
		return nil
	}

	for _, m := range result.Matches {
		fmt.Fprintf(w, "NEW (%s): %s\n", m.Slot.Target, m.Slot.Text)
		if verbose {
			fmt.Fprintf(w, "     Date: %s\n", m.Slot.Date.Format("2006-01-02"))
			fmt.Fprintf(w, "     Rule: %s %s\n", m.Criterion.Kind, m.Criterion.Value)
			if m.Criterion.Reason != "" {
				fmt.Fprintf(w, "     Reason: %s\n", m.Criterion.Reason)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d urgent date", result.MatchCount)
	if result.MatchCount != 1 {
		fmt.Fprint(w, "s")
	}
	fmt.Fprintf(w, " across %d target", len(result.Targets))
	if len(result.Targets) != 1 {
		fmt.Fprint(w, "s")
	}
	fmt.Fprintln(w)

	return nil
}
