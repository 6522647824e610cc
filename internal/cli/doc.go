// Package cli implements the command-line interface for termin-watch.
//
// The cli package provides the Cobra-based CLI. By default it monitors the
// appointment scheduler continuously; --report-now sends the daily report
// once and --sweep looks for urgent dates once (or, with --until-found,
// until the first one turns up) and prints them as text or JSON. It wires
// the config, scraper, notifier and monitor packages together.
package cli
