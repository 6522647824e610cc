// Package monitor drives the polling loop.
//
// A Monitor fetches every target one after another, alerts on slots that
// satisfy an urgency criterion and were not alerted before, and sends a
// summary once a day at the configured hour. All state (alerted dates,
// latest dates per target, last report day) belongs to the Monitor and
// lives only as long as the process.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
	"github.com/pfrederiksen/termin-watch/internal/logger"
	"github.com/pfrederiksen/termin-watch/internal/notifier"
	"github.com/pfrederiksen/termin-watch/internal/slot"
	"github.com/pfrederiksen/termin-watch/internal/telegram"
)

const (
	dayLayout       = "2006-01-02"
	shutdownTimeout = 15 * time.Second
)

// Fetcher returns the open slots of one target
type Fetcher interface {
	FetchSlots(ctx context.Context, target slot.Target) ([]slot.Slot, error)
}

// Options configures a Monitor
type Options struct {
	Targets         []slot.Target
	Criteria        []criteria.Criterion
	Interval        time.Duration
	DailyReportHour int
	Location        *time.Location
}

// CheckResult summarizes one poll cycle
type CheckResult struct {
	Slots  int              // slots found across all targets that answered
	Alerts []criteria.Match // matches alerted on in this cycle
	Failed []string         // targets whose fetch failed
}

// Monitor runs the poll and daily report schedule
type Monitor struct {
	fetcher  Fetcher
	notifier notifier.Notifier
	opts     Options

	memory        *slot.Memory
	board         *slot.Board
	lastReportDay string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a monitor. A nil Location means UTC.
func New(fetcher Fetcher, n notifier.Notifier, opts Options) *Monitor {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Monitor{
		fetcher:  fetcher,
		notifier: n,
		opts:     opts,
		memory:   slot.NewMemory(),
		board:    slot.NewBoard(),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Check runs one poll cycle: fetch every target, update the known slots
// and alert on new urgent matches. A target that fails is logged and
// skipped; the remaining targets are still fetched.
func (m *Monitor) Check(ctx context.Context) CheckResult {
	start := m.now()
	logger.Info("Starting scheduled check", logger.Fields{"targets": len(m.opts.Targets)})
	logger.IncrCounter("cycles")

	fresh, failed := m.fetchAll(ctx)

	result := CheckResult{
		Slots:  len(fresh),
		Alerts: m.alertNew(ctx, fresh),
		Failed: failed,
	}

	logger.SetGauge("slots.known", float64(m.board.Len()))
	logger.RecordTiming("cycle", m.now().Sub(start))
	logger.Info("Check finished", logger.Fields{
		"slots":   result.Slots,
		"alerts":  len(result.Alerts),
		"failed":  len(result.Failed),
		"known":   m.board.Len(),
		"alerted": m.memory.Len(),
	})

	return result
}

// fetchAll fetches all targets in order and updates the board with every
// answer. Targets that fail keep their previous board entry.
func (m *Monitor) fetchAll(ctx context.Context) ([]slot.Slot, []string) {
	var fresh []slot.Slot
	var failed []string

	for _, target := range m.opts.Targets {
		if ctx.Err() != nil {
			failed = append(failed, target.Name)
			continue
		}

		slots, err := m.fetcher.FetchSlots(ctx, target)
		if err != nil {
			logger.Error("Network error while checking target, skipping", logger.Fields{"target": target.Name}, err)
			logger.IncrCounter("fetch.errors")
			failed = append(failed, target.Name)
			continue
		}

		logger.Debug("Fetched slots", logger.Fields{"target": target.Name, "slots": len(slots)})
		logger.AddCounter("slots.found", int64(len(slots)))
		m.board.Update(target.Name, slots)
		fresh = append(fresh, slots...)
	}

	return fresh, failed
}

// alertNew sends one urgent notification per slot key that matches a
// criterion and was never alerted before. The key is recorded whether or
// not delivery succeeded.
func (m *Monitor) alertNew(ctx context.Context, slots []slot.Slot) []criteria.Match {
	var alerts []criteria.Match

	for _, s := range slots {
		for _, match := range criteria.Evaluate(s, m.opts.Criteria) {
			key := s.Key()
			if !m.memory.IsNew(key) {
				continue
			}

			logger.Warn("New urgent date found", logger.Fields{
				"target": s.Target,
				"date":   s.Text,
				"reason": match.Criterion.Describe(),
			})

			m.notify(ctx, notifier.Message{
				Kind:  notifier.KindUrgent,
				Text:  telegram.FormatUrgent(match),
				Match: &match,
			})
			m.memory.Record(key)
			alerts = append(alerts, match)
		}
	}

	return alerts
}

func (m *Monitor) notify(ctx context.Context, msg notifier.Message) {
	if err := m.notifier.Notify(ctx, msg); err != nil {
		logger.Error("Notification delivery failed", logger.Fields{"kind": string(msg.Kind)}, err)
		logger.IncrCounter("notify.errors")
		return
	}
	logger.IncrCounter("notify.sent")
	if msg.Kind == notifier.KindUrgent {
		logger.IncrCounter("alerts.sent")
	}
}

// DailyReportDue reports whether the daily summary should go out at t:
// the local hour equals the configured hour and no report was sent on
// that calendar day yet.
func (m *Monitor) DailyReportDue(t time.Time) bool {
	local := t.In(m.opts.Location)
	return local.Hour() == m.opts.DailyReportHour && local.Format(dayLayout) != m.lastReportDay
}

// MaybeSendDailyReport sends the daily summary if it is due and reports
// whether it did.
func (m *Monitor) MaybeSendDailyReport(ctx context.Context) bool {
	now := m.now()
	if !m.DailyReportDue(now) {
		return false
	}

	m.SendDailyReport(ctx)
	m.lastReportDay = now.In(m.opts.Location).Format(dayLayout)
	return true
}

// SendDailyReport sends the summary of all known slots, nearest first,
// and logs the metrics gathered so far.
func (m *Monitor) SendDailyReport(ctx context.Context) {
	slots := m.board.All()
	logger.Info("Sending daily report", logger.Fields{"slots": len(slots)})

	var nearest *slot.Slot
	if s, ok := m.board.Nearest(); ok {
		nearest = &s
	}

	m.notify(ctx, notifier.Message{
		Kind: notifier.KindDaily,
		Text: telegram.FormatDailyReport(nearest, slots, m.opts.DailyReportHour, m.opts.Location.String()),
	})

	logger.Info("Metrics snapshot", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
}

// Report fetches every target once and sends the daily summary right away
func (m *Monitor) Report(ctx context.Context) CheckResult {
	fresh, failed := m.fetchAll(ctx)
	m.SendDailyReport(ctx)
	return CheckResult{Slots: len(fresh), Failed: failed}
}

// Sweep looks for urgent dates once and returns the result of that
// check, new matches and failed targets included. With untilFound it
// keeps polling at the configured interval until at least one match
// turns up or ctx is cancelled.
func (m *Monitor) Sweep(ctx context.Context, untilFound bool) (CheckResult, error) {
	for {
		result := m.Check(ctx)
		if len(result.Alerts) > 0 || !untilFound {
			return result, nil
		}

		logger.Info("No urgent dates yet, waiting", logger.Fields{"interval": m.opts.Interval.String()})
		if err := m.sleep(ctx, m.opts.Interval); err != nil {
			return result, err
		}
	}
}

// Run announces the start, checks immediately and then keeps polling
// every interval until ctx is cancelled, sending the daily report when it
// is due. A shutdown notification goes out on every exit; a panic is
// reported as a crash and returned as an error.
func (m *Monitor) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor panic: %v", r)
		}
		m.shutdown(err)
	}()

	m.notify(ctx, notifier.Message{
		Kind: notifier.KindStatus,
		Text: telegram.FormatStartup(m.opts.Targets, m.opts.Criteria, m.opts.DailyReportHour, m.opts.Location.String()),
	})

	m.Check(ctx)

	for {
		m.MaybeSendDailyReport(ctx)

		logger.Info("Next check scheduled", logger.Fields{"in": m.opts.Interval.String()})
		if err := m.sleep(ctx, m.opts.Interval); err != nil {
			logger.Info("Monitor stopped", logger.Fields{"reason": err.Error()})
			return nil
		}

		m.Check(ctx)
	}
}

// shutdown sends the crash and stop messages. ctx may already be
// cancelled at this point, so a fresh one is used.
func (m *Monitor) shutdown(cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if cause != nil {
		logger.Error("Monitor terminated abnormally", nil, cause)
		m.notify(ctx, notifier.Message{Kind: notifier.KindStatus, Text: telegram.FormatCrash(cause)})
	}
	m.notify(ctx, notifier.Message{Kind: notifier.KindStatus, Text: telegram.FormatShutdown()})

	logger.Info("Final metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
}
