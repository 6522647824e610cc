package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/termin-watch/internal/config"
	"github.com/pfrederiksen/termin-watch/internal/logger"
	"github.com/pfrederiksen/termin-watch/internal/monitor"
	"github.com/pfrederiksen/termin-watch/internal/notifier"
	"github.com/pfrederiksen/termin-watch/internal/scraper"
	"github.com/pfrederiksen/termin-watch/internal/telegram"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitUrgentFound = 2
)

var (
	// ErrUrgentFound is returned by a sweep that found urgent dates.
	// Execute turns it into ExitUrgentFound.
	ErrUrgentFound = errors.New("urgent dates found")

	// ErrNoTargetChecked is returned by a sweep in which every target
	// failed, so the absence of matches means nothing.
	ErrNoTargetChecked = errors.New("no target could be checked")
)

var (
	flagConfig     string
	flagEnvFile    string
	flagFormat     string
	flagSort       string
	flagLogFile    string
	flagLogLevel   string
	flagDryRun     bool
	flagReportNow  bool
	flagSweep      bool
	flagUntilFound bool
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "termin-watch",
		Short: "Watch a visa appointment scheduler for open dates",
		Long: `A monitor for the visa appointment scheduler.
Polls the calendars of the configured offices, alerts on new dates that
match the urgency criteria and sends a daily summary to Telegram.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file (built-in defaults if empty)")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "Path to .env file with secrets")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Sweep output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sweep output order: date or target")
	cmd.Flags().StringVar(&flagLogFile, "log-file", "", "Log file path (overrides config)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print notifications instead of sending them")
	cmd.Flags().BoolVar(&flagReportNow, "report-now", false, "Send the daily report immediately and exit")
	cmd.Flags().BoolVar(&flagSweep, "sweep", false, "Check once for urgent dates and exit (exit code 2 if found)")
	cmd.Flags().BoolVar(&flagUntilFound, "until-found", false, "With --sweep, keep polling until an urgent date is found")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and output")

	cmd.MarkFlagsMutuallyExclusive("report-now", "sweep")

	return cmd
}

// runRoot is the main command logic
func runRoot(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	sortOrder := SortOrder(strings.ToLower(flagSort))
	if sortOrder != SortByDate && sortOrder != SortByTarget {
		return fmt.Errorf("invalid sort order: %s (must be 'date' or 'target')", flagSort)
	}

	if flagUntilFound && !flagSweep {
		return fmt.Errorf("--until-found requires --sweep")
	}

	if err := config.LoadEnvFile(flagEnvFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := buildNotifier(cfg, flagDryRun, cmd.OutOrStdout())

	sc, err := scraper.New(scraper.Options{
		URL:      cfg.SchedulerURL,
		Language: cfg.Language,
		Timeout:  cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	logger.Info("Initializing session", logger.Fields{"url": cfg.SchedulerURL})
	if err := sc.Init(ctx); err != nil {
		err = fmt.Errorf("initializing session: %w", err)
		if !flagSweep && !flagReportNow {
			notifyStartupFailure(sink, err)
		}
		return err
	}

	mon := monitor.New(sc, sink, monitor.Options{
		Targets:         cfg.Targets,
		Criteria:        cfg.Criteria,
		Interval:        cfg.CheckInterval,
		DailyReportHour: cfg.DailyReportHour,
		Location:        loc,
	})

	switch {
	case flagReportNow:
		result := mon.Report(ctx)
		if len(result.Failed) > 0 {
			logger.Warn("Report sent with targets missing", logger.Fields{"failed": result.Failed})
		}
		return nil

	case flagSweep:
		return runSweep(ctx, cmd.OutOrStdout(), mon, cfg, format, sortOrder)

	default:
		return mon.Run(ctx)
	}
}

// notifyStartupFailure sends the crash notice for a monitor that never
// started. Delivery failures are logged, there is nothing else to do.
func notifyStartupFailure(sink notifier.Notifier, cause error) {
	msg := notifier.Message{Kind: notifier.KindStatus, Text: telegram.FormatCrash(cause)}
	if err := sink.Notify(context.Background(), msg); err != nil {
		logger.Error("Crash notification delivery failed", logger.Fields{"kind": string(msg.Kind)}, err)
	}
}

func runSweep(ctx context.Context, w io.Writer, mon *monitor.Monitor, cfg *config.Config, format OutputFormat, sortOrder SortOrder) error {
	check, err := mon.Sweep(ctx, flagUntilFound)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	matches := check.Alerts
	sortMatches(matches, sortOrder)

	targets := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, t.Name)
	}

	result := &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Targets:    targets,
		Matches:    matches,
		MatchCount: len(matches),
		Failed:     check.Failed,
	}

	if err := WriteOutput(w, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(matches) > 0 {
		return ErrUrgentFound
	}
	if len(check.Failed) > 0 && len(check.Failed) == len(cfg.Targets) {
		return fmt.Errorf("%w: %s", ErrNoTargetChecked, strings.Join(check.Failed, ", "))
	}
	return nil
}

// setupLogging installs the process logger. Flags override the config file.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	levelName := cfg.LogLevel
	if flagLogLevel != "" {
		levelName = flagLogLevel
	}
	if flagVerbose {
		levelName = "debug"
	}

	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	file := cfg.LogFile
	if flagLogFile != "" {
		file = flagLogFile
	}

	return logger.Setup(logger.Options{Level: level, File: file, Console: true})
}

// buildNotifier assembles the configured sinks. Without any credentials
// messages are only logged so monitoring still works.
func buildNotifier(cfg *config.Config, dryRun bool, out io.Writer) notifier.Notifier {
	if dryRun {
		return notifier.NewDryRunNotifier(out)
	}

	var sinks notifier.Multi

	tg, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatIDs)
	if err != nil {
		logger.Warn("Telegram is not configured", logger.Fields{"reason": err.Error()})
	} else {
		logger.Info("Telegram notifications enabled", logger.Fields{"chats": len(tg.ChatIDs())})
		sinks = append(sinks, tg)
	}

	if cfg.Twitter.Complete() {
		tw, err := notifier.NewTwitterNotifier(cfg.Twitter)
		if err != nil {
			logger.Warn("Twitter is not configured", logger.Fields{"reason": err.Error()})
		} else {
			sinks = append(sinks, tw)
		}
	}

	if len(sinks) == 0 {
		return notifier.LogNotifier{}
	}
	return sinks
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, ErrUrgentFound):
		os.Exit(ExitUrgentFound)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
