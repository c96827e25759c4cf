package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbellini/effwatch/internal/aggregate"
	"github.com/mbellini/effwatch/internal/collector"
	"github.com/mbellini/effwatch/internal/compare"
	"github.com/mbellini/effwatch/internal/config"
	"github.com/mbellini/effwatch/internal/domain"
	"github.com/mbellini/effwatch/internal/narrative"
	"github.com/mbellini/effwatch/internal/normalize"
	"github.com/mbellini/effwatch/internal/notify"
	"github.com/mbellini/effwatch/internal/report"
	"github.com/mbellini/effwatch/internal/store"
	"github.com/mbellini/effwatch/internal/telemetry"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an efficiency report",
	Long: `Generate an efficiency report for a day, a week, or a custom range.

Examples:
  effwatch report                                # this week
  effwatch report --period day                   # today
  effwatch report --start 2024-01-01 --end 2024-01-07
  effwatch report --no-ai                        # statistics only`,
	RunE: runReport,
}

var (
	reportPeriod string
	reportStart  string
	reportEnd    string
	reportNoAI   bool
	reportConfig string
)

func init() {
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "week", "Report period: day or week")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Start date (YYYY-MM-DD) for a custom period")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "End date (YYYY-MM-DD) for a custom period")
	reportCmd.Flags().BoolVar(&reportNoAI, "no-ai", false, "Skip the AI analysis section")
	reportCmd.Flags().StringVar(&reportConfig, "config", "config.yaml", "Config file path")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	started := time.Now()
	console := report.NewConsole(os.Stdout)

	cfg, err := config.Load(reportConfig)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(reportConfig); os.IsNotExist(statErr) {
		console.Warn(fmt.Sprintf("config file %s not found, using defaults", reportConfig))
	}

	// Date validation happens before any network call.
	period, err := resolvePeriod(time.Now())
	if err != nil {
		return err
	}

	console.Header()
	console.Periodf(period)

	client := collector.NewClient(cfg.ActivityWatch.Host, cfg.ActivityWatch.Timeout())

	console.Step("collecting events")
	snap, collectErr := client.CollectAll(ctx, period, cfg.EditorWatchers)
	warning := ""
	if collectErr != nil {
		// Degrade, do not abort: the report still distinguishes
		// "measured zero usage" from "measurement failed".
		warning = fmt.Sprintf("data collection failed (%v); report covers partial or no data", collectErr)
		console.Warn(warning)
	} else {
		console.Buckets(snap.Buckets)
	}

	console.Step("processing events")
	activities, diag := normalize.Normalize(snap.Events(), cfg.Categories)
	agg := aggregate.Aggregate(activities, period)
	agg.EventCounts = snap.Counts()
	console.Summary(agg)

	snapshots := openStore(cfg, console)
	if snapshots != nil {
		defer snapshots.Close()
		if err := snapshots.Save(ctx, agg); err != nil {
			console.Warn(fmt.Sprintf("saving snapshot: %v", err))
		}
	}

	cmpResult := buildComparison(ctx, cfg, client, snapshots, agg, console)

	narrativeText := ""
	if reportNoAI {
		console.Step("AI analysis skipped")
	} else {
		console.Step("requesting AI analysis")
		narrativeText = runNarrative(ctx, cfg, agg, cmpResult, console)
	}

	doc := report.Assemble(report.Input{
		Aggregation: agg,
		Comparison:  cmpResult,
		Narrative:   narrativeText,
		Warning:     warning,
		Diagnostics: diagnosticsLine(diag),
		GeneratedAt: time.Now(),
	})

	path, err := report.NewWriter(cfg.Output.ReportsDir).Save(doc)
	if err != nil {
		return err
	}
	console.Saved(path)

	if notifiers := cfg.Notifiers(); len(notifiers) > 0 {
		console.Step("dispatching notifications")
		notify.Dispatch(ctx, notifiers, doc.Title, doc.Markdown)
	}

	exportRunMetrics(ctx, cfg, telemetry.RunMetrics{
		Period:         period,
		EventsFetched:  len(snap.Events()),
		EventsDropped:  diag.Dropped,
		ActiveDuration: agg.ActiveDuration,
		TotalDuration:  agg.TotalDuration,
		RunDuration:    time.Since(started),
	})

	return nil
}

// resolvePeriod maps the CLI flags onto a period. Custom ranges need
// both --start and --end; otherwise --period picks today or this week.
func resolvePeriod(now time.Time) (domain.Period, error) {
	if reportStart != "" || reportEnd != "" {
		if reportStart == "" || reportEnd == "" {
			return domain.Period{}, &domain.ConfigError{Field: "start/end", Reason: "custom ranges need both --start and --end"}
		}
		return domain.CustomRange(reportStart, reportEnd, now.Location())
	}
	switch reportPeriod {
	case "day":
		return domain.Today(now), nil
	case "week":
		return domain.ThisWeek(now), nil
	default:
		return domain.Period{}, &domain.ConfigError{Field: "period", Reason: fmt.Sprintf("unknown period %q, want day or week", reportPeriod)}
	}
}

func openStore(cfg *config.Config, console *report.Console) *store.Store {
	s, err := store.Open(cfg.Store.DatabaseURL, cfg.Store.AuthToken)
	if err != nil {
		// The store only feeds the comparison; a broken database
		// must not block the report.
		console.Warn(fmt.Sprintf("snapshot store unavailable: %v", err))
		return nil
	}
	return s
}

// buildComparison finds previous-period data, preferring a stored
// snapshot over re-querying the daemon. Any failure just means the
// report goes out without a comparison block.
func buildComparison(ctx context.Context, cfg *config.Config, client *collector.Client, snapshots *store.Store, agg *domain.AggregationResult, console *report.Console) *domain.ComparisonResult {
	prev := agg.Period.Previous()

	if snapshots != nil {
		if stored, err := snapshots.Get(ctx, prev); err == nil {
			return compare.Compare(agg, stored)
		} else if !errors.Is(err, store.ErrNotFound) {
			console.Warn(fmt.Sprintf("loading previous snapshot: %v", err))
		}
	}

	console.Step("collecting previous period")
	snap, err := client.CollectAll(ctx, prev, cfg.EditorWatchers)
	if err != nil {
		console.Warn(fmt.Sprintf("no previous-period data: %v", err))
		return nil
	}
	activities, _ := normalize.Normalize(snap.Events(), cfg.Categories)
	prevAgg := aggregate.Aggregate(activities, prev)
	prevAgg.EventCounts = snap.Counts()

	if prevAgg.TotalDuration == 0 {
		// An empty previous period produces all-"new" deltas that
		// read as noise rather than trend.
		return nil
	}

	if snapshots != nil {
		if err := snapshots.Save(ctx, prevAgg); err != nil {
			log.Printf("saving previous snapshot: %v", err)
		}
	}
	return compare.Compare(agg, prevAgg)
}

func runNarrative(ctx context.Context, cfg *config.Config, agg *domain.AggregationResult, cmpResult *domain.ComparisonResult, console *report.Console) string {
	client := narrative.NewClient(narrative.Config{
		APIBase:     cfg.AI.APIBase,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout(),
	})

	text, err := client.Analyze(ctx, narrative.BuildPrompt(agg, cmpResult))
	if err != nil {
		console.Warn(fmt.Sprintf("AI analysis unavailable: %v", err))
		return ""
	}
	return text
}

func diagnosticsLine(diag normalize.Diagnostics) string {
	if diag.Dropped == 0 && diag.MalformedURLs == 0 {
		return ""
	}
	return fmt.Sprintf("Diagnostics: %d malformed events dropped, %d URLs without a parsable domain.", diag.Dropped, diag.MalformedURLs)
}

func exportRunMetrics(ctx context.Context, cfg *config.Config, m telemetry.RunMetrics) {
	if !cfg.Telemetry.Enabled {
		return
	}
	exporter, err := telemetry.NewExporter(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		return
	}
	defer exporter.Close(ctx)

	if err := exporter.ExportRun(ctx, m); err != nil {
		log.Printf("exporting run metrics: %v", err)
	}
}
