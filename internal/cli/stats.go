package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ytabot/internal/adapter"
	"ytabot/internal/domain"
	"ytabot/internal/service"
)

type statsOptions struct {
	rangeStr    string
	channel     string
	jsonOut     bool
	skipRevenue bool
	outPath     string
}

var statsFlags statsOptions

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Build an analytics report",
	Long: `Build a channel analytics report for a date range.

The default range runs from the configured start date through today.
With no --channel the authorized user's own channel is reported.

Examples:
  ytastats stats
  ytastats stats --range 2024-01-01:2024-01-31 --json
  ytastats stats --channel @SomeHandle --skip-revenue
  ytastats stats --out report.txt`,
	RunE: runStats,
}

func initStatsFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&statsFlags.rangeStr, "range", "", "date range as start:end (ISO dates)")
	flags.StringVar(&statsFlags.channel, "channel", "", "channel ID, @handle or display name (default: own channel)")
	flags.BoolVar(&statsFlags.jsonOut, "json", false, "emit JSON instead of a text report")
	flags.BoolVar(&statsFlags.skipRevenue, "skip-revenue", false, "omit revenue calls entirely")
	flags.StringVar(&statsFlags.outPath, "out", "", "write the report to a file instead of stdout")
}

func init() {
	initStatsFlags(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	container, err := buildContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	period, err := resolveRange(container.Config.Report.DefaultStartDate)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	analytics, err := container.Analytics(ctx, globalFlags.userID)
	if err != nil {
		return err
	}

	report, err := analytics.BuildReport(ctx, statsFlags.channel, period, service.ReportOptions{
		SkipRevenue: statsFlags.skipRevenue,
	})
	if err != nil {
		return err
	}

	target := adapter.TargetText
	if statsFlags.jsonOut {
		target = adapter.TargetJSON
	}
	text, err := container.Formatter.Format(report, target)
	if err != nil {
		return err
	}

	if statsFlags.outPath != "" {
		if err := os.WriteFile(statsFlags.outPath, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report saved to %s\n", statsFlags.outPath)
		return nil
	}

	fmt.Println(text)
	return nil
}

func resolveRange(defaultStart time.Time) (domain.DateRange, error) {
	if statsFlags.rangeStr == "" {
		return domain.NewDateRange(defaultStart, time.Now())
	}
	return domain.ParseDateRange(statsFlags.rangeStr)
}
