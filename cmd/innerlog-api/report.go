package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/config"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute a progress dashboard from an exported data file",
	Long: `Read a JSON export of a user's activity events and emotional check-ins,
replay the streak engine over it and print the resulting dashboard.`,
	RunE: runReport,
}

var (
	reportInput string
	reportStart string
	reportEnd   string
	reportTZ    string
)

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "Path to the export file (- for stdin)")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Window start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "Window end date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTZ, "tz", "", "IANA timezone used for calendar days (defaults to config)")
	_ = reportCmd.MarkFlagRequired("input")
}

// Export is the on-disk format read by the report command
type Export struct {
	UserID   string                    `json:"user_id"`
	Events   []models.ActivityEvent    `json:"events"`
	CheckIns []models.EmotionalCheckIn `json:"checkins"`
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if reportTZ != "" {
		if loc, err = time.LoadLocation(reportTZ); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", reportTZ, err)
		}
	}

	var in io.Reader = cmd.InOrStdin()
	if reportInput != "-" {
		f, err := os.Open(reportInput)
		if err != nil {
			return fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close()
		in = f
	}

	var export Export
	if err := json.NewDecoder(in).Decode(&export); err != nil {
		return fmt.Errorf("failed to decode export: %w", err)
	}

	w, err := reportWindow(reportStart, reportEnd, loc)
	if err != nil {
		return err
	}

	dashboard := buildReport(export, w,
		analytics.StreakPolicy{MaxGracePerMonth: cfg.Engine.MaxGracePerMonth},
		analytics.ReportOptions{
			MinOccurrences: cfg.Engine.DefaultMinOccurrences,
			InsightLimit:   cfg.Engine.DefaultInsightLimit,
		},
		time.Now())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dashboard)
}

func reportWindow(start, end string, loc *time.Location) (analytics.Window, error) {
	w := analytics.Window{Loc: loc}
	if start != "" {
		d, err := calendar.ParseDay(start)
		if err != nil {
			return w, fmt.Errorf("invalid --start %q: %w", start, err)
		}
		w.Start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	if end != "" {
		d, err := calendar.ParseDay(end)
		if err != nil {
			return w, fmt.Errorf("invalid --end %q: %w", end, err)
		}
		w.End = calendar.EndOfDay(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc))
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return w, fmt.Errorf("--end must not be before --start")
	}
	return w, nil
}

// buildReport replays every event day through the streak policy in
// chronological order, reconciles achievements and attaches both to the
// analytics dashboard.
func buildReport(export Export, w analytics.Window, policy analytics.StreakPolicy, opts analytics.ReportOptions, now time.Time) *models.Dashboard {
	events := append([]models.ActivityEvent(nil), export.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})

	state := models.NewStreakState(export.UserID)
	for _, e := range events {
		day := calendar.Civil(w.Local(e.OccurredAt))
		// Replay never requests grace; only an explicit request spends one.
		_, _ = policy.ApplyActivity(state, day, day, false)
	}

	today := calendar.Civil(now.In(w.Loc))
	counts := analytics.ActivityCounts(events)
	all, _, _ := analytics.Reconcile(export.UserID, nil, analytics.CountersFrom(state, counts), now)

	page := &models.AchievementPage{
		Achievements: all,
		Page:         1,
		PageSize:     len(all),
		Total:        len(all),
	}
	for _, a := range all {
		if a.Earned() {
			page.EarnedCount++
			page.TotalPoints += a.Points
		}
	}

	dashboard := analytics.Report(events, export.CheckIns, w, opts, now)
	dashboard.UserID = export.UserID
	dashboard.Streak = &models.StreakResponse{
		State:          state,
		Milestone:      analytics.MilestoneFor(state.CurrentStreak),
		GraceRemaining: policy.GraceRemaining(state, today),
	}
	dashboard.Achievements = page
	return dashboard
}
