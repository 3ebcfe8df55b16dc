package analytics

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// Window is a closed time range used to filter events. Zero bounds are open.
// Loc is the calendar events are bucketed in; nil means UTC.
type Window struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

func (w Window) location() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return calendar.InWindow(t, w.Start, w.End)
}

// Local converts t into the window's location.
func (w Window) Local(t time.Time) time.Time {
	return t.In(w.location())
}

// EventDuration extracts the duration in seconds recorded in an event's
// metadata. Missing or malformed values count as zero.
func EventDuration(e models.ActivityEvent) float64 {
	for _, key := range []string{models.MetadataDuration, models.MetadataDurationLegacy} {
		if v, ok := e.Metadata[key]; ok {
			if d := toFloat(v); d > 0 {
				return d
			}
		}
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func toolCategory(e models.ActivityEvent) string {
	if e.ActivityType != models.ActivityToolUsage {
		return ""
	}
	if v, ok := e.Metadata[models.MetadataToolCategory].(string); ok && v != "" {
		return v
	}
	return "uncategorized"
}

// Aggregate buckets the events inside w into usage statistics. An empty
// window yields zeroed statistics with every bucket present.
func Aggregate(events []models.ActivityEvent, w Window) *models.UsageStatistics {
	stats := &models.UsageStatistics{
		Start:          w.Start,
		End:            w.End,
		CountsByType:   make(map[models.ActivityType]int, len(models.ActivityTypes)),
		DurationByType: make(map[models.ActivityType]float64, len(models.ActivityTypes)),
		ByDayOfWeek:    make(map[string]int, 7),
		ByTimeOfDay:    make(map[calendar.TimeOfDay]int, 4),
		ByToolCategory: map[string]int{},
		Periods:        make(map[calendar.Granularity][]models.PeriodRollup, len(calendar.Granularities)),
	}
	for _, t := range models.ActivityTypes {
		stats.CountsByType[t] = 0
		stats.DurationByType[t] = 0
	}
	for _, d := range calendar.Weekdays {
		stats.ByDayOfWeek[d.String()] = 0
	}
	for _, tod := range calendar.TimesOfDay {
		stats.ByTimeOfDay[tod] = 0
	}

	rollups := make(map[calendar.Granularity]map[string]*models.PeriodRollup, len(calendar.Granularities))
	for _, g := range calendar.Granularities {
		rollups[g] = map[string]*models.PeriodRollup{}
	}
	activeDays := map[string]struct{}{}

	for _, e := range events {
		if !w.Contains(e.OccurredAt) {
			continue
		}
		local := w.Local(e.OccurredAt)
		duration := EventDuration(e)

		stats.TotalEvents++
		stats.CountsByType[e.ActivityType]++
		stats.DurationByType[e.ActivityType] += duration
		stats.TotalDurationSeconds += duration
		stats.ByDayOfWeek[local.Weekday().String()]++
		stats.ByTimeOfDay[calendar.TimeOfDayOf(local)]++
		if cat := toolCategory(e); cat != "" {
			stats.ByToolCategory[cat]++
		}
		activeDays[calendar.DayKey(local)] = struct{}{}

		for _, g := range calendar.Granularities {
			key := calendar.PeriodKey(local, g)
			r, ok := rollups[g][key]
			if !ok {
				r = &models.PeriodRollup{PeriodKey: key, CountsByType: map[models.ActivityType]int{}}
				rollups[g][key] = r
			}
			r.Count++
			r.DurationSeconds += duration
			r.CountsByType[e.ActivityType]++
		}
	}

	stats.ActiveDays = len(activeDays)
	for _, g := range calendar.Granularities {
		list := make([]models.PeriodRollup, 0, len(rollups[g]))
		for _, r := range rollups[g] {
			list = append(list, *r)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].PeriodKey < list[j].PeriodKey })
		stats.Periods[g] = list
	}
	return stats
}

// ActivityCounts returns per-type event counts over all events.
func ActivityCounts(events []models.ActivityEvent) map[models.ActivityType]int {
	counts := make(map[models.ActivityType]int, len(models.ActivityTypes))
	for _, e := range events {
		counts[e.ActivityType]++
	}
	return counts
}

// Distribution returns the share of events inside w per weekday (Monday
// first) or per time-of-day slot.
func Distribution(events []models.ActivityEvent, w Window, dim models.DistributionDimension) *models.ActivityDistribution {
	var labels []string
	bucketOf := func(t time.Time) string { return t.Weekday().String() }
	if dim == models.DimensionTime {
		for _, tod := range calendar.TimesOfDay {
			labels = append(labels, string(tod))
		}
		bucketOf = func(t time.Time) string { return string(calendar.TimeOfDayOf(t)) }
	} else {
		dim = models.DimensionDay
		for _, d := range calendar.Weekdays {
			labels = append(labels, d.String())
		}
	}

	counts := make(map[string]int, len(labels))
	total := 0
	for _, e := range events {
		if !w.Contains(e.OccurredAt) {
			continue
		}
		counts[bucketOf(w.Local(e.OccurredAt))]++
		total++
	}

	dist := &models.ActivityDistribution{
		Dimension: dim,
		Start:     w.Start,
		End:       w.End,
		Total:     total,
		Buckets:   make([]models.DistributionBucket, 0, len(labels)),
	}
	best := 0
	for _, label := range labels {
		c := counts[label]
		dist.Buckets = append(dist.Buckets, models.DistributionBucket{
			Label:      label,
			Count:      c,
			Percentage: percentage(c, total),
		})
		if c > best {
			best = c
			dist.Peak = label
		}
	}
	return dist
}

// EmotionDistributionOf counts check-ins inside w per emotion and category.
// Emotions are ordered by count descending, then canonical order.
func EmotionDistributionOf(checkins []models.EmotionalCheckIn, w Window) *models.EmotionDistribution {
	type acc struct {
		count int
		sum   int
	}
	per := map[models.EmotionType]*acc{}
	dist := &models.EmotionDistribution{
		Emotions: []models.EmotionShare{},
		Categories: map[models.EmotionCategory]int{
			models.CategoryPositive: 0,
			models.CategoryNegative: 0,
			models.CategoryNeutral:  0,
		},
	}
	for _, c := range checkins {
		if !w.Contains(c.CreatedAt) {
			continue
		}
		a, ok := per[c.EmotionType]
		if !ok {
			a = &acc{}
			per[c.EmotionType] = a
		}
		a.count++
		a.sum += c.Intensity
		dist.Total++
		dist.Categories[c.EmotionType.Category()]++
	}
	for e, a := range per {
		dist.Emotions = append(dist.Emotions, models.EmotionShare{
			EmotionType:      e,
			Category:         e.Category(),
			Count:            a.count,
			Percentage:       percentage(a.count, dist.Total),
			AverageIntensity: float64(a.sum) / float64(a.count),
		})
	}
	sort.Slice(dist.Emotions, func(i, j int) bool {
		a, b := dist.Emotions[i], dist.Emotions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.EmotionType.Order() < b.EmotionType.Order()
	})
	return dist
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
