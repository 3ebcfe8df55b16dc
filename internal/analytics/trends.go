package analytics

import (
	"math"
	"sort"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// TrendEpsilon is the smallest change in mean intensity treated as movement.
const TrendEpsilon = 0.5

type bucket struct {
	key   string
	count int
	sum   int
	min   int
	max   int
}

// ComputeTrend buckets the check-ins of one emotion inside w by period and
// classifies the direction of their mean intensity. Empty periods are
// omitted from the data points.
func ComputeTrend(checkins []models.EmotionalCheckIn, emotion models.EmotionType, w Window, g calendar.Granularity) models.EmotionalTrend {
	trend := models.EmotionalTrend{
		EmotionType:  emotion,
		Category:     emotion.Category(),
		Granularity:  g,
		DataPoints:   []models.TrendDataPoint{},
		OverallTrend: models.TrendStable,
	}

	buckets := map[string]*bucket{}
	total := 0
	for _, c := range checkins {
		if c.EmotionType != emotion || !w.Contains(c.CreatedAt) {
			continue
		}
		key := calendar.PeriodKey(w.Local(c.CreatedAt), g)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, min: c.Intensity, max: c.Intensity}
			buckets[key] = b
		}
		b.count++
		b.sum += c.Intensity
		if c.Intensity < b.min {
			b.min = c.Intensity
		}
		if c.Intensity > b.max {
			b.max = c.Intensity
		}
		total += c.Intensity
		trend.TotalCheckIns++
	}
	if trend.TotalCheckIns == 0 {
		return trend
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	for _, b := range ordered {
		avg := float64(b.sum) / float64(b.count)
		trend.DataPoints = append(trend.DataPoints, models.TrendDataPoint{
			PeriodKey:        b.key,
			AverageIntensity: avg,
			OccurrenceCount:  b.count,
			MinIntensity:     b.min,
			MaxIntensity:     b.max,
		})
		// Strictly greater keeps the earliest period on ties.
		if avg > trend.PeakIntensity {
			trend.PeakIntensity = avg
			trend.PeakPeriod = b.key
		}
	}

	trend.AverageIntensity = float64(total) / float64(trend.TotalCheckIns)
	trend.OverallTrend = Direction(averages(trend.DataPoints))
	return trend
}

func averages(points []models.TrendDataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.AverageIntensity
	}
	return out
}

// Direction classifies a chronological series of bucket means. The first and
// last thirds are compared; a move under TrendEpsilon is stable, and a move
// contradicted by any step of at least TrendEpsilon is fluctuating.
func Direction(series []float64) models.TrendDirection {
	n := len(series)
	if n < 2 {
		return models.TrendStable
	}
	third := n / 3
	if third < 1 {
		third = 1
	}
	diff := mean(series[n-third:]) - mean(series[:third])
	if math.Abs(diff) < TrendEpsilon {
		return models.TrendStable
	}

	for i := 1; i < n; i++ {
		step := series[i] - series[i-1]
		if math.Abs(step) >= TrendEpsilon && (step > 0) != (diff > 0) {
			return models.TrendFluctuating
		}
	}
	if diff > 0 {
		return models.TrendIncreasing
	}
	return models.TrendDecreasing
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// ComputeTrends computes one trend per requested emotion. With no emotions
// requested, every emotion present in the window is analysed in canonical
// order.
func ComputeTrends(checkins []models.EmotionalCheckIn, emotions []models.EmotionType, w Window, g calendar.Granularity) []models.EmotionalTrend {
	if len(emotions) == 0 {
		emotions = presentEmotions(checkins, w)
	}
	trends := make([]models.EmotionalTrend, 0, len(emotions))
	for _, e := range emotions {
		trends = append(trends, ComputeTrend(checkins, e, w, g))
	}
	return trends
}

func presentEmotions(checkins []models.EmotionalCheckIn, w Window) []models.EmotionType {
	seen := map[models.EmotionType]bool{}
	for _, c := range checkins {
		if w.Contains(c.CreatedAt) {
			seen[c.EmotionType] = true
		}
	}
	out := make([]models.EmotionType, 0, len(seen))
	for _, e := range models.EmotionTypes {
		if seen[e] {
			out = append(out, e)
		}
	}
	return out
}

// RelativeChange returns the change of the last populated bucket relative to
// the first, e.g. -0.25 for a drop from 8 to 6. Trends with fewer than two
// points report zero.
func RelativeChange(t models.EmotionalTrend) float64 {
	n := len(t.DataPoints)
	if n < 2 {
		return 0
	}
	first := t.DataPoints[0].AverageIntensity
	if first == 0 {
		return 0
	}
	return (t.DataPoints[n-1].AverageIntensity - first) / first
}
