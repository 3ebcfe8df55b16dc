package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

const (
	// DefaultMinOccurrences is used when the caller passes a non-positive
	// minimum.
	DefaultMinOccurrences = 3

	// DominantShareThreshold is the share a group's top emotion needs before
	// the homogeneity bonus applies.
	DominantShareThreshold = 0.6

	// MaxHomogeneityBonus is the confidence bonus for a group made of a
	// single emotion.
	MaxHomogeneityBonus = 0.15
)

// Situational pattern sources
const (
	SourceTool    = "tool"
	SourceJournal = "journal"
	SourceContext = "context"
)

type group struct {
	key      string
	meta     map[string]interface{}
	count    int
	sum      int
	emotions map[models.EmotionType]int
}

// DetectPatterns groups the check-ins inside w according to pt and reports
// every group with at least minOccurrences members. Results are ordered by
// confidence, then occurrence count, descending.
func DetectPatterns(checkins []models.EmotionalCheckIn, w Window, pt models.PatternType, minOccurrences int) []models.EmotionalPattern {
	if minOccurrences <= 0 {
		minOccurrences = DefaultMinOccurrences
	}

	groups := map[string]*group{}
	total := 0
	for _, c := range checkins {
		if !w.Contains(c.CreatedAt) {
			continue
		}
		total++
		key, meta, ok := groupKey(c, w, pt)
		if !ok {
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &group{key: key, meta: meta, emotions: map[models.EmotionType]int{}}
			groups[key] = g
		}
		g.count++
		g.sum += c.Intensity
		g.emotions[c.EmotionType]++
	}

	patterns := []models.EmotionalPattern{}
	for _, g := range groups {
		if g.count < minOccurrences {
			continue
		}
		patterns = append(patterns, g.pattern(pt, total))
	}
	sortPatterns(patterns)
	return patterns
}

func sortPatterns(patterns []models.EmotionalPattern) {
	sort.Slice(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.OccurrenceCount != b.OccurrenceCount {
			return a.OccurrenceCount > b.OccurrenceCount
		}
		if a.PatternType != b.PatternType {
			return a.PatternType < b.PatternType
		}
		return a.PatternKey < b.PatternKey
	})
}

func groupKey(c models.EmotionalCheckIn, w Window, pt models.PatternType) (string, map[string]interface{}, bool) {
	local := w.Local(c.CreatedAt)
	tod := calendar.TimeOfDayOf(local)

	switch pt {
	case models.PatternDaily:
		return tod.Label(), map[string]interface{}{
			models.PatternMetaTimeOfDay: string(tod),
		}, true
	case models.PatternWeekly:
		day := local.Weekday()
		return strings.ToLower(day.String()) + ":" + tod.Label(), map[string]interface{}{
			models.PatternMetaDayOfWeek: day.String(),
			models.PatternMetaTimeOfDay: string(tod),
		}, true
	case models.PatternSituational:
		emotion := string(c.EmotionType)
		switch {
		case c.RelatedToolID != nil && *c.RelatedToolID != "":
			return fmt.Sprintf("%s:%s:%s", SourceTool, *c.RelatedToolID, emotion), map[string]interface{}{
				models.PatternMetaSource: SourceTool,
				models.PatternMetaToolID: *c.RelatedToolID,
			}, true
		case c.RelatedJournalID != nil && *c.RelatedJournalID != "":
			return fmt.Sprintf("%s:%s", SourceJournal, emotion), map[string]interface{}{
				models.PatternMetaSource: SourceJournal,
			}, true
		case c.Context != "":
			return fmt.Sprintf("%s:%s:%s", SourceContext, c.Context, emotion), map[string]interface{}{
				models.PatternMetaSource:  SourceContext,
				models.PatternMetaContext: string(c.Context),
			}, true
		}
	}
	return "", nil, false
}

func (g *group) pattern(pt models.PatternType, total int) models.EmotionalPattern {
	emotions := make([]models.EmotionType, 0, len(g.emotions))
	for e := range g.emotions {
		emotions = append(emotions, e)
	}
	sort.Slice(emotions, func(i, j int) bool {
		a, b := emotions[i], emotions[j]
		if g.emotions[a] != g.emotions[b] {
			return g.emotions[a] > g.emotions[b]
		}
		return a.Order() < b.Order()
	})

	dominant := emotions[0]
	share := float64(g.emotions[dominant]) / float64(g.count)
	confidence := PatternConfidence(g.count, total, share)

	meta := make(map[string]interface{}, len(g.meta)+3)
	for k, v := range g.meta {
		meta[k] = v
	}
	meta[models.PatternMetaDominantEmotion] = string(dominant)
	meta[models.PatternMetaDominantShare] = share
	meta[models.PatternMetaAvgIntensity] = float64(g.sum) / float64(g.count)

	return models.EmotionalPattern{
		PatternType:     pt,
		PatternKey:      g.key,
		Emotions:        emotions,
		OccurrenceCount: g.count,
		Confidence:      confidence,
		Metadata:        meta,
	}
}

// PatternConfidence scores a group of count check-ins out of total, adding a
// bonus when the dominant emotion's share reaches DominantShareThreshold.
// The result is always within [0,1].
func PatternConfidence(count, total int, dominantShare float64) float64 {
	if total <= 0 || count <= 0 {
		return 0
	}
	c := float64(count) / float64(total)
	if dominantShare >= DominantShareThreshold {
		c += MaxHomogeneityBonus * dominantShare
	}
	if c > 1 {
		c = 1
	}
	return c
}

// DominantEmotion returns the dominant emotion recorded in a pattern's
// metadata.
func DominantEmotion(p models.EmotionalPattern) models.EmotionType {
	if v, ok := p.Metadata[models.PatternMetaDominantEmotion].(string); ok {
		return models.EmotionType(v)
	}
	if len(p.Emotions) > 0 {
		return p.Emotions[0]
	}
	return ""
}
