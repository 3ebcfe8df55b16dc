package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

const (
	// ImprovementMinDrop is the relative intensity drop a negative emotion
	// needs before an improvement is reported.
	ImprovementMinDrop = 0.15

	// PatternInsightMinConfidence is the confidence a pattern needs to be
	// surfaced as an insight.
	PatternInsightMinConfidence = 0.5

	// TriggerMinOccurrences is how often a negative emotion must follow the
	// same tool or context to count as a trigger.
	TriggerMinOccurrences = 3

	// RecommendationMinShare and RecommendationMinCheckIns gate the
	// dominant-emotion recommendation.
	RecommendationMinShare    = 40.0
	RecommendationMinCheckIns = 5
)

// InsightInput is everything the insight generator reads.
type InsightInput struct {
	Distribution *models.EmotionDistribution
	Trends       []models.EmotionalTrend
	Patterns     []models.EmotionalPattern
}

var recommendedActions = map[models.InsightType]map[models.EmotionCategory][]string{
	models.InsightImprovement: {
		models.CategoryNegative: {
			"Note what changed recently and keep doing it",
			"Record a journal entry about what is helping",
		},
	},
	models.InsightPattern: {
		models.CategoryPositive: {
			"Plan meaningful activities for this time",
			"Reflect on what makes this time feel good",
		},
		models.CategoryNegative: {
			"Schedule a short breathing exercise before this time",
			"Check in with yourself earlier in the day",
			"Try a grounding tool when this pattern shows up",
		},
		models.CategoryNeutral: {
			"Notice what usually happens around this time",
		},
	},
	models.InsightTrigger: {
		models.CategoryNegative: {
			"Try a different tool for this situation",
			"Journal about what comes up in this situation",
			"Pair this activity with a calming exercise",
		},
	},
	models.InsightCorrelation: {
		models.CategoryPositive: {
			"Lean into the activities that lift your mood",
		},
		models.CategoryNegative: {
			"Keep tracking both feelings to see how they relate",
			"Use the moments you feel better as an anchor",
		},
	},
	models.InsightRecommendation: {
		models.CategoryPositive: {
			"Keep a gratitude note to reinforce this feeling",
			"Share what is going well with someone you trust",
		},
		models.CategoryNegative: {
			"Try a guided breathing session",
			"Reach out to someone you trust",
			"Record a journal entry to unpack this feeling",
		},
		models.CategoryNeutral: {
			"Try naming this feeling more precisely at your next check-in",
		},
	},
}

// RecommendedActions returns the static actions for an insight type and
// emotion category. Unknown combinations fall back to a generic action so
// every insight carries at least one.
func RecommendedActions(t models.InsightType, c models.EmotionCategory) []string {
	if actions, ok := recommendedActions[t][c]; ok && len(actions) > 0 {
		out := make([]string, len(actions))
		copy(out, actions)
		return out
	}
	return []string{"Keep checking in to learn more about this feeling"}
}

// GenerateInsights applies every insight rule to in and returns the results
// ordered by confidence descending. limit <= 0 means no limit. Empty input
// yields an empty slice.
func GenerateInsights(in InsightInput, limit int) []models.Insight {
	insights := []models.Insight{}
	insights = append(insights, improvementInsights(in.Trends)...)
	insights = append(insights, patternInsights(in.Patterns)...)
	insights = append(insights, triggerInsights(in.Patterns)...)
	insights = append(insights, correlationInsights(in.Trends)...)
	insights = append(insights, recommendationInsights(in.Distribution)...)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})
	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}
	return insights
}

func improvementInsights(trends []models.EmotionalTrend) []models.Insight {
	var out []models.Insight
	for _, t := range trends {
		if t.EmotionType.Category() != models.CategoryNegative || t.OverallTrend != models.TrendDecreasing {
			continue
		}
		drop := -RelativeChange(t)
		if drop < ImprovementMinDrop {
			continue
		}
		name := emotionName(t.EmotionType)
		out = append(out, models.Insight{
			Type:               models.InsightImprovement,
			Title:              fmt.Sprintf("%s is easing", capitalize(name)),
			Description:        fmt.Sprintf("The intensity of your %s dropped by %.0f%% over this period.", name, drop*100),
			RelatedEmotions:    []models.EmotionType{t.EmotionType},
			Confidence:         math.Min(1, 0.5+drop),
			RecommendedActions: RecommendedActions(models.InsightImprovement, models.CategoryNegative),
		})
	}
	return out
}

func patternInsights(patterns []models.EmotionalPattern) []models.Insight {
	var out []models.Insight
	for _, p := range patterns {
		if p.Confidence < PatternInsightMinConfidence {
			continue
		}
		dominant := DominantEmotion(p)
		out = append(out, models.Insight{
			Type:               models.InsightPattern,
			Title:              fmt.Sprintf("Recurring %s", emotionName(dominant)),
			Description:        fmt.Sprintf("You often feel %s %s (%d check-ins).", emotionName(dominant), describePattern(p), p.OccurrenceCount),
			RelatedEmotions:    append([]models.EmotionType(nil), p.Emotions...),
			Confidence:         p.Confidence,
			RecommendedActions: RecommendedActions(models.InsightPattern, dominant.Category()),
		})
	}
	return out
}

func triggerInsights(patterns []models.EmotionalPattern) []models.Insight {
	var out []models.Insight
	for _, p := range patterns {
		if p.PatternType != models.PatternSituational {
			continue
		}
		source, _ := p.Metadata[models.PatternMetaSource].(string)
		if source != SourceTool && source != SourceContext {
			continue
		}
		dominant := DominantEmotion(p)
		if dominant.Category() != models.CategoryNegative {
			continue
		}
		share, _ := p.Metadata[models.PatternMetaDominantShare].(float64)
		occurrences := int(math.Round(share * float64(p.OccurrenceCount)))
		if occurrences < TriggerMinOccurrences {
			continue
		}
		out = append(out, models.Insight{
			Type:               models.InsightTrigger,
			Title:              fmt.Sprintf("Possible trigger for %s", emotionName(dominant)),
			Description:        fmt.Sprintf("You reported %s %d times %s.", emotionName(dominant), occurrences, describePattern(p)),
			RelatedEmotions:    []models.EmotionType{dominant},
			Confidence:         math.Min(1, 0.5+0.05*float64(occurrences)),
			RecommendedActions: RecommendedActions(models.InsightTrigger, models.CategoryNegative),
		})
	}
	return out
}

func correlationInsights(trends []models.EmotionalTrend) []models.Insight {
	var out []models.Insight
	for _, pos := range trends {
		if pos.EmotionType.Category() != models.CategoryPositive || !directional(pos.OverallTrend) {
			continue
		}
		for _, neg := range trends {
			if neg.EmotionType.Category() != models.CategoryNegative || !directional(neg.OverallTrend) {
				continue
			}
			if pos.OverallTrend == neg.OverallTrend {
				continue
			}
			strength := (math.Abs(RelativeChange(pos)) + math.Abs(RelativeChange(neg))) / 4
			out = append(out, models.Insight{
				Type:  models.InsightCorrelation,
				Title: fmt.Sprintf("%s and %s move in opposite directions", capitalize(emotionName(pos.EmotionType)), emotionName(neg.EmotionType)),
				Description: fmt.Sprintf("As %s became %s, %s became %s.",
					emotionName(pos.EmotionType), directionWord(pos.OverallTrend),
					emotionName(neg.EmotionType), directionWord(neg.OverallTrend)),
				RelatedEmotions:    []models.EmotionType{pos.EmotionType, neg.EmotionType},
				Confidence:         math.Min(1, 0.5+strength),
				RecommendedActions: RecommendedActions(models.InsightCorrelation, models.CategoryNegative),
			})
		}
	}
	return out
}

func recommendationInsights(dist *models.EmotionDistribution) []models.Insight {
	if dist == nil || dist.Total < RecommendationMinCheckIns || len(dist.Emotions) == 0 {
		return nil
	}
	top := dist.Emotions[0]
	if top.Percentage < RecommendationMinShare {
		return nil
	}
	name := emotionName(top.EmotionType)
	return []models.Insight{{
		Type:               models.InsightRecommendation,
		Title:              fmt.Sprintf("%s stands out", capitalize(name)),
		Description:        fmt.Sprintf("%s made up %.0f%% of your check-ins in this period.", capitalize(name), top.Percentage),
		RelatedEmotions:    []models.EmotionType{top.EmotionType},
		Confidence:         math.Min(1, top.Percentage/100),
		RecommendedActions: RecommendedActions(models.InsightRecommendation, top.Category),
	}}
}

func directional(d models.TrendDirection) bool {
	return d == models.TrendIncreasing || d == models.TrendDecreasing
}

func directionWord(d models.TrendDirection) string {
	if d == models.TrendIncreasing {
		return "stronger"
	}
	return "weaker"
}

func describePattern(p models.EmotionalPattern) string {
	switch p.PatternType {
	case models.PatternDaily:
		if tod, ok := p.Metadata[models.PatternMetaTimeOfDay].(string); ok {
			return "in the " + strings.ToLower(tod)
		}
	case models.PatternWeekly:
		day, _ := p.Metadata[models.PatternMetaDayOfWeek].(string)
		tod, _ := p.Metadata[models.PatternMetaTimeOfDay].(string)
		return fmt.Sprintf("on %s %s", day, strings.ToLower(tod))
	case models.PatternSituational:
		switch p.Metadata[models.PatternMetaSource] {
		case SourceTool:
			return fmt.Sprintf("around tool %v", p.Metadata[models.PatternMetaToolID])
		case SourceJournal:
			return "around journaling"
		case SourceContext:
			ctx, _ := p.Metadata[models.PatternMetaContext].(string)
			return "during " + strings.ToLower(strings.ReplaceAll(ctx, "_", " "))
		}
	}
	return "regularly"
}

func emotionName(e models.EmotionType) string {
	return strings.ToLower(string(e))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
