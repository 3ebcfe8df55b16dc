package models

// PatternType selects how check-ins are grouped for pattern detection
type PatternType string

const (
	PatternDaily       PatternType = "daily"
	PatternWeekly      PatternType = "weekly"
	PatternSituational PatternType = "situational"
)

// PatternTypes lists the supported pattern groupings
var PatternTypes = []PatternType{PatternDaily, PatternWeekly, PatternSituational}

// Valid reports whether p is a known pattern type
func (p PatternType) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternSituational:
		return true
	}
	return false
}

// Pattern metadata keys
const (
	PatternMetaDayOfWeek       = "day_of_week"
	PatternMetaTimeOfDay       = "time_of_day"
	PatternMetaDominantEmotion = "dominant_emotion"
	PatternMetaDominantShare   = "dominant_share"
	PatternMetaAvgIntensity    = "average_intensity"
	PatternMetaToolID          = "tool_id"
	PatternMetaContext         = "context"
	PatternMetaSource          = "source"
)

// EmotionalPattern is a recurring grouping of check-ins. Derived, never stored.
type EmotionalPattern struct {
	PatternType     PatternType            `json:"pattern_type"`
	PatternKey      string                 `json:"pattern_key"`
	Emotions        []EmotionType          `json:"emotions"`
	OccurrenceCount int                    `json:"occurrence_count"`
	Confidence      float64                `json:"confidence"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// InsightType classifies a generated insight
type InsightType string

const (
	InsightPattern        InsightType = "PATTERN"
	InsightTrigger        InsightType = "TRIGGER"
	InsightImprovement    InsightType = "IMPROVEMENT"
	InsightCorrelation    InsightType = "CORRELATION"
	InsightRecommendation InsightType = "RECOMMENDATION"
)

// Insight is a ranked, human-readable observation
type Insight struct {
	Type               InsightType   `json:"type"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	RelatedEmotions    []EmotionType `json:"related_emotions"`
	Confidence         float64       `json:"confidence"`
	RecommendedActions []string      `json:"recommended_actions"`
}
