package models

import "time"

// EmotionType is one of the fixed set of emotions a user can check in with
type EmotionType string

const (
	EmotionJoy         EmotionType = "JOY"
	EmotionGratitude   EmotionType = "GRATITUDE"
	EmotionCalm        EmotionType = "CALM"
	EmotionContentment EmotionType = "CONTENTMENT"
	EmotionHope        EmotionType = "HOPE"
	EmotionPride       EmotionType = "PRIDE"
	EmotionLove        EmotionType = "LOVE"
	EmotionSadness     EmotionType = "SADNESS"
	EmotionAnxiety     EmotionType = "ANXIETY"
	EmotionAnger       EmotionType = "ANGER"
	EmotionFear        EmotionType = "FEAR"
	EmotionFrustration EmotionType = "FRUSTRATION"
	EmotionLoneliness  EmotionType = "LONELINESS"
	EmotionOverwhelm   EmotionType = "OVERWHELM"
	EmotionSurprise    EmotionType = "SURPRISE"
	EmotionConfusion   EmotionType = "CONFUSION"
)

// EmotionTypes lists all 16 emotions in canonical order
var EmotionTypes = []EmotionType{
	EmotionJoy, EmotionGratitude, EmotionCalm, EmotionContentment,
	EmotionHope, EmotionPride, EmotionLove,
	EmotionSadness, EmotionAnxiety, EmotionAnger, EmotionFear,
	EmotionFrustration, EmotionLoneliness, EmotionOverwhelm,
	EmotionSurprise, EmotionConfusion,
}

// EmotionCategory groups emotions by valence
type EmotionCategory string

const (
	CategoryPositive EmotionCategory = "POSITIVE"
	CategoryNegative EmotionCategory = "NEGATIVE"
	CategoryNeutral  EmotionCategory = "NEUTRAL"
)

var emotionCategories = map[EmotionType]EmotionCategory{
	EmotionJoy:         CategoryPositive,
	EmotionGratitude:   CategoryPositive,
	EmotionCalm:        CategoryPositive,
	EmotionContentment: CategoryPositive,
	EmotionHope:        CategoryPositive,
	EmotionPride:       CategoryPositive,
	EmotionLove:        CategoryPositive,
	EmotionSadness:     CategoryNegative,
	EmotionAnxiety:     CategoryNegative,
	EmotionAnger:       CategoryNegative,
	EmotionFear:        CategoryNegative,
	EmotionFrustration: CategoryNegative,
	EmotionLoneliness:  CategoryNegative,
	EmotionOverwhelm:   CategoryNegative,
	EmotionSurprise:    CategoryNeutral,
	EmotionConfusion:   CategoryNeutral,
}

// Valid reports whether e is one of the known emotions
func (e EmotionType) Valid() bool {
	_, ok := emotionCategories[e]
	return ok
}

// Category returns the valence category of e
func (e EmotionType) Category() EmotionCategory {
	if c, ok := emotionCategories[e]; ok {
		return c
	}
	return CategoryNeutral
}

// Order returns the canonical index of e, or len(EmotionTypes) if unknown
func (e EmotionType) Order() int {
	for i, et := range EmotionTypes {
		if et == e {
			return i
		}
	}
	return len(EmotionTypes)
}

// CheckInContext describes what the user was doing when checking in
type CheckInContext string

const (
	ContextPreJournaling  CheckInContext = "PRE_JOURNALING"
	ContextPostJournaling CheckInContext = "POST_JOURNALING"
	ContextStandalone     CheckInContext = "STANDALONE"
	ContextToolUsage      CheckInContext = "TOOL_USAGE"
	ContextDailyCheckIn   CheckInContext = "DAILY_CHECK_IN"
)

// Valid reports whether c is a known check-in context
func (c CheckInContext) Valid() bool {
	switch c {
	case ContextPreJournaling, ContextPostJournaling, ContextStandalone, ContextToolUsage, ContextDailyCheckIn:
		return true
	}
	return false
}

// Intensity bounds for check-ins
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// EmotionalCheckIn is an immutable emotional state report
type EmotionalCheckIn struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	EmotionType      EmotionType    `json:"emotion_type"`
	Intensity        int            `json:"intensity"`
	Context          CheckInContext `json:"context"`
	Notes            *string        `json:"notes,omitempty"`
	RelatedJournalID *string        `json:"related_journal_id,omitempty"`
	RelatedToolID    *string        `json:"related_tool_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CreateCheckInRequest represents the request to record a check-in
type CreateCheckInRequest struct {
	ID               *string        `json:"id"`
	EmotionType      EmotionType    `json:"emotion_type" binding:"required,emotion_type"`
	Intensity        int            `json:"intensity" binding:"required,min=1,max=10"`
	Context          CheckInContext `json:"context" binding:"required,checkin_context"`
	Notes            *string        `json:"notes" binding:"omitempty,max=2000"`
	RelatedJournalID *string        `json:"related_journal_id"`
	RelatedToolID    *string        `json:"related_tool_id"`
	CreatedAt        *time.Time     `json:"created_at"`
}

// CheckInResponse is returned after a check-in is recorded
type CheckInResponse struct {
	CheckIn *EmotionalCheckIn `json:"checkin"`
	Streak  *StreakUpdate     `json:"streak,omitempty"`
}
