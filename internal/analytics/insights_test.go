package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

func byType(insights []models.Insight, t models.InsightType) []models.Insight {
	var out []models.Insight
	for _, i := range insights {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}

func TestGenerateInsights_Empty(t *testing.T) {
	insights := GenerateInsights(InsightInput{}, 10)
	assert.NotNil(t, insights)
	assert.Empty(t, insights)

	insights = GenerateInsights(InsightInput{Distribution: &models.EmotionDistribution{}}, 0)
	assert.Empty(t, insights)
}

func TestGenerateInsights_Improvement(t *testing.T) {
	anxiety := ComputeTrend(daily(models.EmotionAnxiety, "2023-06-01T09:00:00Z", 8, 7, 6, 5, 4), models.EmotionAnxiety, Window{}, calendar.Day)
	slight := ComputeTrend(daily(models.EmotionFear, "2023-06-01T09:00:00Z", 8, 8, 7, 7, 7), models.EmotionFear, Window{}, calendar.Day)

	insights := GenerateInsights(InsightInput{Trends: []models.EmotionalTrend{anxiety, slight}}, 0)

	improvements := byType(insights, models.InsightImprovement)
	require.Len(t, improvements, 1)
	assert.Equal(t, []models.EmotionType{models.EmotionAnxiety}, improvements[0].RelatedEmotions)
	assert.Equal(t, 1.0, improvements[0].Confidence)
	assert.NotEmpty(t, improvements[0].RecommendedActions)
}

func TestGenerateInsights_PatternAndTrigger(t *testing.T) {
	checkins := []models.EmotionalCheckIn{}
	for _, ts := range []string{"2023-06-01T09:00:00Z", "2023-06-02T09:00:00Z", "2023-06-03T09:00:00Z"} {
		c := checkin(models.EmotionFrustration, 7, ts)
		c.RelatedToolID = strPtr("meditation-10")
		checkins = append(checkins, c)
	}
	patterns := DetectPatterns(checkins, Window{}, models.PatternSituational, 3)
	require.Len(t, patterns, 1)

	insights := GenerateInsights(InsightInput{Patterns: patterns}, 0)

	pattern := byType(insights, models.InsightPattern)
	require.Len(t, pattern, 1)
	assert.Equal(t, patterns[0].Confidence, pattern[0].Confidence)

	triggers := byType(insights, models.InsightTrigger)
	require.Len(t, triggers, 1)
	assert.Equal(t, []models.EmotionType{models.EmotionFrustration}, triggers[0].RelatedEmotions)
	assert.InDelta(t, 0.65, triggers[0].Confidence, 1e-9)
	assert.Contains(t, triggers[0].Description, "meditation-10")
}

func TestGenerateInsights_PositiveToolPatternIsNotATrigger(t *testing.T) {
	checkins := []models.EmotionalCheckIn{}
	for _, ts := range []string{"2023-06-01T09:00:00Z", "2023-06-02T09:00:00Z", "2023-06-03T09:00:00Z"} {
		c := checkin(models.EmotionCalm, 7, ts)
		c.RelatedToolID = strPtr("meditation-10")
		checkins = append(checkins, c)
	}
	patterns := DetectPatterns(checkins, Window{}, models.PatternSituational, 3)

	insights := GenerateInsights(InsightInput{Patterns: patterns}, 0)
	assert.Empty(t, byType(insights, models.InsightTrigger))
}

func TestGenerateInsights_Correlation(t *testing.T) {
	joy := ComputeTrend(daily(models.EmotionJoy, "2023-06-01T09:00:00Z", 4, 5, 6, 7, 8), models.EmotionJoy, Window{}, calendar.Day)
	anxiety := ComputeTrend(daily(models.EmotionAnxiety, "2023-06-01T10:00:00Z", 8, 7, 6, 5, 4), models.EmotionAnxiety, Window{}, calendar.Day)
	calm := ComputeTrend(daily(models.EmotionCalm, "2023-06-01T11:00:00Z", 5, 5, 5), models.EmotionCalm, Window{}, calendar.Day)

	insights := GenerateInsights(InsightInput{Trends: []models.EmotionalTrend{joy, anxiety, calm}}, 0)

	correlations := byType(insights, models.InsightCorrelation)
	require.Len(t, correlations, 1)
	assert.Equal(t, []models.EmotionType{models.EmotionJoy, models.EmotionAnxiety}, correlations[0].RelatedEmotions)
	assert.Equal(t, "Joy and anxiety move in opposite directions", correlations[0].Title)
	assert.Equal(t, "As joy became stronger, anxiety became weaker.", correlations[0].Description)
	assert.InDelta(t, 0.875, correlations[0].Confidence, 1e-9)
}

func TestGenerateInsights_Recommendation(t *testing.T) {
	var checkins []models.EmotionalCheckIn
	checkins = append(checkins, daily(models.EmotionOverwhelm, "2023-06-01T09:00:00Z", 6, 7, 8, 6, 7)...)
	checkins = append(checkins, daily(models.EmotionJoy, "2023-06-01T12:00:00Z", 5, 5, 5)...)
	dist := EmotionDistributionOf(checkins, Window{})

	insights := GenerateInsights(InsightInput{Distribution: dist}, 0)

	recs := byType(insights, models.InsightRecommendation)
	require.Len(t, recs, 1)
	assert.Equal(t, []models.EmotionType{models.EmotionOverwhelm}, recs[0].RelatedEmotions)
	assert.InDelta(t, 0.625, recs[0].Confidence, 1e-9)

	small := EmotionDistributionOf(checkins[:3], Window{})
	assert.Empty(t, GenerateInsights(InsightInput{Distribution: small}, 0))
}

func TestGenerateInsights_RankedAndLimited(t *testing.T) {
	joy := ComputeTrend(daily(models.EmotionJoy, "2023-06-01T09:00:00Z", 4, 5, 6, 7, 8), models.EmotionJoy, Window{}, calendar.Day)
	anxiety := ComputeTrend(daily(models.EmotionAnxiety, "2023-06-01T10:00:00Z", 8, 7, 6, 5, 4), models.EmotionAnxiety, Window{}, calendar.Day)
	var checkins []models.EmotionalCheckIn
	checkins = append(checkins, daily(models.EmotionAnxiety, "2023-06-01T09:00:00Z", 6, 7, 8, 6, 7)...)
	dist := EmotionDistributionOf(checkins, Window{})

	in := InsightInput{Distribution: dist, Trends: []models.EmotionalTrend{joy, anxiety}}
	all := GenerateInsights(in, 0)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Confidence, all[i].Confidence)
	}
	for _, insight := range all {
		assert.GreaterOrEqual(t, insight.Confidence, 0.0)
		assert.LessOrEqual(t, insight.Confidence, 1.0)
		assert.NotEmpty(t, insight.RecommendedActions)
		assert.LessOrEqual(t, len(insight.RecommendedActions), 3)
	}

	limited := GenerateInsights(in, 2)
	assert.Equal(t, all[:2], limited)
}
