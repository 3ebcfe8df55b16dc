package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every API handler
type Handlers struct {
	Streak      *StreakHandler
	Achievement *AchievementHandler
	Activity    *ActivityHandler
	CheckIn     *CheckInHandler
	Analytics   *AnalyticsHandler
	Insights    *InsightsHandler
}

// RegisterRoutes mounts the authenticated API on group
func RegisterRoutes(group *gin.RouterGroup, h Handlers) {
	// Streak routes
	group.GET("/streak", h.Streak.GetStreak)
	group.POST("/streak/activity", h.Streak.RecordActivity)
	group.POST("/streak/reset", h.Streak.ResetStreak)
	group.POST("/streak/grace", h.Streak.UseGracePeriod)
	group.GET("/streak/milestone", h.Streak.NextMilestone)

	group.GET("/achievements", h.Achievement.ListAchievements)

	// Ingestion routes
	group.POST("/activities", h.Activity.RecordActivity)
	group.POST("/checkins", h.CheckIn.CreateCheckIn)
	group.GET("/checkins", h.CheckIn.ListCheckIns)
	group.GET("/checkins/:id", h.CheckIn.GetCheckIn)

	// Analytics routes
	group.GET("/analytics/distribution", h.Analytics.GetDistribution)
	group.GET("/analytics/usage", h.Analytics.GetUsage)
	group.GET("/analytics/trends", h.Analytics.GetTrends)
	group.GET("/analytics/patterns", h.Analytics.GetPatterns)
	group.GET("/insights", h.Insights.GetInsights)
	group.GET("/dashboard", h.Insights.GetDashboard)
}
