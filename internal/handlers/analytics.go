package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	params           Params
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService, params Params) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		params:           params,
	}
}

// GetDistribution returns activity counts by weekday or time of day
// GET /api/v1/analytics/distribution?start&end&dimension=day|time
func (h *AnalyticsHandler) GetDistribution(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}

	dim := models.DistributionDimension(strings.ToLower(c.DefaultQuery("dimension", string(models.DimensionDay))))
	dist, err := h.analyticsService.GetActivityDistribution(c.Request.Context(), userID, w, dim)
	if err != nil {
		writeError(c, "get activity distribution", err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

// GetUsage returns usage statistics for the window
// GET /api/v1/analytics/usage?start&end
func (h *AnalyticsHandler) GetUsage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}

	stats, err := h.analyticsService.GetUsageStatistics(c.Request.Context(), userID, w)
	if err != nil {
		writeError(c, "get usage statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTrends returns emotional trends
// GET /api/v1/analytics/trends?start&end&emotions=JOY,SADNESS&period=week
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}

	var emotions []models.EmotionType
	for _, e := range strings.Split(c.Query("emotions"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			emotions = append(emotions, models.EmotionType(strings.ToUpper(e)))
		}
	}

	trends, err := h.analyticsService.GetTrends(c.Request.Context(), userID, w, emotions, calendar.Granularity(c.Query("period")))
	if err != nil {
		writeError(c, "get trends", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trends": trends,
		"start":  w.Start,
		"end":    w.End,
	})
}

// GetPatterns returns recurring emotional patterns
// GET /api/v1/analytics/patterns?start&end&type=daily&min_occurrences=3
func (h *AnalyticsHandler) GetPatterns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}
	minOccurrences, ferr := queryInt(c, "min_occurrences", 0)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	pt := models.PatternType(strings.ToLower(c.DefaultQuery("type", string(models.PatternDaily))))
	patterns, err := h.analyticsService.DetectPatterns(c.Request.Context(), userID, w, pt, minOccurrences)
	if err != nil {
		writeError(c, "detect patterns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}
