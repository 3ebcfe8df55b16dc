package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// InsightsHandler serves generated insights and the combined dashboard
type InsightsHandler struct {
	analyticsService service.AnalyticsService
	params           Params
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(analyticsService service.AnalyticsService, params Params) *InsightsHandler {
	return &InsightsHandler{
		analyticsService: analyticsService,
		params:           params,
	}
}

// GetInsights returns insights for the authenticated user
// GET /api/v1/insights?start&end&limit
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}
	limit, ferr := queryInt(c, "limit", 0)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	insights, err := h.analyticsService.GetInsights(c.Request.Context(), userID, w, limit)
	if err != nil {
		writeError(c, "get insights", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// GetDashboard returns every report for the window in one response
// GET /api/v1/dashboard?start&end
func (h *InsightsHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}

	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context(), userID, w)
	if err != nil {
		writeError(c, "get dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
