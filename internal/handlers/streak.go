package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// StreakHandler handles streak HTTP requests
type StreakHandler struct {
	streakService service.StreakService
	params        Params
}

// NewStreakHandler creates a new streak handler
func NewStreakHandler(streakService service.StreakService, params Params) *StreakHandler {
	return &StreakHandler{streakService: streakService, params: params}
}

// GetStreak handles GET /api/v1/streak
func (h *StreakHandler) GetStreak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	streak, err := h.streakService.GetStreak(c.Request.Context(), userID, loc)
	if err != nil {
		writeError(c, "get streak", err)
		return
	}
	c.JSON(http.StatusOK, streak)
}

// RecordActivity handles POST /api/v1/streak/activity
func (h *StreakHandler) RecordActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	var req models.RecordActivityRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}

	day, err := h.params.parseDay(req.Date, loc)
	if err != nil {
		writeFieldErrors(c, []apierror.FieldError{{Field: "date", Message: "must be YYYY-MM-DD or RFC3339", Code: "invalid_format"}})
		return
	}

	update, err := h.streakService.RecordActivity(c.Request.Context(), userID, day, req.UseGracePeriod, loc)
	if err != nil {
		writeError(c, "record streak activity", err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// ResetStreak handles POST /api/v1/streak/reset
func (h *StreakHandler) ResetStreak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	update, err := h.streakService.ResetStreak(c.Request.Context(), userID, loc)
	if err != nil {
		writeError(c, "reset streak", err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// UseGracePeriod handles POST /api/v1/streak/grace
func (h *StreakHandler) UseGracePeriod(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	update, err := h.streakService.UseGracePeriod(c.Request.Context(), userID, loc)
	if err != nil {
		writeError(c, "use grace period", err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// NextMilestone handles GET /api/v1/streak/milestone
func (h *StreakHandler) NextMilestone(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.streakService.NextMilestone(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "get next milestone", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
