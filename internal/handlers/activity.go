package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// ActivityHandler handles activity ingestion
type ActivityHandler struct {
	activityService service.ActivityService
	params          Params
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService service.ActivityService, params Params) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, params: params}
}

// RecordActivity handles POST /api/v1/activities
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	var req models.CreateActivityRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.activityService.RecordActivity(c.Request.Context(), userID, &req, loc)
	if err != nil {
		writeError(c, "record activity", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
