package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// CheckInHandler handles emotional check-in HTTP requests
type CheckInHandler struct {
	checkInService service.CheckInService
	params         Params
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkInService service.CheckInService, params Params) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService, params: params}
}

// CreateCheckIn handles POST /api/v1/checkins
func (h *CheckInHandler) CreateCheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	loc, ferr := h.params.location(c)
	if ferr != nil {
		writeFieldErrors(c, []apierror.FieldError{*ferr})
		return
	}

	var req models.CreateCheckInRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.checkInService.CreateCheckIn(c.Request.Context(), userID, &req, loc)
	if err != nil {
		writeError(c, "create check-in", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetCheckIn handles GET /api/v1/checkins/:id
func (h *CheckInHandler) GetCheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(apierror.GetRequestID(c), "id", id))
		return
	}

	checkin, err := h.checkInService.GetCheckIn(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, "get check-in", err)
		return
	}
	c.JSON(http.StatusOK, checkin)
}

// ListCheckIns handles GET /api/v1/checkins?start&end&tz
func (h *CheckInHandler) ListCheckIns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, fields := h.params.window(c)
	if fields != nil {
		writeFieldErrors(c, fields)
		return
	}

	checkins, err := h.checkInService.ListCheckIns(c.Request.Context(), userID, w)
	if err != nil {
		writeError(c, "list check-ins", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkins": checkins,
		"count":    len(checkins),
	})
}
