package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// AchievementHandler handles achievement HTTP requests
type AchievementHandler struct {
	achievementService service.AchievementService
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(achievementService service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// ListAchievements handles GET /api/v1/achievements?page&page_size
func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var fields []apierror.FieldError
	page, ferr := queryInt(c, "page", 1)
	if ferr != nil {
		fields = append(fields, *ferr)
	}
	pageSize, ferr := queryInt(c, "page_size", service.DefaultPageSize)
	if ferr != nil {
		fields = append(fields, *ferr)
	}
	if len(fields) > 0 {
		writeFieldErrors(c, fields)
		return
	}

	result, err := h.achievementService.ListAchievements(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		writeError(c, "list achievements", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
