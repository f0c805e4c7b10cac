package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapeui/models"
)

// Presets returns a handler for GET /api/v1/presets.
func Presets(presets []models.Preset) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.PresetsResponse{Presets: presets})
	}
}
