package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapeui/api/handler"
	"github.com/use-agent/scrapeui/api/middleware"
	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/metrics"
	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Session
//
// Health and metrics sit outside the session group so probes do not mint
// sessions.
func NewRouter(sc handler.Scraper, store *session.Store, presets []models.Preset, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(store, startTime))
	v1.GET("/presets", handler.Presets(presets))

	stateful := v1.Group("")
	stateful.Use(middleware.Session(store))

	stateful.POST("/scrape", handler.Scrape(sc))
	stateful.GET("/history", handler.History())
	stateful.GET("/results", handler.Results())
	stateful.GET("/results/download/:format", handler.Download())

	return r
}
