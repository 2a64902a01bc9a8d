package api

import (
	"net/http"

	"clinical-dashboard/internal/logging"

	"github.com/gin-gonic/gin"
)

func NewRouter(logger *logging.Logger, basePath string, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group(basePath)
	{
		// Patients
		api.GET("/patients", h.ListPatients)
		api.GET("/patients/:id", h.GetPatient)

		// Dashboard
		api.GET("/overview", h.GetOverview)
		api.GET("/alerts/grouped", h.GetGroupedAlerts)

		// Classification
		api.POST("/classify/vitals", h.ClassifyVitals)
		api.GET("/classify/risk/:level", h.ClassifyRisk)

		// Diagnostics
		api.GET("/anomalies", h.ListAnomalies)

		// Live alerts
		api.GET("/ws/alerts", h.StreamAlerts)
	}
	return r
}
