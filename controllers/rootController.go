package controllers

import (
	"SmartClinic/metrics"
	"SmartClinic/middlewares"
	"net/http"

	"github.com/gin-gonic/gin"
)

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	middlewares.RespondJSON(c, http.StatusOK, "Welcome to SmartClinic", gin.H{"status": "ok"})
}

// SetupRootRoute sets up the welcome route and the metrics endpoint. An empty
// metricsToken leaves /metrics open.
func SetupRootRoute(router *gin.Engine, collector *metrics.Collector, metricsToken string) {
	router.GET("/", rootHandler)
	router.GET("/metrics", middlewares.ValidateBearerToken(metricsToken), gin.WrapH(collector.Handler()))
}
