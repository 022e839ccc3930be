package server

import (
	"net/http"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	handlers "github.com/CodeAndHammer/mysterybox/internal/handlers"
	middleware "github.com/CodeAndHammer/mysterybox/internal/middleware"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
	util "github.com/CodeAndHammer/mysterybox/internal/util"
)

// NewRouter wires the middleware chain and the API routes. gatherer serves
// /metrics; pass nil to leave the endpoint out.
func NewRouter(app *models.App, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(app))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.NoStore())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{constants.RouteMetrics})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	wrap := func(h func(*models.App, *gin.Context)) gin.HandlerFunc {
		return func(c *gin.Context) { h(app, c) }
	}

	router.GET(constants.RoutePing, wrap(handlers.PingHandler))
	router.POST(constants.RouteRegister, middleware.RateLimit(app), wrap(handlers.RegisterHandler))
	router.POST(constants.RouteSelectBox, middleware.RateLimit(app), wrap(handlers.SelectBoxHandler))
	router.GET(constants.RouteReset, middleware.RateLimit(app), wrap(handlers.ResetHandler))
	router.POST(constants.RouteReset, middleware.RateLimit(app), wrap(handlers.ResetHandler))
	router.GET(constants.RouteHealthz, wrap(handlers.HealthzHandler))
	if gatherer != nil {
		router.GET(constants.RouteMetrics, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found."})
	})

	return router
}
