package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/api/handlers"
)

func (s *server) setupRoutes(router *gin.Engine) {
	router.GET("/health", health())
	router.GET("/metrics", metricsHandler())

	handlers.SetupSearch(router, s.logger, s.searchEngine, s.validator)
	handlers.SetupEstablishments(router, s.logger, s.listing)
	handlers.SetupAutocomplete(router, s.logger, s.suggest)

	// an external catalog is maintained elsewhere; only its reads are served
	if s.listing.ReadOnly() {
		s.logger.Info("catalog is read-only, registration, reviews and admin routes are disabled")
		return
	}

	handlers.SetupReviews(router, s.logger, s.listing, s.validator)
	handlers.SetupRegistration(router, s.logger, s.listing, s.validator)

	admin := router.Group("/admin", adminAuthMiddleware(s.cfg.GetAdminToken(), s.logger))
	handlers.SetupAdmin(admin, s.logger, s.listing, s.validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(_CORSMiddleware())
	router.Use(metricsMiddleware())

	return router
}
