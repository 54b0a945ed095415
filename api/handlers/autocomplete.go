package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/suggest"
)

func SetupAutocomplete(router gin.IRouter, logger logger.Logger, service *suggest.Service) {
	router.GET("/autocomplete/establishments", handleAutocompleteEstablishments(service, logger))
	router.GET("/autocomplete/locations", handleAutocompleteLocations(service, logger))
}

func handleAutocompleteEstablishments(service *suggest.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := service.Establishments(c.Query("q"))
		if err != nil {
			writeServiceError(c, logger, err, "establishment autocomplete")
			return
		}
		writeResponse(c, names, http.StatusOK)
	}
}

func handleAutocompleteLocations(service *suggest.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		locations, err := service.Locations(c.Query("q"))
		if err != nil {
			writeServiceError(c, logger, err, "location autocomplete")
			return
		}
		writeResponse(c, locations, http.StatusOK)
	}
}
