package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/search"
	"github.com/meghashyamc/schoolfinder/validation"
)

// SearchRequest accepts the French parameter names sent by the web client
// as well as their English equivalents.
type SearchRequest struct {
	Latitude      string `form:"lat" validate:"required"`
	Longitude     string `form:"lon" validate:"required"`
	Level         string `form:"level" validate:"max=100"`
	Name          string `form:"name" validate:"max=200"`
	OwnershipType string `form:"ownership_type" validate:"max=50"`
	City          string `form:"city" validate:"max=100"`
	District      string `form:"district" validate:"max=100"`
	Offering      string `form:"offering" validate:"max=200"`
	LocationID    string `form:"location_id" validate:"valid_id"`
}

func newSearchRequest(c *gin.Context) SearchRequest {
	return SearchRequest{
		Latitude:      queryAlias(c, "lat", "latitude"),
		Longitude:     queryAlias(c, "lon", "longitude"),
		Level:         queryAlias(c, "niveau", "level"),
		Name:          queryAlias(c, "nom", "name"),
		OwnershipType: queryAlias(c, "type", "ownership_type"),
		City:          queryAlias(c, "ville", "city"),
		District:      queryAlias(c, "quartier", "district"),
		Offering:      queryAlias(c, "formation", "offering"),
		LocationID:    queryAlias(c, "localisation", "location_id"),
	}
}

func (r SearchRequest) toQuery() (search.Query, error) {
	latitude, err := parseCoordinate("lat", r.Latitude)
	if err != nil {
		return search.Query{}, err
	}
	longitude, err := parseCoordinate("lon", r.Longitude)
	if err != nil {
		return search.Query{}, err
	}

	query := search.Query{
		Origin:        search.Point{Latitude: latitude, Longitude: longitude},
		Level:         r.Level,
		Name:          r.Name,
		OwnershipType: r.OwnershipType,
		City:          r.City,
		District:      r.District,
		Offering:      r.Offering,
	}
	if r.LocationID != "" {
		query.LocationID, err = validation.ParseID(r.LocationID)
		if err != nil {
			return search.Query{}, err
		}
	}

	return query, nil
}

// parseCoordinate accepts any decimal float; bounds are checked by the engine.
func parseCoordinate(field string, value string) (float64, error) {
	coordinate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("field '%s' must be a number", field)
	}

	return coordinate, nil
}

func SetupSearch(router gin.IRouter, logger logger.Logger, engine *search.Engine, validator *validation.Validator) {
	router.GET("/search", handleSearch(engine, logger, validator))
}

func handleSearch(engine *search.Engine, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := newSearchRequest(c)
		if !validate(c, logger, validator, request) {
			return
		}

		query, err := request.toQuery()
		if err != nil {
			logger.Warn("could not parse search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}

		results, err := engine.Search(c.Request.Context(), query)
		if err != nil {
			writeServiceError(c, logger, err, "search")
			return
		}

		writeResponse(c, results, http.StatusOK)
	}
}
