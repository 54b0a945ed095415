package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/validation"
)

type ReviewRequest struct {
	Author  string  `json:"author" validate:"max=100"`
	Rating  float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment string  `json:"comment" validate:"required,max=2000"`
}

func SetupEstablishments(router gin.IRouter, logger logger.Logger, service *listing.Service) {
	router.GET("/metadata", handleMetadata(service, logger))
	router.GET("/names", handleNames(service, logger))
	router.GET("/locations", handleLocations(service, logger))
	router.GET("/establishments/:id", handleEstablishmentDetail(service, logger))
}

func SetupReviews(router gin.IRouter, logger logger.Logger, service *listing.Service, validator *validation.Validator) {
	router.POST("/establishments/:id/reviews", handleAddReview(service, logger, validator))
}

func handleMetadata(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		metadata, err := service.Metadata(c.Request.Context())
		if err != nil {
			writeServiceError(c, logger, err, "metadata")
			return
		}
		writeResponse(c, metadata, http.StatusOK)
	}
}

func handleNames(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := service.Names(c.Request.Context())
		if err != nil {
			writeServiceError(c, logger, err, "list names")
			return
		}
		writeResponse(c, names, http.StatusOK)
	}
}

func handleLocations(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		locations, err := service.Locations(c.Request.Context())
		if err != nil {
			writeServiceError(c, logger, err, "list locations")
			return
		}
		writeResponse(c, locations, http.StatusOK)
	}
}

func handleEstablishmentDetail(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, logger)
		if !ok {
			return
		}

		detail, err := service.Detail(c.Request.Context(), id)
		if err != nil {
			writeServiceError(c, logger, err, "establishment detail")
			return
		}
		writeResponse(c, detail, http.StatusOK)
	}
}

func handleAddReview(service *listing.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, logger)
		if !ok {
			return
		}

		request := ReviewRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from review request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "failed to extract request body parameters")
			return
		}
		if !validate(c, logger, validator, request) {
			return
		}

		review, err := service.AddReview(c.Request.Context(), id, listing.ReviewInput{
			Author:  request.Author,
			Rating:  request.Rating,
			Comment: request.Comment,
		})
		if err != nil {
			writeServiceError(c, logger, err, "add review")
			return
		}
		writeResponse(c, review, http.StatusCreated)
	}
}
