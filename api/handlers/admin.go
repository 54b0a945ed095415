package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/validation"
)

type ListEstablishmentsRequest struct {
	Status string `form:"status" validate:"valid_status"`
}

type CreateLocationRequest struct {
	City      string   `json:"city" validate:"required,max=100"`
	District  string   `json:"district" validate:"max=100"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

type approvalResponse struct {
	ID     uint64                 `json:"id"`
	Status catalog.ApprovalStatus `json:"status"`
}

// SetupAdmin registers the moderation routes; router is expected to be
// already guarded by authentication.
func SetupAdmin(router gin.IRouter, logger logger.Logger, service *listing.Service, validator *validation.Validator) {
	router.GET("/establishments", handleListEstablishments(service, logger, validator))
	router.PUT("/establishments/:id/approve", handleSetApproval(service, logger, catalog.StatusApproved))
	router.PUT("/establishments/:id/reject", handleSetApproval(service, logger, catalog.StatusRejected))
	router.GET("/documents/:id", handleGetDocument(service, logger))
	router.POST("/locations", handleCreateLocation(service, logger, validator))
	router.GET("/reviews", handleListReviews(service, logger))
	router.DELETE("/reviews/:id", handleDeleteReview(service, logger))
}

func handleListEstablishments(service *listing.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ListEstablishmentsRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from admin list request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "failed to extract request parameters")
			return
		}
		if !validate(c, logger, validator, request) {
			return
		}

		status := catalog.StatusPending
		if request.Status != "" {
			// valid_status already accepted it
			status, _ = catalog.ParseApprovalStatus(request.Status)
		}

		establishments, err := service.ListByStatus(c.Request.Context(), status)
		if err != nil {
			writeServiceError(c, logger, err, "list establishments")
			return
		}
		writeResponse(c, establishments, http.StatusOK)
	}
}

func handleSetApproval(service *listing.Service, logger logger.Logger, status catalog.ApprovalStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, logger)
		if !ok {
			return
		}

		if err := service.SetApproval(c.Request.Context(), id, status); err != nil {
			writeServiceError(c, logger, err, "set approval")
			return
		}
		writeResponse(c, approvalResponse{ID: id, Status: status}, http.StatusOK)
	}
}

func handleGetDocument(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := service.Document(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, logger, err, "get document")
			return
		}
		c.Data(http.StatusOK, doc.ContentType, doc.Data)
	}
}

func handleCreateLocation(service *listing.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := CreateLocationRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from create location request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "failed to extract request body parameters")
			return
		}
		if !validate(c, logger, validator, request) {
			return
		}

		location, err := service.CreateLocation(c.Request.Context(), catalog.Location{
			City:      request.City,
			District:  request.District,
			Latitude:  *request.Latitude,
			Longitude: *request.Longitude,
		})
		if err != nil {
			writeServiceError(c, logger, err, "create location")
			return
		}
		writeResponse(c, location, http.StatusCreated)
	}
}

func handleListReviews(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := service.ListReviews(c.Request.Context())
		if err != nil {
			writeServiceError(c, logger, err, "list reviews")
			return
		}
		writeResponse(c, reviews, http.StatusOK)
	}
}

func handleDeleteReview(service *listing.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, logger)
		if !ok {
			return
		}

		if err := service.DeleteReview(c.Request.Context(), id); err != nil {
			writeServiceError(c, logger, err, "delete review")
			return
		}
		writeResponse(c, nil, http.StatusNoContent)
	}
}
