package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/services/search"
	"github.com/meghashyamc/schoolfinder/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeResponse writes data as the bare response body.
func writeResponse(c *gin.Context, data any, statusCode int) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return

	}

	c.JSON(statusCode, data)
}

func writeError(c *gin.Context, statusCode int, message string) {
	c.Abort()
	c.JSON(statusCode, errorResponse{Error: message})
}

// writeServiceError maps catalog errors onto HTTP statuses. Anything it does not
// recognise is a data access failure and its details stay in the logs.
func writeServiceError(c *gin.Context, logger logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, catalog.ErrInvalidKey), errors.Is(err, search.ErrInvalidOrigin):
		logger.Warn(action+" rejected", "err", err.Error())
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		logger.Info(action+" found nothing", "err", err.Error())
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrConflict):
		logger.Warn(action+" conflicted", "err", err.Error())
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, listing.ErrReadOnly):
		logger.Warn(action+" refused", "err", err.Error())
		writeError(c, http.StatusMethodNotAllowed, err.Error())
	default:
		logger.Error(action+" failed", "err", err.Error())
		writeError(c, http.StatusInternalServerError, action+" failed")
	}
}

// validate runs the validator and answers 400 on failure.
func validate(c *gin.Context, logger logger.Logger, validator *validation.Validator, request any) bool {
	if err := validator.Validate(request); err != nil {
		logger.Warn("could not validate request", "path", c.Request.URL.Path, "err", err.Error())
		writeError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses the :id path parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context, logger logger.Logger) (uint64, bool) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		logger.Warn("invalid id in path", "id", c.Param("id"))
		writeError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

// queryAlias returns the first non-empty value among the given query keys.
func queryAlias(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if value := c.Query(key); value != "" {
			return value
		}
	}
	return ""
}

func formAlias(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if value := c.PostForm(key); value != "" {
			return value
		}
	}
	return ""
}

// formArrayAlias returns the values of the first given form key that has any.
func formArrayAlias(c *gin.Context, keys ...string) []string {
	for _, key := range keys {
		if values := c.PostFormArray(key); len(values) > 0 {
			return values
		}
	}
	return []string{}
}
