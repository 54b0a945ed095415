package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/validation"
)

const maxAuthorizationSize = 10 << 20

type RegistrationRequest struct {
	Email         string `form:"email" validate:"required,email,max=254"`
	Password      string `form:"password" validate:"required,min=6,max=72"`
	Name          string `form:"name" validate:"required,max=200"`
	Phone         string `form:"phone" validate:"required,max=50"`
	Level         string `form:"level" validate:"required,valid_level"`
	OwnershipType string `form:"ownership_type" validate:"valid_ownership"`
	Description   string `form:"description" validate:"max=5000"`
	Website       string `form:"website" validate:"omitempty,url,max=500"`
	LocationID    string `form:"location_id" validate:"required,valid_id"`
}

type registrationResponse struct {
	ID      uint64 `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func newRegistrationRequest(c *gin.Context) RegistrationRequest {
	return RegistrationRequest{
		Email:         formAlias(c, "email"),
		Password:      formAlias(c, "password"),
		Name:          formAlias(c, "nom", "name"),
		Phone:         formAlias(c, "telephone", "phone"),
		Level:         formAlias(c, "niveau", "level"),
		OwnershipType: formAlias(c, "type", "ownership_type"),
		Description:   formAlias(c, "description"),
		Website:       formAlias(c, "site", "website"),
		LocationID:    formAlias(c, "localisation_id", "location_id"),
	}
}

func SetupRegistration(router gin.IRouter, logger logger.Logger, service *listing.Service, validator *validation.Validator) {
	router.POST("/register/establishment", handleRegisterEstablishment(service, logger, validator))
}

func handleRegisterEstablishment(service *listing.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(maxAuthorizationSize); err != nil {
			logger.Warn("could not parse registration form", "err", err.Error())
			writeError(c, http.StatusBadRequest, "expected a multipart form")
			return
		}

		request := newRegistrationRequest(c)
		if !validate(c, logger, validator, request) {
			return
		}

		fileHeader, err := authorizationFile(c)
		if err != nil {
			logger.Warn("registration without authorization document", "err", err.Error())
			writeError(c, http.StatusBadRequest, "an authorization document is required")
			return
		}
		if fileHeader.Size > maxAuthorizationSize {
			writeError(c, http.StatusBadRequest, "authorization document is too large")
			return
		}
		data, err := readFile(fileHeader)
		if err != nil {
			logger.Error("could not read authorization document", "err", err.Error())
			writeError(c, http.StatusBadRequest, "could not read authorization document")
			return
		}

		// valid_id already accepted it
		locationID, _ := validation.ParseID(request.LocationID)

		created, err := service.Register(c.Request.Context(), listing.Registration{
			Email:         request.Email,
			Password:      request.Password,
			Name:          request.Name,
			Phone:         request.Phone,
			Level:         request.Level,
			OwnershipType: request.OwnershipType,
			Description:   request.Description,
			Website:       request.Website,
			LocationID:    locationID,
			Offerings:     formArrayAlias(c, "formations", "offerings"),
			Authorization: data,
			ContentType:   fileHeader.Header.Get("Content-Type"),
		})
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Warn("registration references an unknown location", "location_id", locationID)
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeServiceError(c, logger, err, "registration")
			return
		}

		writeResponse(c, registrationResponse{
			ID:      created.ID,
			Status:  string(created.Status),
			Message: "registration received, pending approval",
		}, http.StatusCreated)
	}
}

func authorizationFile(c *gin.Context) (*multipart.FileHeader, error) {
	fileHeader, err := c.FormFile("authorization")
	if err == nil {
		return fileHeader, nil
	}
	return c.FormFile("autorisation")
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxAuthorizationSize+1))
}
