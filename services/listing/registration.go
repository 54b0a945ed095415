package listing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"golang.org/x/crypto/bcrypt"
)

// Registration is a school owner's request to be listed. It is stored as
// pending until an administrator approves it.
type Registration struct {
	Email         string
	Password      string
	Name          string
	Phone         string
	Level         string
	OwnershipType string
	Description   string
	Website       string
	LocationID    uint64
	Offerings     []string
	Authorization []byte
	ContentType   string
}

func (r Registration) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"email", r.Email},
		{"password", r.Password},
		{"name", r.Name},
		{"phone", r.Phone},
		{"level", r.Level},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &catalog.ValidationError{Field: f.field, Reason: "missing required field '" + f.field + "'"}
		}
	}
	if r.LocationID == 0 {
		return &catalog.ValidationError{Field: "location_id", Reason: "missing required field 'location_id'"}
	}
	if len(r.Authorization) == 0 {
		return &catalog.ValidationError{Field: "authorization", Reason: "an authorization document is required"}
	}

	return nil
}

func (s *Service) Register(ctx context.Context, registration Registration) (*catalog.Establishment, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}
	if err := registration.validate(); err != nil {
		return nil, err
	}

	level, err := catalog.ParseLevel(registration.Level)
	if err != nil {
		return nil, &catalog.ValidationError{Field: "level", Reason: err.Error()}
	}

	var ownership catalog.OwnershipType
	if strings.TrimSpace(registration.OwnershipType) != "" {
		ownership, err = catalog.ParseOwnershipType(registration.OwnershipType)
		if err != nil {
			return nil, &catalog.ValidationError{Field: "ownership_type", Reason: err.Error()}
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &catalog.ValidationError{Field: "password", Reason: "password is too long"}
		}
		s.logger.Error("failed to hash owner password", "err", err.Error())
		return nil, err
	}

	contentType := registration.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	created, err := store.CreateEstablishment(ctx, catalog.NewEstablishment{
		Name:          strings.TrimSpace(registration.Name),
		Phone:         strings.TrimSpace(registration.Phone),
		Level:         level,
		OwnershipType: ownership,
		Description:   strings.TrimSpace(registration.Description),
		Website:       strings.TrimSpace(registration.Website),
		LocationID:    registration.LocationID,
		Offerings:     registration.Offerings,
		Owner: catalog.Owner{
			Name:         strings.TrimSpace(registration.Name),
			Email:        strings.TrimSpace(registration.Email),
			PasswordHash: string(passwordHash),
		},
		Document: &catalog.Document{
			ID:          uuid.NewString(),
			ContentType: contentType,
			Data:        registration.Authorization,
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registered establishment", "id", created.ID, "name", created.Name)
	return created, nil
}
