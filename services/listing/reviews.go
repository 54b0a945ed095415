package listing

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/meghashyamc/schoolfinder/db/catalog"
)

const (
	anonymousAuthor = "Visiteur"
	minRating       = 1
	maxRating       = 5
)

type ReviewInput struct {
	Author  string
	Rating  float64
	Comment string
}

// AddReview attaches a review to an approved establishment.
func (s *Service) AddReview(ctx context.Context, establishmentID uint64, input ReviewInput) (*catalog.Review, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, &catalog.ValidationError{Field: "comment", Reason: "a comment is required"}
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, &catalog.ValidationError{Field: "rating", Reason: "rating must be between 1 and 5"}
	}

	if _, err := s.approvedEstablishment(ctx, establishmentID); err != nil {
		return nil, err
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = anonymousAuthor
	}

	review, err := store.AddReview(ctx, catalog.Review{
		EstablishmentID: establishmentID,
		Author:          author,
		Rating:          input.Rating,
		Comment:         comment,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("added review", "id", review.ID, "establishment_id", establishmentID)
	return review, nil
}

func (s *Service) ListReviews(ctx context.Context) ([]catalog.Review, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}

	return store.ListAllReviews(ctx)
}

func (s *Service) DeleteReview(ctx context.Context, id uint64) error {
	store, err := s.writable()
	if err != nil {
		return err
	}

	if err := store.DeleteReview(ctx, id); err != nil {
		return err
	}

	s.logger.Info("deleted review", "id", id)
	return nil
}

func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}
