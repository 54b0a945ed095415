package kvdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	bolt "go.etcd.io/bbolt"
)

func (b *BoltDB) AddReview(ctx context.Context, review catalog.Review) (*catalog.Review, error) {
	err := b.store.Update(func(tx *bolt.Tx) error {
		if _, err := getEstablishmentRecord(tx, review.EstablishmentID); err != nil {
			return err
		}

		reviews, err := getBucket(tx, reviewsBucket)
		if err != nil {
			return err
		}
		review.ID, err = reviews.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate review id: %w", err)
		}

		return putJSON(reviews, itob(review.ID), review)
	})
	if err != nil {
		b.logger.Warn("failed to add review", "establishment_id", review.EstablishmentID, "err", err.Error())
		return nil, err
	}

	return &review, nil
}

func (b *BoltDB) ListReviews(ctx context.Context, establishmentID uint64) ([]catalog.Review, error) {
	return b.listReviews(func(review catalog.Review) bool {
		return review.EstablishmentID == establishmentID
	})
}

func (b *BoltDB) ListAllReviews(ctx context.Context) ([]catalog.Review, error) {
	return b.listReviews(func(catalog.Review) bool { return true })
}

func (b *BoltDB) listReviews(keep func(catalog.Review) bool) ([]catalog.Review, error) {
	reviews := []catalog.Review{}
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, reviewsBucket)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(key, value []byte) error {
			var review catalog.Review
			if err := json.Unmarshal(value, &review); err != nil {
				return fmt.Errorf("failed to unmarshal review %d: %w", btoi(key), err)
			}
			if keep(review) {
				reviews = append(reviews, review)
			}
			return nil
		})
	})
	if err != nil {
		b.logger.Error("failed to list reviews", "err", err.Error())
		return nil, err
	}

	return reviews, nil
}

func (b *BoltDB) DeleteReview(ctx context.Context, id uint64) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		reviews, err := getBucket(tx, reviewsBucket)
		if err != nil {
			return err
		}
		if reviews.Get(itob(id)) == nil {
			return &catalog.NotFoundError{Entity: "review", ID: idString(id)}
		}

		if err := reviews.Delete(itob(id)); err != nil {
			b.logger.Error("failed to delete review", "id", id, "err", err.Error())
			return fmt.Errorf("failed to delete review %d: %w", id, err)
		}
		return nil
	})
}
