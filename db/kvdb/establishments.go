package kvdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	bolt "go.etcd.io/bbolt"
)

// establishmentRecord is the stored form; the location and offerings are
// referenced by id and resolved on read.
type establishmentRecord struct {
	ID            uint64                 `json:"id"`
	Name          string                 `json:"name"`
	Phone         string                 `json:"phone"`
	CreatedOn     time.Time              `json:"created_on"`
	Level         catalog.Level          `json:"level"`
	OwnershipType catalog.OwnershipType  `json:"ownership_type"`
	Description   string                 `json:"description"`
	Website       string                 `json:"website,omitempty"`
	Status        catalog.ApprovalStatus `json:"status"`
	LocationID    uint64                 `json:"location_id,omitempty"`
	OfferingIDs   []uint64               `json:"offering_ids"`
	PhotoURLs     []string               `json:"photo_urls"`
	OwnerID       uint64                 `json:"owner_id,omitempty"`
	DocumentID    string                 `json:"document_id,omitempty"`
}

func (r *establishmentRecord) toEstablishment(locations map[uint64]catalog.Location, offeringNames map[uint64]string) catalog.Establishment {
	establishment := catalog.Establishment{
		ID:            r.ID,
		Name:          r.Name,
		Phone:         r.Phone,
		CreatedOn:     r.CreatedOn,
		Level:         r.Level,
		OwnershipType: r.OwnershipType,
		Description:   r.Description,
		Website:       r.Website,
		Status:        r.Status,
		Offerings:     make([]string, 0, len(r.OfferingIDs)),
		PhotoURLs:     append([]string{}, r.PhotoURLs...),
		DocumentID:    r.DocumentID,
	}

	if location, ok := locations[r.LocationID]; ok && r.LocationID != 0 {
		establishment.Location = &location
	}
	for _, id := range r.OfferingIDs {
		if name, ok := offeringNames[id]; ok {
			establishment.Offerings = append(establishment.Offerings, name)
		}
	}

	return establishment
}

// ListApprovedEstablishments reads the whole catalog in a single transaction:
// locations and offerings are loaded once and joined in memory.
func (b *BoltDB) ListApprovedEstablishments(ctx context.Context) ([]catalog.Establishment, error) {
	return b.listEstablishments(ctx, catalog.StatusApproved)
}

func (b *BoltDB) ListEstablishmentsByStatus(ctx context.Context, status catalog.ApprovalStatus) ([]catalog.Establishment, error) {
	return b.listEstablishments(ctx, status)
}

func (b *BoltDB) listEstablishments(ctx context.Context, status catalog.ApprovalStatus) ([]catalog.Establishment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	establishments := []catalog.Establishment{}
	err := b.store.View(func(tx *bolt.Tx) error {
		locations, err := loadLocations(tx)
		if err != nil {
			return err
		}
		offeringNames, err := loadOfferingNames(tx)
		if err != nil {
			return err
		}
		bucket, err := getBucket(tx, establishmentsBucket)
		if err != nil {
			return err
		}

		return bucket.ForEach(func(key, value []byte) error {
			var record establishmentRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("failed to unmarshal establishment %d: %w", btoi(key), err)
			}
			if record.Status != status {
				return nil
			}
			establishments = append(establishments, record.toEstablishment(locations, offeringNames))
			return nil
		})
	})
	if err != nil {
		b.logger.Error("failed to list establishments", "status", string(status), "err", err.Error())
		return nil, err
	}

	return establishments, nil
}

func (b *BoltDB) GetEstablishment(ctx context.Context, id uint64) (*catalog.Establishment, error) {
	var establishment catalog.Establishment
	err := b.store.View(func(tx *bolt.Tx) error {
		record, err := getEstablishmentRecord(tx, id)
		if err != nil {
			return err
		}

		locations, err := loadLocations(tx)
		if err != nil {
			return err
		}
		offeringNames, err := loadOfferingNames(tx)
		if err != nil {
			return err
		}

		establishment = record.toEstablishment(locations, offeringNames)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &establishment, nil
}

// CreateEstablishment stores the owner, the authorization document and a
// pending establishment atomically. A reused owner email is a conflict.
func (b *BoltDB) CreateEstablishment(ctx context.Context, input catalog.NewEstablishment) (*catalog.Establishment, error) {
	var created catalog.Establishment
	err := b.store.Update(func(tx *bolt.Tx) error {
		if input.LocationID != 0 {
			locations, err := getBucket(tx, locationsBucket)
			if err != nil {
				return err
			}
			if locations.Get(itob(input.LocationID)) == nil {
				return &catalog.NotFoundError{Entity: "location", ID: idString(input.LocationID)}
			}
		}

		ownerID, err := createOwner(tx, input.Owner)
		if err != nil {
			return err
		}

		record := establishmentRecord{
			Name:          input.Name,
			Phone:         input.Phone,
			CreatedOn:     time.Now().UTC().Truncate(24 * time.Hour),
			Level:         input.Level,
			OwnershipType: input.OwnershipType,
			Description:   input.Description,
			Website:       input.Website,
			Status:        catalog.StatusPending,
			LocationID:    input.LocationID,
			OfferingIDs:   []uint64{},
			PhotoURLs:     append([]string{}, input.PhotoURLs...),
			OwnerID:       ownerID,
		}

		if input.Document != nil {
			if err := putDocument(tx, *input.Document); err != nil {
				return err
			}
			record.DocumentID = input.Document.ID
		}

		seen := make(map[uint64]struct{})
		for _, name := range input.Offerings {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, err := offeringID(tx, name)
			if err != nil {
				return err
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			record.OfferingIDs = append(record.OfferingIDs, id)
		}

		establishments, err := getBucket(tx, establishmentsBucket)
		if err != nil {
			return err
		}
		record.ID, err = establishments.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate establishment id: %w", err)
		}
		if err := putJSON(establishments, itob(record.ID), record); err != nil {
			return err
		}

		locations, err := loadLocations(tx)
		if err != nil {
			return err
		}
		offeringNames, err := loadOfferingNames(tx)
		if err != nil {
			return err
		}
		created = record.toEstablishment(locations, offeringNames)
		return nil
	})
	if err != nil {
		b.logger.Warn("failed to create establishment", "name", input.Name, "err", err.Error())
		return nil, err
	}

	return &created, nil
}

// SetApprovalStatus overwrites the status; repeating the same transition is a no-op.
func (b *BoltDB) SetApprovalStatus(ctx context.Context, id uint64, status catalog.ApprovalStatus) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		record, err := getEstablishmentRecord(tx, id)
		if err != nil {
			return err
		}
		if record.Status == status {
			return nil
		}
		record.Status = status

		establishments, err := getBucket(tx, establishmentsBucket)
		if err != nil {
			return err
		}
		return putJSON(establishments, itob(id), record)
	})
}

func getEstablishmentRecord(tx *bolt.Tx, id uint64) (*establishmentRecord, error) {
	establishments, err := getBucket(tx, establishmentsBucket)
	if err != nil {
		return nil, err
	}

	var record establishmentRecord
	found, err := getJSON(establishments, itob(id), &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &catalog.NotFoundError{Entity: "establishment", ID: idString(id)}
	}

	return &record, nil
}

func createOwner(tx *bolt.Tx, owner catalog.Owner) (uint64, error) {
	owners, err := getBucket(tx, ownersBucket)
	if err != nil {
		return 0, err
	}
	emails, err := getBucket(tx, ownerEmailsBucket)
	if err != nil {
		return 0, err
	}

	emailKey := []byte(strings.ToLower(strings.TrimSpace(owner.Email)))
	if len(emailKey) == 0 {
		return 0, &catalog.InvalidKeyError{Key: owner.Email, Reason: "owner email cannot be empty"}
	}
	if emails.Get(emailKey) != nil {
		return 0, &catalog.ConflictError{Entity: "owner", Reason: "email is already registered"}
	}

	owner.ID, err = owners.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate owner id: %w", err)
	}
	if err := putJSON(owners, itob(owner.ID), owner); err != nil {
		return 0, err
	}
	if err := emails.Put(emailKey, itob(owner.ID)); err != nil {
		return 0, err
	}

	return owner.ID, nil
}
