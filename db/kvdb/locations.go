package kvdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	bolt "go.etcd.io/bbolt"
)

func (b *BoltDB) CreateLocation(ctx context.Context, location catalog.Location) (*catalog.Location, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}

	err := b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, locationsBucket)
		if err != nil {
			return err
		}

		id, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate location id: %w", err)
		}
		location.ID = id

		return putJSON(bucket, itob(id), location)
	})
	if err != nil {
		b.logger.Error("failed to create location", "city", location.City, "err", err.Error())
		return nil, err
	}

	return &location, nil
}

func (b *BoltDB) ResolveLocation(ctx context.Context, id uint64) (*catalog.Location, error) {
	var location catalog.Location
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, locationsBucket)
		if err != nil {
			return err
		}

		found, err := getJSON(bucket, itob(id), &location)
		if err != nil {
			return err
		}
		if !found {
			return &catalog.NotFoundError{Entity: "location", ID: idString(id)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// ListLocations returns every location ordered by city, then district.
func (b *BoltDB) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	var locations []catalog.Location
	err := b.store.View(func(tx *bolt.Tx) error {
		byID, err := loadLocations(tx)
		if err != nil {
			return err
		}
		locations = make([]catalog.Location, 0, len(byID))
		for _, location := range byID {
			locations = append(locations, location)
		}
		return nil
	})
	if err != nil {
		b.logger.Error("failed to list locations", "err", err.Error())
		return nil, err
	}

	sort.Slice(locations, func(i, j int) bool {
		if locations[i].City != locations[j].City {
			return locations[i].City < locations[j].City
		}
		if locations[i].District != locations[j].District {
			return locations[i].District < locations[j].District
		}
		return locations[i].ID < locations[j].ID
	})

	return locations, nil
}

func (b *BoltDB) ListOfferings(ctx context.Context) ([]catalog.Offering, error) {
	offerings := []catalog.Offering{}
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, offeringsBucket)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, value []byte) error {
			var offering catalog.Offering
			if err := json.Unmarshal(value, &offering); err != nil {
				return fmt.Errorf("failed to unmarshal offering: %w", err)
			}
			offerings = append(offerings, offering)
			return nil
		})
	})
	if err != nil {
		b.logger.Error("failed to list offerings", "err", err.Error())
		return nil, err
	}

	sort.Slice(offerings, func(i, j int) bool { return offerings[i].Name < offerings[j].Name })

	return offerings, nil
}

func loadLocations(tx *bolt.Tx) (map[uint64]catalog.Location, error) {
	bucket, err := getBucket(tx, locationsBucket)
	if err != nil {
		return nil, err
	}

	locations := make(map[uint64]catalog.Location)
	err = bucket.ForEach(func(key, value []byte) error {
		var location catalog.Location
		if err := json.Unmarshal(value, &location); err != nil {
			return fmt.Errorf("failed to unmarshal location %d: %w", btoi(key), err)
		}
		locations[location.ID] = location
		return nil
	})

	return locations, err
}

func loadOfferingNames(tx *bolt.Tx) (map[uint64]string, error) {
	bucket, err := getBucket(tx, offeringsBucket)
	if err != nil {
		return nil, err
	}

	names := make(map[uint64]string)
	err = bucket.ForEach(func(key, value []byte) error {
		var offering catalog.Offering
		if err := json.Unmarshal(value, &offering); err != nil {
			return fmt.Errorf("failed to unmarshal offering %d: %w", btoi(key), err)
		}
		names[offering.ID] = offering.Name
		return nil
	})

	return names, err
}

// offeringID finds an offering by its folded name or creates it.
func offeringID(tx *bolt.Tx, name string) (uint64, error) {
	names, err := getBucket(tx, offeringNamesBucket)
	if err != nil {
		return 0, err
	}
	offerings, err := getBucket(tx, offeringsBucket)
	if err != nil {
		return 0, err
	}

	key := []byte(catalog.Fold(name))
	if existing := names.Get(key); existing != nil {
		return btoi(existing), nil
	}

	id, err := offerings.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate offering id: %w", err)
	}
	if err := putJSON(offerings, itob(id), catalog.Offering{ID: id, Name: name}); err != nil {
		return 0, err
	}
	if err := names.Put(key, itob(id)); err != nil {
		return 0, err
	}

	return id, nil
}
