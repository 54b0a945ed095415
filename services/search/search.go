package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
)

var ErrInvalidOrigin = errors.New("latitude and longitude are required and must be valid coordinates")

// Query is a proximity search. Every non-empty filter must match (AND);
// LocationID zero means no location filter.
type Query struct {
	Origin        Point
	Level         string
	Name          string
	OwnershipType string
	City          string
	District      string
	Offering      string
	LocationID    uint64
}

type ResultRow struct {
	ID            uint64                `json:"id"`
	Name          string                `json:"name"`
	Level         catalog.Level         `json:"level"`
	OwnershipType catalog.OwnershipType `json:"ownership_type"`
	City          string                `json:"city"`
	District      string                `json:"district"`
	Latitude      float64               `json:"latitude"`
	Longitude     float64               `json:"longitude"`
	Distance      float64               `json:"distance"`
	Offerings     []string              `json:"offerings"`
}

// Engine holds no state between calls and is safe for concurrent use.
type Engine struct {
	logger  logger.Logger
	catalog catalog.Reader
}

func New(logger logger.Logger, reader catalog.Reader) *Engine {
	return &Engine{
		logger:  logger,
		catalog: reader,
	}
}

// Search returns the approved establishments matching query, nearest first.
// An unknown LocationID yields an empty result, not an error.
func (e *Engine) Search(ctx context.Context, query Query) ([]ResultRow, error) {
	if !query.Origin.valid() {
		return nil, ErrInvalidOrigin
	}

	filter, err := e.compileFilter(ctx, query)
	if errors.Is(err, catalog.ErrNotFound) {
		e.logger.Info("location filter does not resolve, returning no results", "location_id", query.LocationID)
		return []ResultRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	establishments, err := e.catalog.ListApprovedEstablishments(ctx)
	if err != nil {
		e.logger.Error("failed to list approved establishments", "err", err.Error())
		return nil, fmt.Errorf("failed to list approved establishments: %w", err)
	}

	results := make([]ResultRow, 0, len(establishments))
	for _, establishment := range establishments {
		if establishment.Status != catalog.StatusApproved || establishment.Location == nil {
			continue
		}
		if !filter.matches(establishment) {
			continue
		}
		results = append(results, newResultRow(establishment, query.Origin))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	e.logger.Debug("search completed", "candidates", len(establishments), "results", len(results))

	return results, nil
}

// filter holds the folded filter values; empty fields do not constrain.
type filter struct {
	level     string
	name      string
	ownership string
	city      string
	district  string
	offering  string
}

func (e *Engine) compileFilter(ctx context.Context, query Query) (*filter, error) {
	f := &filter{
		level:     catalog.Fold(query.Level),
		name:      catalog.Fold(query.Name),
		ownership: canonicalOwnership(query.OwnershipType),
		city:      catalog.Fold(query.City),
		district:  catalog.Fold(query.District),
		offering:  catalog.Fold(query.Offering),
	}

	if query.LocationID == 0 {
		return f, nil
	}

	location, err := e.catalog.ResolveLocation(ctx, query.LocationID)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			e.logger.Error("failed to resolve location", "location_id", query.LocationID, "err", err.Error())
			return nil, fmt.Errorf("failed to resolve location %d: %w", query.LocationID, err)
		}
		return nil, err
	}

	// the stored pair replaces whatever city/district text was sent
	f.city = catalog.Fold(location.City)
	f.district = catalog.Fold(location.District)

	return f, nil
}

func (f *filter) matches(establishment catalog.Establishment) bool {
	if !contains(string(establishment.Level), f.level) {
		return false
	}
	if !contains(establishment.Name, f.name) {
		return false
	}
	if f.ownership != "" && canonicalOwnership(string(establishment.OwnershipType)) != f.ownership {
		return false
	}
	if f.city != "" || f.district != "" {
		if establishment.Location == nil {
			return false
		}
		if !contains(establishment.Location.City, f.city) || !contains(establishment.Location.District, f.district) {
			return false
		}
	}
	if f.offering != "" && !anyContains(establishment.Offerings, f.offering) {
		return false
	}

	return true
}

func anyContains(values []string, foldedNeedle string) bool {
	for _, value := range values {
		if contains(value, foldedNeedle) {
			return true
		}
	}

	return false
}

func newResultRow(establishment catalog.Establishment, origin Point) ResultRow {
	location := establishment.Location
	offerings := establishment.Offerings
	if offerings == nil {
		offerings = []string{}
	}

	return ResultRow{
		ID:            establishment.ID,
		Name:          establishment.Name,
		Level:         establishment.Level,
		OwnershipType: establishment.OwnershipType,
		City:          location.City,
		District:      location.District,
		Latitude:      location.Latitude,
		Longitude:     location.Longitude,
		Distance:      roundTo(Haversine(origin, Point{Latitude: location.Latitude, Longitude: location.Longitude}), 2),
		Offerings:     offerings,
	}
}
