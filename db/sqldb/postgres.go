package sqldb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/meghashyamc/schoolfinder/config"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const (
	queryApprovedEstablishments = `
		SELECT e.id, e.name, e.phone, e.created_on, e.level, e.ownership_type,
		       e.description, e.website, l.id, l.city, l.district, l.latitude, l.longitude
		FROM establishments e
		LEFT JOIN locations l ON l.id = e.location_id
		WHERE e.approval_status = $1
		ORDER BY e.id`

	queryApprovedOfferings = `
		SELECT eo.establishment_id, o.name
		FROM establishment_offerings eo
		JOIN offerings o ON o.id = eo.offering_id
		JOIN establishments e ON e.id = eo.establishment_id
		WHERE e.approval_status = $1
		ORDER BY eo.establishment_id, o.name`

	queryLocationByID = `
		SELECT id, city, district, latitude, longitude
		FROM locations
		WHERE id = $1`

	queryLocations = `
		SELECT id, city, district, latitude, longitude
		FROM locations
		ORDER BY city, district, id`

	queryOfferings = `
		SELECT id, name
		FROM offerings
		ORDER BY name`

	queryEstablishmentByID = `
		SELECT e.id, e.name, e.phone, e.created_on, e.level, e.ownership_type,
		       e.description, e.website, l.id, l.city, l.district, l.latitude, l.longitude,
		       e.approval_status
		FROM establishments e
		LEFT JOIN locations l ON l.id = e.location_id
		WHERE e.id = $1`

	queryEstablishmentOfferings = `
		SELECT o.name
		FROM establishment_offerings eo
		JOIN offerings o ON o.id = eo.offering_id
		WHERE eo.establishment_id = $1
		ORDER BY o.name`

	queryReviewsByEstablishment = `
		SELECT id, establishment_id, author, rating, comment, created_at
		FROM reviews
		WHERE establishment_id = $1
		ORDER BY id`
)

// PostgresCatalog reads the catalog from a PostgreSQL database owned by
// another system. It never writes to it.
type PostgresCatalog struct {
	db     *sql.DB
	logger logger.Logger
}

var _ catalog.Browser = (*PostgresCatalog)(nil)

func New(logger logger.Logger, cfg *config.Config) (*PostgresCatalog, error) {
	dsn := cfg.GetPostgresDSN()
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is not configured")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open postgres", "err", err.Error())
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.GetPostgresMaxConnections())
	db.SetMaxIdleConns(cfg.GetPostgresMaxIdle())
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewWithDB(logger, db), nil
}

func NewWithDB(logger logger.Logger, db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db, logger: logger}
}

func (p *PostgresCatalog) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func (p *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		p.logger.Error("failed to apply catalog schema", "err", err.Error())
		return fmt.Errorf("failed to apply catalog schema: %w", err)
	}

	return nil
}

func (p *PostgresCatalog) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// ListApprovedEstablishments issues two queries regardless of the catalog size:
// establishments joined with their location, then every offering link.
func (p *PostgresCatalog) ListApprovedEstablishments(ctx context.Context) ([]catalog.Establishment, error) {
	establishments, index, err := p.approvedEstablishments(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, queryApprovedOfferings, string(catalog.StatusApproved))
	if err != nil {
		p.logger.Error("failed to query offerings", "err", err.Error())
		return nil, fmt.Errorf("failed to query offerings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var establishmentID uint64
		var name string
		if err := rows.Scan(&establishmentID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan offering: %w", err)
		}
		if i, ok := index[establishmentID]; ok {
			establishments[i].Offerings = append(establishments[i].Offerings, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read offerings: %w", err)
	}

	return establishments, nil
}

func (p *PostgresCatalog) approvedEstablishments(ctx context.Context) ([]catalog.Establishment, map[uint64]int, error) {
	rows, err := p.db.QueryContext(ctx, queryApprovedEstablishments, string(catalog.StatusApproved))
	if err != nil {
		p.logger.Error("failed to query establishments", "err", err.Error())
		return nil, nil, fmt.Errorf("failed to query establishments: %w", err)
	}
	defer rows.Close()

	establishments := []catalog.Establishment{}
	index := make(map[uint64]int)
	for rows.Next() {
		establishment, err := scanEstablishment(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan establishment: %w", err)
		}
		establishment.Status = catalog.StatusApproved

		index[establishment.ID] = len(establishments)
		establishments = append(establishments, establishment)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read establishments: %w", err)
	}

	return establishments, index, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEstablishment reads the establishment columns shared by every
// establishment query, followed by any extra destinations.
func scanEstablishment(row rowScanner, extra ...any) (catalog.Establishment, error) {
	var (
		establishment       catalog.Establishment
		level, ownership    string
		website             sql.NullString
		locationID          sql.NullInt64
		city, district      sql.NullString
		latitude, longitude sql.NullFloat64
	)
	dest := []any{
		&establishment.ID, &establishment.Name, &establishment.Phone, &establishment.CreatedOn,
		&level, &ownership, &establishment.Description, &website,
		&locationID, &city, &district, &latitude, &longitude,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return catalog.Establishment{}, err
	}

	establishment.Level = catalog.Level(level)
	establishment.OwnershipType = catalog.OwnershipType(ownership)
	establishment.Website = website.String
	establishment.Offerings = []string{}
	establishment.PhotoURLs = []string{}
	if locationID.Valid && latitude.Valid && longitude.Valid {
		establishment.Location = &catalog.Location{
			ID:        uint64(locationID.Int64),
			City:      city.String,
			District:  district.String,
			Latitude:  latitude.Float64,
			Longitude: longitude.Float64,
		}
	}

	return establishment, nil
}

// GetEstablishment returns one establishment whatever its approval status.
func (p *PostgresCatalog) GetEstablishment(ctx context.Context, id uint64) (*catalog.Establishment, error) {
	var status string
	establishment, err := scanEstablishment(p.db.QueryRowContext(ctx, queryEstablishmentByID, int64(id)), &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &catalog.NotFoundError{Entity: "establishment", ID: strconv.FormatUint(id, 10)}
	}
	if err != nil {
		p.logger.Error("failed to get establishment", "id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to get establishment %d: %w", id, err)
	}
	establishment.Status = catalog.ApprovalStatus(status)

	rows, err := p.db.QueryContext(ctx, queryEstablishmentOfferings, int64(id))
	if err != nil {
		p.logger.Error("failed to query establishment offerings", "id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to query offerings of establishment %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan offering: %w", err)
		}
		establishment.Offerings = append(establishment.Offerings, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read offerings: %w", err)
	}

	return &establishment, nil
}

func (p *PostgresCatalog) ResolveLocation(ctx context.Context, id uint64) (*catalog.Location, error) {
	var location catalog.Location
	var district sql.NullString
	err := p.db.QueryRowContext(ctx, queryLocationByID, int64(id)).Scan(
		&location.ID, &location.City, &district, &location.Latitude, &location.Longitude,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &catalog.NotFoundError{Entity: "location", ID: strconv.FormatUint(id, 10)}
	}
	if err != nil {
		p.logger.Error("failed to resolve location", "id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to resolve location %d: %w", id, err)
	}
	location.District = district.String

	return &location, nil
}

// ListLocations returns every location ordered by city, then district.
func (p *PostgresCatalog) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	rows, err := p.db.QueryContext(ctx, queryLocations)
	if err != nil {
		p.logger.Error("failed to query locations", "err", err.Error())
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations := []catalog.Location{}
	for rows.Next() {
		var location catalog.Location
		var district sql.NullString
		if err := rows.Scan(&location.ID, &location.City, &district, &location.Latitude, &location.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		location.District = district.String
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}

	return locations, nil
}

func (p *PostgresCatalog) ListOfferings(ctx context.Context) ([]catalog.Offering, error) {
	rows, err := p.db.QueryContext(ctx, queryOfferings)
	if err != nil {
		p.logger.Error("failed to query offerings", "err", err.Error())
		return nil, fmt.Errorf("failed to query offerings: %w", err)
	}
	defer rows.Close()

	offerings := []catalog.Offering{}
	for rows.Next() {
		var offering catalog.Offering
		if err := rows.Scan(&offering.ID, &offering.Name); err != nil {
			return nil, fmt.Errorf("failed to scan offering: %w", err)
		}
		offerings = append(offerings, offering)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read offerings: %w", err)
	}

	return offerings, nil
}

func (p *PostgresCatalog) ListReviews(ctx context.Context, establishmentID uint64) ([]catalog.Review, error) {
	rows, err := p.db.QueryContext(ctx, queryReviewsByEstablishment, int64(establishmentID))
	if err != nil {
		p.logger.Error("failed to query reviews", "establishment_id", establishmentID, "err", err.Error())
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []catalog.Review{}
	for rows.Next() {
		var review catalog.Review
		if err := rows.Scan(&review.ID, &review.EstablishmentID, &review.Author, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	return reviews, nil
}
