package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/stretchr/testify/require"
)

var establishmentColumns = []string{
	"id", "name", "phone", "created_on", "level", "ownership_type",
	"description", "website", "id", "city", "district", "latitude", "longitude",
}

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func newMockCatalog(t *testing.T) (*PostgresCatalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(newTestLogger(), db), mock
}

func TestListApprovedEstablishmentsBatchesOfferings(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)
	createdOn := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(queryApprovedEstablishments).
		WithArgs("approved").
		WillReturnRows(sqlmock.NewRows(establishmentColumns).
			AddRow(1, "SupNum", "+222 44 44 44 44", createdOn, "supérieur", "public", "Numérique", "https://supnum.mr", 3, "Nouakchott", "Ksar", 18.088, -15.9742).
			AddRow(2, "École sans adresse", "", createdOn, "primaire", "private", "", nil, nil, nil, nil, nil, nil))

	mock.ExpectQuery(queryApprovedOfferings).
		WithArgs("approved").
		WillReturnRows(sqlmock.NewRows([]string{"establishment_id", "name"}).
			AddRow(1, "Développement Web").
			AddRow(1, "Réseaux & Télécoms").
			AddRow(2, "Maternelle"))

	establishments, err := pg.ListApprovedEstablishments(context.Background())
	assert.NoError(err)
	assert.Len(establishments, 2)

	supnum := establishments[0]
	assert.Equal(uint64(1), supnum.ID)
	assert.Equal(catalog.LevelHigher, supnum.Level)
	assert.Equal(catalog.StatusApproved, supnum.Status)
	assert.Equal("https://supnum.mr", supnum.Website)
	assert.NotNil(supnum.Location)
	assert.Equal(uint64(3), supnum.Location.ID)
	assert.Equal("Ksar", supnum.Location.District)
	assert.Equal([]string{"Développement Web", "Réseaux & Télécoms"}, supnum.Offerings)

	noAddress := establishments[1]
	assert.Nil(noAddress.Location)
	assert.Empty(noAddress.Website)
	assert.Equal([]string{"Maternelle"}, noAddress.Offerings)

	assert.NoError(mock.ExpectationsWereMet(), "exactly two queries are issued")
}

func TestListApprovedEstablishmentsPropagatesErrors(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)

	mock.ExpectQuery(queryApprovedEstablishments).
		WithArgs("approved").
		WillReturnError(errors.New("connection reset"))

	establishments, err := pg.ListApprovedEstablishments(context.Background())
	assert.Error(err)
	assert.Nil(establishments, "no partial results on failure")
	assert.NoError(mock.ExpectationsWereMet())
}

func TestResolveLocation(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)

	mock.ExpectQuery(queryLocationByID).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "district", "latitude", "longitude"}).
			AddRow(3, "Nouakchott", nil, 18.088, -15.9742))
	mock.ExpectQuery(queryLocationByID).
		WithArgs(int64(999999)).
		WillReturnError(sql.ErrNoRows)

	location, err := pg.ResolveLocation(context.Background(), 3)
	assert.NoError(err)
	assert.Equal(catalog.Location{ID: 3, City: "Nouakchott", Latitude: 18.088, Longitude: -15.9742}, *location)

	_, err = pg.ResolveLocation(context.Background(), 999999)
	assert.True(errors.Is(err, catalog.ErrNotFound))

	assert.NoError(mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)

	mock.ExpectExec(schema).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(pg.EnsureSchema(context.Background()))

	mock.ExpectExec(schema).WillReturnError(errors.New("permission denied"))
	assert.Error(pg.EnsureSchema(context.Background()))

	assert.NoError(mock.ExpectationsWereMet())
}

func TestGetEstablishment(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)
	createdOn := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(queryEstablishmentByID).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(append(establishmentColumns, "approval_status")).
			AddRow(1, "SupNum", "+222 44 44 44 44", createdOn, "supérieur", "public", "Numérique", nil, 3, "Nouakchott", "Ksar", 18.088, -15.9742, "pending"))
	mock.ExpectQuery(queryEstablishmentOfferings).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Développement Web"))
	mock.ExpectQuery(queryEstablishmentByID).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	establishment, err := pg.GetEstablishment(context.Background(), 1)
	assert.NoError(err)
	assert.Equal(catalog.StatusPending, establishment.Status)
	assert.Equal("Ksar", establishment.Location.District)
	assert.Equal([]string{"Développement Web"}, establishment.Offerings)

	_, err = pg.GetEstablishment(context.Background(), 404)
	assert.True(errors.Is(err, catalog.ErrNotFound))

	assert.NoError(mock.ExpectationsWereMet())
}

func TestListLocationsAndOfferings(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)

	mock.ExpectQuery(queryLocations).
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "district", "latitude", "longitude"}).
			AddRow(2, "Nouadhibou", "Centre-Ville", 20.9334, -17.0465).
			AddRow(1, "Nouakchott", nil, 18.0941, -15.9719))
	mock.ExpectQuery(queryOfferings).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(4, "Droit").
			AddRow(1, "Médecine"))

	locations, err := pg.ListLocations(context.Background())
	assert.NoError(err)
	assert.Len(locations, 2)
	assert.Equal("Nouadhibou, Centre-Ville", locations[0].Label())
	assert.Equal("Nouakchott", locations[1].Label())

	offerings, err := pg.ListOfferings(context.Background())
	assert.NoError(err)
	assert.Equal([]catalog.Offering{{ID: 4, Name: "Droit"}, {ID: 1, Name: "Médecine"}}, offerings)

	assert.NoError(mock.ExpectationsWereMet())
}

func TestListReviews(t *testing.T) {
	assert := require.New(t)
	pg, mock := newMockCatalog(t)
	createdAt := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(queryReviewsByEstablishment).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "establishment_id", "author", "rating", "comment", "created_at"}).
			AddRow(1, 6, "Visiteur", 4.0, "Bonne ambiance", createdAt))
	mock.ExpectQuery(queryReviewsByEstablishment).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "establishment_id", "author", "rating", "comment", "created_at"}))

	reviews, err := pg.ListReviews(context.Background(), 6)
	assert.NoError(err)
	assert.Equal([]catalog.Review{{ID: 1, EstablishmentID: 6, Author: "Visiteur", Rating: 4, Comment: "Bonne ambiance", CreatedAt: createdAt}}, reviews)

	reviews, err = pg.ListReviews(context.Background(), 7)
	assert.NoError(err)
	assert.NotNil(reviews)
	assert.Empty(reviews)

	assert.NoError(mock.ExpectationsWereMet())
}
