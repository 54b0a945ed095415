package listing

import (
	"context"
	"errors"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
)

// Refresher is notified whenever the set of suggestible names or locations
// may have changed.
type Refresher interface {
	Refresh()
}

// ErrReadOnly is returned by every mutation of a service built with NewReadOnly.
var ErrReadOnly = errors.New("catalog is read-only")

// Service reads through catalog and writes through store. A read-only
// service has no store.
type Service struct {
	logger      logger.Logger
	catalog     catalog.Browser
	store       catalog.Store
	suggestions Refresher
}

func New(logger logger.Logger, store catalog.Store, suggestions Refresher) *Service {
	return &Service{
		logger:      logger,
		catalog:     store,
		store:       store,
		suggestions: suggestions,
	}
}

// NewReadOnly serves the public pages from a catalog maintained elsewhere.
func NewReadOnly(logger logger.Logger, browser catalog.Browser) *Service {
	return &Service{
		logger:  logger,
		catalog: browser,
	}
}

func (s *Service) ReadOnly() bool {
	return s.store == nil
}

func (s *Service) writable() (catalog.Store, error) {
	if s.store == nil {
		return nil, ErrReadOnly
	}
	return s.store, nil
}

func (s *Service) Locations(ctx context.Context) ([]catalog.Location, error) {
	return s.catalog.ListLocations(ctx)
}

func (s *Service) CreateLocation(ctx context.Context, location catalog.Location) (*catalog.Location, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}

	created, err := store.CreateLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	s.logger.Info("created location", "id", created.ID, "label", created.Label())
	s.suggestions.Refresh()
	return created, nil
}

func (s *Service) Document(ctx context.Context, id string) (*catalog.Document, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}

	return store.GetDocument(ctx, id)
}
