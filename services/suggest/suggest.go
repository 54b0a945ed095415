package suggest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/db/searchdb"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/robfig/cron/v3"
)

// Indexer is the part of the suggestion index this service drives.
type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
	DocumentIDs(kind searchdb.Kind) ([]string, error)
	Suggest(kind searchdb.Kind, foldedText string, limit int) ([]searchdb.Suggestion, error)
}

// Source is where suggestions come from.
type Source interface {
	ListApprovedEstablishments(ctx context.Context) ([]catalog.Establishment, error)
	ListLocations(ctx context.Context) ([]catalog.Location, error)
}

const (
	EstablishmentLimit = 8
	LocationLimit      = 10

	maxRebuildTime = time.Minute
)

type Service struct {
	logger    logger.Logger
	indexer   Indexer
	source    Source
	rebuildMu sync.Mutex
	refreshC  chan struct{}
}

// New starts the background refresher; it stops when ctx is done.
func New(ctx context.Context, logger logger.Logger, indexer Indexer, source Source) *Service {
	suggestService := &Service{
		logger:   logger,
		indexer:  indexer,
		source:   source,
		refreshC: make(chan struct{}, 1),
	}

	go suggestService.refresh(ctx)
	return suggestService
}

// Refresh schedules a rebuild without waiting for it. Requests made while one
// is already queued are merged into it.
func (s *Service) Refresh() {
	select {
	case s.refreshC <- struct{}{}:
	default:
		s.logger.Debug("suggestion refresh already queued")
	}
}

// RefreshEvery schedules a rebuild each interval until ctx is done. It is for
// catalogs that change without going through this process. Intervals under a
// second are rounded up to one.
func (s *Service) RefreshEvery(ctx context.Context, interval time.Duration) {
	scheduler := cron.New()
	scheduler.Schedule(cron.Every(interval), cron.FuncJob(s.Refresh))
	scheduler.Start()
	s.logger.Info("scheduled suggestion refresh", "interval", interval.String())

	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
	}()
}

func (s *Service) refresh(ctx context.Context) {
	for {
		select {
		case <-s.refreshC:
			rebuildCtx, cancel := context.WithTimeout(ctx, maxRebuildTime)
			if err := s.Rebuild(rebuildCtx); err != nil {
				s.logger.Error("failed to refresh suggestions", "err", err.Error())
			}
			cancel()
		case <-ctx.Done():
			s.logger.Info("suggestion refresher stopped", "reason", ctx.Err())
			return
		}
	}
}

// Rebuild makes the index mirror the catalog: approved establishment names
// and every location. Entries that disappeared from the catalog are removed.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	establishments, err := s.source.ListApprovedEstablishments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list establishments for suggestions: %w", err)
	}
	if err := s.replace(searchdb.KindEstablishment, establishmentDocuments(establishments)); err != nil {
		return err
	}

	locations, err := s.source.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list locations for suggestions: %w", err)
	}
	if err := s.replace(searchdb.KindLocation, locationDocuments(locations)); err != nil {
		return err
	}

	s.logger.Info("rebuilt suggestions", "establishments", len(establishments), "locations", len(locations))
	return nil
}

func (s *Service) replace(kind searchdb.Kind, documents []searchdb.Document) error {
	existing, err := s.indexer.DocumentIDs(kind)
	if err != nil {
		return fmt.Errorf("failed to list indexed %s suggestions: %w", kind, err)
	}

	current := make(map[string]struct{}, len(documents))
	for _, doc := range documents {
		current[doc.ID] = struct{}{}
	}
	stale := make([]string, 0)
	for _, id := range existing {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}

	if len(stale) > 0 {
		s.logger.Info("removing stale suggestions", "kind", kind, "count", len(stale))
		if err := s.indexer.DeleteDocuments(stale); err != nil {
			return fmt.Errorf("failed to delete stale %s suggestions: %w", kind, err)
		}
	}

	if err := s.indexer.BuildIndex(documents); err != nil {
		return fmt.Errorf("failed to index %s suggestions: %w", kind, err)
	}
	return nil
}

func establishmentDocuments(establishments []catalog.Establishment) []searchdb.Document {
	documents := make([]searchdb.Document, 0, len(establishments))
	for _, establishment := range establishments {
		if establishment.Status != catalog.StatusApproved {
			continue
		}
		documents = append(documents, searchdb.Document{
			ID:    searchdb.DocumentID(searchdb.KindEstablishment, establishment.ID),
			Kind:  searchdb.KindEstablishment,
			Match: catalog.Fold(establishment.Name),
			Label: establishment.Name,
		})
	}
	return documents
}

func locationDocuments(locations []catalog.Location) []searchdb.Document {
	documents := make([]searchdb.Document, 0, len(locations))
	for _, location := range locations {
		documents = append(documents, searchdb.Document{
			ID:    searchdb.DocumentID(searchdb.KindLocation, location.ID),
			Kind:  searchdb.KindLocation,
			Match: catalog.Fold(location.Label()),
			Label: location.Label(),
		})
	}
	return documents
}

// Establishments returns up to EstablishmentLimit distinct names of approved
// establishments containing text.
func (s *Service) Establishments(text string) ([]string, error) {
	folded := catalog.Fold(text)

	// several establishments may share a name, so keep widening the lookup
	// until enough distinct names are found or the matches run out
	for fetch := 2 * EstablishmentLimit; ; fetch *= 2 {
		suggestions, err := s.indexer.Suggest(searchdb.KindEstablishment, folded, fetch)
		if err != nil {
			return nil, err
		}

		names := distinctLabels(suggestions, EstablishmentLimit)
		if len(names) == EstablishmentLimit || len(suggestions) < fetch {
			return names, nil
		}
	}
}

func distinctLabels(suggestions []searchdb.Suggestion, limit int) []string {
	names := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(suggestions))
	for _, suggestion := range suggestions {
		if len(names) == limit {
			break
		}
		if _, ok := seen[suggestion.Label]; ok {
			continue
		}
		seen[suggestion.Label] = struct{}{}
		names = append(names, suggestion.Label)
	}
	return names
}

// Locations returns locations whose "City, District" label contains text.
func (s *Service) Locations(text string) ([]searchdb.Suggestion, error) {
	return s.indexer.Suggest(searchdb.KindLocation, catalog.Fold(text), LocationLimit)
}
