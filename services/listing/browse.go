package listing

import (
	"context"
	"sort"

	"github.com/meghashyamc/schoolfinder/db/catalog"
)

type Metadata struct {
	Levels    []catalog.Level `json:"levels"`
	Cities    []string        `json:"cities"`
	Districts []string        `json:"districts"`
	Offerings []string        `json:"offerings"`
}

// Detail is the public page of an approved establishment.
type Detail struct {
	catalog.Establishment
	Reviews []catalog.Review `json:"reviews"`
}

// Names lists approved establishment names alphabetically.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	establishments, err := s.catalog.ListApprovedEstablishments(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(establishments))
	for _, establishment := range establishments {
		names = append(names, establishment.Name)
	}
	sortFolded(names)

	return names, nil
}

// Metadata gathers the values the search form offers as choices.
func (s *Service) Metadata(ctx context.Context) (*Metadata, error) {
	locations, err := s.catalog.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	offerings, err := s.catalog.ListOfferings(ctx)
	if err != nil {
		return nil, err
	}

	cities := make([]string, 0, len(locations))
	districts := make([]string, 0, len(locations))
	for _, location := range locations {
		cities = append(cities, location.City)
		districts = append(districts, location.District)
	}

	offeringNames := make([]string, 0, len(offerings))
	for _, offering := range offerings {
		offeringNames = append(offeringNames, offering.Name)
	}

	return &Metadata{
		Levels:    append([]catalog.Level{}, catalog.Levels...),
		Cities:    distinctSorted(cities),
		Districts: distinctSorted(districts),
		Offerings: distinctSorted(offeringNames),
	}, nil
}

// Detail returns an approved establishment with its reviews. Pending and
// rejected establishments are reported as not found.
func (s *Service) Detail(ctx context.Context, id uint64) (*Detail, error) {
	establishment, err := s.approvedEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.catalog.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []catalog.Review{}
	}
	// the authorization document is for administrators only
	establishment.DocumentID = ""

	return &Detail{Establishment: *establishment, Reviews: reviews}, nil
}

func (s *Service) approvedEstablishment(ctx context.Context, id uint64) (*catalog.Establishment, error) {
	establishment, err := s.catalog.GetEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}
	if establishment.Status != catalog.StatusApproved {
		return nil, &catalog.NotFoundError{Entity: "establishment", ID: idString(id)}
	}

	return establishment, nil
}

// distinctSorted drops empty and repeated values, comparing case and accents loosely.
func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		key := catalog.Fold(value)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	sortFolded(out)

	return out
}

func sortFolded(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		a, b := catalog.Fold(values[i]), catalog.Fold(values[j])
		if a != b {
			return a < b
		}
		return values[i] < values[j]
	})
}
