package listing

import (
	"context"

	"github.com/meghashyamc/schoolfinder/db/catalog"
)

func (s *Service) ListByStatus(ctx context.Context, status catalog.ApprovalStatus) ([]catalog.Establishment, error) {
	store, err := s.writable()
	if err != nil {
		return nil, err
	}

	return store.ListEstablishmentsByStatus(ctx, status)
}

// SetApproval moves an establishment to status. Repeating a transition is a no-op.
func (s *Service) SetApproval(ctx context.Context, id uint64, status catalog.ApprovalStatus) error {
	store, err := s.writable()
	if err != nil {
		return err
	}

	if err := store.SetApprovalStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("changed approval status", "id", id, "status", status)
	s.suggestions.Refresh()
	return nil
}
