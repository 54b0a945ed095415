package catalog

import "context"

// Reader is the read-only view the proximity search needs. Implementations
// must load locations and offerings in bulk rather than once per establishment.
type Reader interface {
	ListApprovedEstablishments(ctx context.Context) ([]Establishment, error)
	ResolveLocation(ctx context.Context, id uint64) (*Location, error)
}

// Browser is every read the public pages make: search, suggestions, the
// search form choices and establishment details.
type Browser interface {
	Reader

	ListLocations(ctx context.Context) ([]Location, error)
	ListOfferings(ctx context.Context) ([]Offering, error)
	GetEstablishment(ctx context.Context, id uint64) (*Establishment, error)
	ListReviews(ctx context.Context, establishmentID uint64) ([]Review, error)
}

type BlobStore interface {
	PutDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
}

// Store is the full catalog used by the listing service.
type Store interface {
	Browser
	BlobStore

	CreateLocation(ctx context.Context, location Location) (*Location, error)

	CreateEstablishment(ctx context.Context, establishment NewEstablishment) (*Establishment, error)
	ListEstablishmentsByStatus(ctx context.Context, status ApprovalStatus) ([]Establishment, error)
	SetApprovalStatus(ctx context.Context, id uint64, status ApprovalStatus) error

	AddReview(ctx context.Context, review Review) (*Review, error)
	ListAllReviews(ctx context.Context) ([]Review, error)
	DeleteReview(ctx context.Context, id uint64) error

	Close() error
}
