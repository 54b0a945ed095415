package searchdb

type DB interface {
	BuildIndex(documents []Document) error
	DeleteDocuments(documentIDs []string) error
	DocumentIDs(kind Kind) ([]string, error)
	Suggest(kind Kind, text string, limit int) ([]Suggestion, error)
	GetDocCount() (uint64, error)
	Close() error
}
