package searchdb

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	KindEstablishment Kind = "establishment"
	KindLocation      Kind = "location"
)

// Document is one suggestion entry. Match holds the folded text that
// lookups run against; Label is what is shown back.
type Document struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Match string `json:"match"`
	Label string `json:"label"`
}

type Suggestion struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// DocumentID builds the index key for a catalog entity, e.g. "location:3".
func DocumentID(kind Kind, id uint64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func parseDocumentID(documentID string) (Kind, uint64, error) {
	kind, rawID, ok := strings.Cut(documentID, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed document id %q", documentID)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed document id %q: %w", documentID, err)
	}

	return Kind(kind), id, nil
}
