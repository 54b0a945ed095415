package searchdb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func newTestIndex(t *testing.T) *BleveDB {
	t.Helper()
	index, err := Open(newTestLogger(), "")
	require.NoError(t, err, "could not open in-memory index")
	t.Cleanup(func() { index.Close() })
	return index
}

var testDocuments = []Document{
	{ID: DocumentID(KindEstablishment, 1), Kind: KindEstablishment, Match: "universite de nouakchott al-aasriya", Label: "Université de Nouakchott Al-Aasriya"},
	{ID: DocumentID(KindEstablishment, 2), Kind: KindEstablishment, Match: "institut superieur du numerique (supnum)", Label: "Institut Supérieur du Numérique (SupNum)"},
	{ID: DocumentID(KindEstablishment, 3), Kind: KindEstablishment, Match: "ecoles maarif", Label: "Écoles Maarif"},
	{ID: DocumentID(KindLocation, 1), Kind: KindLocation, Match: "nouakchott, ksar", Label: "Nouakchott, Ksar"},
	{ID: DocumentID(KindLocation, 2), Kind: KindLocation, Match: "nouadhibou, centre-ville", Label: "Nouadhibou, Centre-Ville"},
	{ID: DocumentID(KindLocation, 3), Kind: KindLocation, Match: "rosso, nord", Label: "Rosso, Nord"},
}

func TestSuggest(t *testing.T) {
	index := newTestIndex(t)
	require.NoError(t, index.BuildIndex(testDocuments))

	tests := []struct {
		name     string
		kind     Kind
		text     string
		limit    int
		expected []Suggestion
	}{
		{
			name:     "substring in the middle",
			kind:     KindEstablishment,
			text:     "numerique",
			limit:    8,
			expected: []Suggestion{{ID: 2, Label: "Institut Supérieur du Numérique (SupNum)"}},
		},
		{
			name:  "kinds do not mix",
			kind:  KindLocation,
			text:  "nouakchott",
			limit: 10,
			expected: []Suggestion{
				{ID: 1, Label: "Nouakchott, Ksar"},
			},
		},
		{
			name:  "ordered by folded text",
			kind:  KindLocation,
			text:  "o",
			limit: 10,
			expected: []Suggestion{
				{ID: 2, Label: "Nouadhibou, Centre-Ville"},
				{ID: 1, Label: "Nouakchott, Ksar"},
				{ID: 3, Label: "Rosso, Nord"},
			},
		},
		{
			name:  "limit",
			kind:  KindLocation,
			text:  "o",
			limit: 1,
			expected: []Suggestion{
				{ID: 2, Label: "Nouadhibou, Centre-Ville"},
			},
		},
		{
			name:     "regexp characters are literal",
			kind:     KindEstablishment,
			text:     "(supnum)",
			limit:    8,
			expected: []Suggestion{{ID: 2, Label: "Institut Supérieur du Numérique (SupNum)"}},
		},
		{name: "wildcards are ignored", kind: KindLocation, text: "*", limit: 10, expected: []Suggestion{}},
		{name: "empty text", kind: KindEstablishment, text: "  ", limit: 8, expected: []Suggestion{}},
		{name: "no match", kind: KindEstablishment, text: "harvard", limit: 8, expected: []Suggestion{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions, err := index.Suggest(tt.kind, tt.text, tt.limit)
			require.NoError(t, err)
			require.Equal(t, tt.expected, suggestions)
		})
	}
}

func TestDocumentIDsAndDelete(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t)
	assert.NoError(index.BuildIndex(testDocuments))

	ids, err := index.DocumentIDs(KindLocation)
	assert.NoError(err)
	assert.ElementsMatch([]string{"location:1", "location:2", "location:3"}, ids)

	assert.NoError(index.DeleteDocuments([]string{"location:2"}))

	count, err := index.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)-1), count)

	suggestions, err := index.Suggest(KindLocation, "nouadhibou", 10)
	assert.NoError(err)
	assert.Empty(suggestions)
}

func TestBuildIndexAcrossBatches(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t)

	documents := make([]Document, 0, IndexingBatchSize*2+5)
	for i := 1; i <= cap(documents); i++ {
		documents = append(documents, Document{
			ID:    DocumentID(KindEstablishment, uint64(i)),
			Kind:  KindEstablishment,
			Match: fmt.Sprintf("ecole %03d", i),
			Label: fmt.Sprintf("École %03d", i),
		})
	}
	assert.NoError(index.BuildIndex(documents))

	count, err := index.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(documents)), count)

	ids, err := index.DocumentIDs(KindEstablishment)
	assert.NoError(err)
	assert.Len(ids, len(documents))
}

func TestOpenOnDiskReopens(t *testing.T) {
	assert := require.New(t)
	path := filepath.Join(t.TempDir(), "suggest.bleve")

	index, err := Open(newTestLogger(), path)
	assert.NoError(err)
	assert.NoError(index.BuildIndex(testDocuments[:1]))
	assert.NoError(index.Close())

	reopened, err := Open(newTestLogger(), path)
	assert.NoError(err)
	defer reopened.Close()

	count, err := reopened.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(1), count)
}

func TestParseDocumentID(t *testing.T) {
	kind, id, err := parseDocumentID("location:42")
	require.NoError(t, err)
	require.Equal(t, KindLocation, kind)
	require.Equal(t, uint64(42), id)

	_, _, err = parseDocumentID("location")
	require.Error(t, err)
	_, _, err = parseDocumentID("location:x")
	require.Error(t, err)
}
