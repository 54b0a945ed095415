package searchdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/schoolfinder/config"
	"github.com/meghashyamc/schoolfinder/logger"
)

const IndexingBatchSize = 100

const (
	indexFieldKind  = "kind"
	indexFieldMatch = "match"
	indexFieldLabel = "label"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

var _ DB = (*BleveDB)(nil)

func New(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	return Open(logger, cfg.GetIndexPath())
}

// Open opens the index at indexPath, creating it if needed. An empty path
// keeps the index in memory; it is rebuilt from the catalog on startup anyway.
func Open(logger logger.Logger, indexPath string) (*BleveDB, error) {
	mapping := createIndexMapping()

	if indexPath == "" {
		index, err := bleve.NewMemOnly(mapping)
		if err != nil {
			logger.Error("could not create in-memory index", "err", err.Error())
			return nil, err
		}
		return &BleveDB{logger: logger, index: index}, nil
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		logger.Error("could not create index directory", "path", indexPath, "err", err.Error())
		return nil, err
	}

	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) BuildIndex(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID, doc)
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		if (i+1)%IndexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	kindFieldMapping := bleve.NewTextFieldMapping()
	kindFieldMapping.Analyzer = keyword.Name
	kindFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldKind, kindFieldMapping)

	// whole folded string as one term so wildcards behave as substring matches
	matchFieldMapping := bleve.NewTextFieldMapping()
	matchFieldMapping.Analyzer = keyword.Name
	matchFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldMatch, matchFieldMapping)

	labelFieldMapping := bleve.NewTextFieldMapping()
	labelFieldMapping.Analyzer = keyword.Name
	labelFieldMapping.Index = false
	docMapping.AddFieldMappingsAt(indexFieldLabel, labelFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Index = false
	idFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Suggest returns up to limit entries of kind whose folded text contains
// foldedText, ordered by that folded text.
func (b *BleveDB) Suggest(kind Kind, foldedText string, limit int) ([]Suggestion, error) {
	foldedText = strings.NewReplacer("*", "", "?", "").Replace(strings.TrimSpace(foldedText))
	if foldedText == "" || limit <= 0 {
		return []Suggestion{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(b.buildSuggestQuery(kind, foldedText), limit, 0, false)
	searchRequest.Fields = []string{indexFieldLabel}
	searchRequest.SortBy([]string{indexFieldMatch, "_id"})

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("suggestion lookup failed", "kind", kind, "err", err.Error())
		return nil, fmt.Errorf("suggestion lookup failed: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		_, id, err := parseDocumentID(hit.ID)
		if err != nil {
			b.logger.Warn("skipping suggestion with unexpected id", "id", hit.ID)
			continue
		}
		label, _ := hit.Fields[indexFieldLabel].(string)
		suggestions = append(suggestions, Suggestion{ID: id, Label: label})
	}

	return suggestions, nil
}

func (b *BleveDB) buildSuggestQuery(kind Kind, foldedText string) query.Query {
	kindQuery := bleve.NewTermQuery(string(kind))
	kindQuery.SetField(indexFieldKind)

	matchQuery := bleve.NewWildcardQuery("*" + foldedText + "*")
	matchQuery.SetField(indexFieldMatch)

	return bleve.NewConjunctionQuery(kindQuery, matchQuery)
}

// DocumentIDs lists every indexed document of kind.
func (b *BleveDB) DocumentIDs(kind Kind) ([]string, error) {
	total, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []string{}, nil
	}

	kindQuery := bleve.NewTermQuery(string(kind))
	kindQuery.SetField(indexFieldKind)

	searchResult, err := b.index.Search(bleve.NewSearchRequestOptions(kindQuery, int(total), 0, false))
	if err != nil {
		b.logger.Error("could not list indexed documents", "kind", kind, "err", err.Error())
		return nil, fmt.Errorf("could not list indexed documents: %w", err)
	}

	ids := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		if (i+1)%IndexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
