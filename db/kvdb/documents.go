package kvdb

import (
	"context"

	"github.com/meghashyamc/schoolfinder/db/catalog"
	bolt "go.etcd.io/bbolt"
)

type documentRecord struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (b *BoltDB) PutDocument(ctx context.Context, doc catalog.Document) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		return putDocument(tx, doc)
	})
}

func (b *BoltDB) GetDocument(ctx context.Context, id string) (*catalog.Document, error) {
	if id == "" {
		b.logger.Error("key cannot be empty", "key", id)
		return nil, &catalog.InvalidKeyError{Key: id, Reason: "key cannot be empty"}
	}

	var record documentRecord
	err := b.store.View(func(tx *bolt.Tx) error {
		documents, err := getBucket(tx, documentsBucket)
		if err != nil {
			return err
		}
		found, err := getJSON(documents, []byte(id), &record)
		if err != nil {
			return err
		}
		if !found {
			return &catalog.NotFoundError{Entity: "document", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &catalog.Document{ID: id, ContentType: record.ContentType, Data: record.Data}, nil
}

func putDocument(tx *bolt.Tx, doc catalog.Document) error {
	if doc.ID == "" {
		return &catalog.InvalidKeyError{Key: doc.ID, Reason: "key cannot be empty"}
	}

	documents, err := getBucket(tx, documentsBucket)
	if err != nil {
		return err
	}

	return putJSON(documents, []byte(doc.ID), documentRecord{ContentType: doc.ContentType, Data: doc.Data})
}
