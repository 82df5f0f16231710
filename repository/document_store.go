package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("documento no encontrado")

// DocumentStore keeps JSON documents grouped in collections.
type DocumentStore interface {
	Put(ctx context.Context, collection, id string, doc []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, error)
}

func documentKey(collection, id string) string {
	return collection + ":" + id
}
