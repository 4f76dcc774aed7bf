// internal/repository/store.go
package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrWatchReleased = errors.New("watch released")
)

// Doc is one stored document. ID is the store-assigned identifier and is not
// part of Data.
type Doc struct {
	ID   string
	Data map[string]any
}

// ChangeHandler receives the complete contents of a collection.
type ChangeHandler func(docs []Doc)

// ErrorHandler is told once that a watch terminated abnormally. No further
// ChangeHandler calls follow.
type ErrorHandler func(err error)

// Unsubscribe releases a watch. It is idempotent; once it returns the watch's
// ChangeHandler is not invoked again.
type Unsubscribe func()

// Store is the remote collection store: named collections of documents with
// point writes and whole-collection change subscriptions.
//
// Watch delivers the current snapshot before it returns and then a fresh full
// snapshot after every insert, update or delete in the collection. Snapshots of
// one watch are delivered serially, in the order the store applied the
// changes. Handlers must not write to the store synchronously.
type Store interface {
	Watch(ctx context.Context, collection string, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error)
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	GetAll(ctx context.Context, collection string) ([]Doc, error)
}
