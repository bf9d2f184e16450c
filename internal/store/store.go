// Package store defines the document store surface the catalog is built on:
// live collection subscriptions, single-document writes, field-equality
// queries, and atomic multi-document batches. Three backends implement it:
// an in-memory store for development and tests, a Postgres-backed store using
// a jsonb documents table with LISTEN/NOTIFY change delivery, and a Firestore
// adapter.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a write targets a document that does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored document: an opaque store-assigned ID plus its fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// CollectionSpec identifies a collection to subscribe to. When OrderBy is set,
// snapshots are delivered sorted ascending by that field.
type CollectionSpec struct {
	Name    string
	OrderBy string
}

// SnapshotFunc receives the full state of a collection. Every delivery
// replaces the previous snapshot wholesale; there is no incremental patching.
type SnapshotFunc func(docs []Document)

// Batch stages multi-document writes for a single atomic commit. Either every
// staged write is applied or none are.
type Batch interface {
	Update(collection, id string, fields map[string]any)
	Delete(collection, id string)
	Commit(ctx context.Context) error
}

// Store is the document store consumed by the catalog. Subscribe returns a
// cancel function; after it is called no further snapshots are delivered.
// Subscription failures are not retried by the store's consumers; delivery
// simply stops and the view goes stale until the backend reconnects.
type Store interface {
	Subscribe(ctx context.Context, spec CollectionSpec, fn SnapshotFunc) (func(), error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)
	NewBatch() Batch
}
