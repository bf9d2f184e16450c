package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

// Firestore adapts a Cloud Firestore client to the Store surface. The mapping
// is direct: Subscribe on Query.Snapshots, atomic batches on WriteBatch and
// field queries on Where("==").
type Firestore struct {
	client *firestore.Client
	logger zerolog.Logger
}

// NewFirestore creates a Firestore-backed store for the given project.
func NewFirestore(ctx context.Context, projectID string, logger zerolog.Logger) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger = logger.With().Str("store", "firestore").Logger()
	logger.Info().Str("project", projectID).Msg("firestore store initialised")

	return &Firestore{client: client, logger: logger}, nil
}

// Close releases the underlying client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) Subscribe(ctx context.Context, spec CollectionSpec, fn SnapshotFunc) (func(), error) {
	query := f.client.Collection(spec.Name).Query
	if spec.OrderBy != "" {
		query = query.OrderBy(spec.OrderBy, firestore.Asc)
	}

	subCtx, cancel := context.WithCancel(ctx)
	snapshots := query.Snapshots(subCtx)

	logger := f.logger.With().Str("collection", spec.Name).Logger()

	go func() {
		defer snapshots.Stop()
		for {
			snapshot, err := snapshots.Next()
			if err != nil {
				if subCtx.Err() == nil {
					logger.Error().Err(err).Msg("subscription stalled")
				}
				return
			}

			var docs []Document
			docIter := snapshot.Documents
			for {
				doc, err := docIter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					logger.Error().Err(err).Msg("failed to read snapshot documents")
					return
				}
				docs = append(docs, Document{ID: doc.Ref.ID, Fields: doc.Data()})
			}
			fn(docs)
		}
	}()

	return cancel, nil
}

func (f *Firestore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := f.client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	_, err := f.client.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	docIter := f.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	defer docIter.Stop()

	var docs []Document
	for {
		doc, err := docIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
		}
		docs = append(docs, Document{ID: doc.Ref.ID, Fields: doc.Data()})
	}
	return docs, nil
}

func (f *Firestore) NewBatch() Batch {
	return &firestoreBatch{client: f.client, batch: f.client.Batch()}
}

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
}

func (b *firestoreBatch) Update(collection, id string, fields map[string]any) {
	b.batch.Set(b.client.Collection(collection).Doc(id), fields, firestore.MergeAll)
}

func (b *firestoreBatch) Delete(collection, id string) {
	b.batch.Delete(b.client.Collection(collection).Doc(id))
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if _, err := b.batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
