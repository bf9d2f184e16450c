package store

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Memory is an in-process Store used for development and tests. Snapshots are
// delivered synchronously after every committed write.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[int]*memorySub
	nextSubID   int

	// deliverMu is held from snapshot build through delivery so concurrent
	// writers cannot deliver a stale snapshot after a fresher one.
	deliverMu sync.Mutex

	logger zerolog.Logger
}

type memorySub struct {
	spec CollectionSpec
	fn   SnapshotFunc
}

// NewMemory creates an empty in-memory store.
func NewMemory(logger zerolog.Logger) *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[int]*memorySub),
		logger:      logger.With().Str("store", "memory").Logger(),
	}
}

func (m *Memory) Subscribe(ctx context.Context, spec CollectionSpec, fn SnapshotFunc) (func(), error) {
	m.deliverMu.Lock()

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = &memorySub{spec: spec, fn: fn}
	snapshot := m.snapshotLocked(spec)
	m.mu.Unlock()

	// Initial snapshot, delivered outside the state lock like every later
	// one but still inside the delivery lock so no broadcast interleaves.
	fn(snapshot)
	m.deliverMu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
	return cancel, nil
}

func (m *Memory) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	id := uuid.NewString()
	m.collectionLocked(collection)[id] = cloneFields(fields)
	m.mu.Unlock()

	m.broadcast(collection)
	return id, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	doc, ok := m.collectionLocked(collection)[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	maps.Copy(doc, cloneFields(fields))
	m.mu.Unlock()

	m.broadcast(collection)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	delete(m.collectionLocked(collection), id)
	m.mu.Unlock()

	m.broadcast(collection)
	return nil
}

func (m *Memory) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []Document
	for id, fields := range m.collectionLocked(collection) {
		if fields[field] == value {
			docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
		}
	}
	return docs, nil
}

func (m *Memory) NewBatch() Batch {
	return &memoryBatch{store: m}
}

type memoryOp struct {
	delete     bool
	collection string
	id         string
	fields     map[string]any
}

type memoryBatch struct {
	store *Memory
	ops   []memoryOp
}

func (b *memoryBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, fields: cloneFields(fields)})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, memoryOp{delete: true, collection: collection, id: id})
}

// Commit applies every staged op under one lock. Updates are validated before
// anything is touched so a bad op leaves the store unchanged.
func (b *memoryBatch) Commit(ctx context.Context) error {
	m := b.store

	m.mu.Lock()
	for _, op := range b.ops {
		if op.delete {
			continue
		}
		if _, ok := m.collectionLocked(op.collection)[op.id]; !ok {
			m.mu.Unlock()
			return fmt.Errorf("batch update %s/%s: %w", op.collection, op.id, ErrNotFound)
		}
	}

	changed := make(map[string]bool)
	for _, op := range b.ops {
		if op.delete {
			delete(m.collectionLocked(op.collection), op.id)
		} else {
			maps.Copy(m.collectionLocked(op.collection)[op.id], op.fields)
		}
		changed[op.collection] = true
	}
	m.mu.Unlock()

	for collection := range changed {
		m.broadcast(collection)
	}
	return nil
}

func (m *Memory) collectionLocked(name string) map[string]map[string]any {
	if m.collections[name] == nil {
		m.collections[name] = make(map[string]map[string]any)
	}
	return m.collections[name]
}

func (m *Memory) snapshotLocked(spec CollectionSpec) []Document {
	docs := make([]Document, 0, len(m.collections[spec.Name]))
	for id, fields := range m.collections[spec.Name] {
		docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
	}
	if spec.OrderBy != "" {
		sort.Slice(docs, func(i, j int) bool {
			a, _ := docs[i].Fields[spec.OrderBy].(string)
			b, _ := docs[j].Fields[spec.OrderBy].(string)
			return a < b
		})
	}
	return docs
}

// broadcast snapshots the collection and delivers to its subscribers. The
// delivery lock spans build and delivery, so snapshots go out in the order
// they were built and the last delivery always reflects the last write.
func (m *Memory) broadcast(collection string) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	type delivery struct {
		fn   SnapshotFunc
		docs []Document
	}
	var deliveries []delivery
	for _, sub := range m.subs {
		if sub.spec.Name == collection {
			deliveries = append(deliveries, delivery{fn: sub.fn, docs: m.snapshotLocked(sub.spec)})
		}
	}
	m.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.docs)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	clone := make(map[string]any, len(fields))
	maps.Copy(clone, fields)
	return clone
}
