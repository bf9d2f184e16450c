package service

import (
	"context"
	"io"
	"sync"

	"menu-admin/internal/model"
	"menu-admin/internal/store"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Subscribe(ctx context.Context, spec store.CollectionSpec, fn store.SnapshotFunc) (func(), error) {
	args := m.Called(ctx, spec, fn)
	if cancel, ok := args.Get(0).(func()); ok {
		return cancel, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	args := m.Called(ctx, collection, fields)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *MockStore) QueryByField(ctx context.Context, collection, field string, value any) ([]store.Document, error) {
	args := m.Called(ctx, collection, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

func (m *MockStore) NewBatch() store.Batch {
	args := m.Called()
	return args.Get(0).(store.Batch)
}

// MockBatch is a mock implementation of store.Batch.
type MockBatch struct {
	mock.Mock
}

func (m *MockBatch) Update(collection, id string, fields map[string]any) {
	m.Called(collection, id, fields)
}

func (m *MockBatch) Delete(collection, id string) {
	m.Called(collection, id)
}

func (m *MockBatch) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUploader is a mock implementation of asset.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

// fakeCatalog is a static CatalogReader standing in for the live mirror.
type fakeCatalog struct {
	categories []model.Category
	products   []model.Product
}

func (f *fakeCatalog) CategoryByID(id string) (model.Category, bool) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

func (f *fakeCatalog) ProductByID(id string) (model.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// callLog records the order of store and uploader calls across mocks.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.calls...)
}
