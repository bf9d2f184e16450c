// Package catalog holds the live in-memory mirror of the remote categories
// and products collections. The mirror is the only in-process copy of either
// collection: readers consume it, writers go through the services and rely on
// the store's change stream to refresh it. There is no optimistic local
// mutation, so a committed write becomes visible only when its snapshot
// arrives.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"menu-admin/internal/model"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
)

// Store collection names.
const (
	CategoriesCollection = "categories"
	ProductsCollection   = "products"
)

// Mirror maintains continuously updated copies of both collections. Each
// snapshot wholesale-replaces the previous state; listeners fire after every
// replacement.
type Mirror struct {
	store  store.Store
	logger zerolog.Logger

	mu         sync.RWMutex
	categories []model.Category
	products   []model.Product
	listeners  []func()

	cancels []func()
}

// NewMirror creates a mirror over the given store. Call Start to activate it.
func NewMirror(s store.Store, logger zerolog.Logger) *Mirror {
	return &Mirror{
		store:  s,
		logger: logger.With().Str("component", "mirror").Logger(),
	}
}

// Start opens two live subscriptions: categories ordered by name ascending,
// products unordered. A subscription error after Start is not retried; the
// mirror simply stops updating until the backend reconnects.
func (m *Mirror) Start(ctx context.Context) error {
	cancelCategories, err := m.store.Subscribe(ctx,
		store.CollectionSpec{Name: CategoriesCollection, OrderBy: "name"},
		m.replaceCategories,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to categories: %w", err)
	}

	cancelProducts, err := m.store.Subscribe(ctx,
		store.CollectionSpec{Name: ProductsCollection},
		m.replaceProducts,
	)
	if err != nil {
		cancelCategories()
		return fmt.Errorf("failed to subscribe to products: %w", err)
	}

	m.cancels = []func(){cancelCategories, cancelProducts}
	m.logger.Info().Msg("mirror started")
	return nil
}

// Stop cancels both subscriptions. No further updates are delivered.
func (m *Mirror) Stop() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.logger.Info().Msg("mirror stopped")
}

// OnChange registers a listener invoked after every snapshot replacement.
// Listeners must not block; they run on the subscription's delivery path.
func (m *Mirror) OnChange(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Categories returns the current category list, name-ascending.
func (m *Mirror) Categories() []model.Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Category, len(m.categories))
	copy(out, m.categories)
	return out
}

// Products returns the current product list.
func (m *Mirror) Products() []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, len(m.products))
	copy(out, m.products)
	return out
}

// ProductsInCategory projects the product list onto one category name.
func (m *Mirror) ProductsInCategory(name string) []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Product
	for _, p := range m.products {
		if p.CategoryName == name {
			out = append(out, p)
		}
	}
	return out
}

// CategoryByID looks up a category in the current snapshot.
func (m *Mirror) CategoryByID(id string) (model.Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// ProductByID looks up a product in the current snapshot.
func (m *Mirror) ProductByID(id string) (model.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (m *Mirror) replaceCategories(docs []store.Document) {
	categories := make([]model.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, model.CategoryFromFields(doc.ID, doc.Fields))
	}

	m.mu.Lock()
	m.categories = categories
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	m.logger.Debug().Int("count", len(categories)).Msg("categories snapshot replaced")
	for _, fn := range listeners {
		fn()
	}
}

func (m *Mirror) replaceProducts(docs []store.Document) {
	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, model.ProductFromFields(doc.ID, doc.Fields))
	}

	m.mu.Lock()
	m.products = products
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	m.logger.Debug().Int("count", len(products)).Msg("products snapshot replaced")
	for _, fn := range listeners {
		fn()
	}
}
