package service

import (
	"context"
	"strings"

	"menu-admin/internal/catalog"
	"menu-admin/internal/model"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
//
// The cascade match set is computed by a point-in-time query followed by a
// batch commit. A product created or re-categorized into the old name between
// the query and the commit is missed by the cascade and violates the
// name-reference invariant until corrected by hand. Closing that window needs
// store-side transactional reads, which the Store surface does not offer.
type categoryService struct {
	store  store.Store
	mirror CatalogReader
	logger zerolog.Logger
}

// NewCategoryService creates the category consistency engine.
func NewCategoryService(s store.Store, mirror CatalogReader, logger zerolog.Logger) CategoryService {
	return &categoryService{
		store:  s,
		mirror: mirror,
		logger: logger.With().Str("service", "category").Logger(),
	}
}

// Create rejects empty and duplicate names before writing. The duplicate
// check is a convention, not a store constraint.
func (s *categoryService) Create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrEmptyCategoryName
	}

	existing, err := s.store.QueryByField(ctx, catalog.CategoriesCollection, "name", name)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to check for duplicate category")
		return "", model.WrapDomainError(model.ErrCodeWrite, "failed to create category", err)
	}
	if len(existing) > 0 {
		return "", model.ErrCategoryExists
	}

	id, err := s.store.Create(ctx, catalog.CategoriesCollection, model.Category{Name: name}.ToFields())
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create category")
		return "", model.WrapDomainError(model.ErrCodeWrite, "failed to create category", err)
	}

	s.logger.Info().Str("category_id", id).Str("name", name).Msg("category created")
	return id, nil
}

// Rename updates the category document and every product referencing the old
// name in one atomic batch.
func (s *categoryService) Rename(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.ErrEmptyCategoryName
	}

	category, ok := s.mirror.CategoryByID(id)
	if !ok {
		return model.ErrCategoryNotFound
	}
	if category.Name == newName {
		s.logger.Debug().Str("category_id", id).Str("name", newName).Msg("rename to current name, nothing to do")
		return nil
	}

	matched, err := s.store.QueryByField(ctx, catalog.ProductsCollection, "categoryName", category.Name)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id).Msg("failed to query referencing products")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to rename category", err)
	}

	batch := s.store.NewBatch()
	for _, doc := range matched {
		batch.Update(catalog.ProductsCollection, doc.ID, map[string]any{"categoryName": newName})
	}
	batch.Update(catalog.CategoriesCollection, id, map[string]any{"name": newName})

	if err := batch.Commit(ctx); err != nil {
		s.logger.Error().Err(err).
			Str("category_id", id).
			Str("old_name", category.Name).
			Str("new_name", newName).
			Msg("rename cascade failed, nothing was changed")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to rename category", err)
	}

	s.logger.Info().
		Str("category_id", id).
		Str("old_name", category.Name).
		Str("new_name", newName).
		Int("products_updated", len(matched)).
		Msg("category renamed")
	return nil
}

// Delete removes the category and all referencing products in one batch. An
// empty match set still deletes the category itself.
func (s *categoryService) Delete(ctx context.Context, id, name string) error {
	matched, err := s.store.QueryByField(ctx, catalog.ProductsCollection, "categoryName", name)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id).Msg("failed to query referencing products")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to delete category", err)
	}

	batch := s.store.NewBatch()
	for _, doc := range matched {
		batch.Delete(catalog.ProductsCollection, doc.ID)
	}
	batch.Delete(catalog.CategoriesCollection, id)

	if err := batch.Commit(ctx); err != nil {
		s.logger.Error().Err(err).
			Str("category_id", id).
			Str("name", name).
			Msg("delete cascade failed, nothing was changed")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to delete category", err)
	}

	s.logger.Info().
		Str("category_id", id).
		Str("name", name).
		Int("products_deleted", len(matched)).
		Msg("category deleted with its products")
	return nil
}
