package service

import (
	"context"
	"errors"
	"testing"

	"menu-admin/internal/catalog"
	"menu-admin/internal/model"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create_Success(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)

	mockStore.On("QueryByField", ctx, catalog.CategoriesCollection, "name", "Desserts").
		Return([]store.Document{}, nil)
	mockStore.On("Create", ctx, catalog.CategoriesCollection, map[string]any{"name": "Desserts"}).
		Return("C1", nil)

	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	id, err := svc.Create(ctx, "  Desserts  ")
	require.NoError(t, err)
	assert.Equal(t, "C1", id)
	mockStore.AssertExpectations(t)
}

func TestCategoryService_Create_EmptyName(t *testing.T) {
	mockStore := new(MockStore)
	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrEmptyCategoryName)
	mockStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_Create_DuplicateName(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)

	mockStore.On("QueryByField", ctx, catalog.CategoriesCollection, "name", "Desserts").
		Return([]store.Document{{ID: "C1", Fields: map[string]any{"name": "Desserts"}}}, nil)

	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	_, err := svc.Create(ctx, "Desserts")
	assert.ErrorIs(t, err, model.ErrCategoryExists)
	mockStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_Rename_Cascade(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockBatch := new(MockBatch)
	mirror := &fakeCatalog{categories: []model.Category{{ID: "C1", Name: "Desserts"}}}

	mockStore.On("QueryByField", ctx, catalog.ProductsCollection, "categoryName", "Desserts").
		Return([]store.Document{
			{ID: "P1", Fields: map[string]any{"categoryName": "Desserts"}},
			{ID: "P2", Fields: map[string]any{"categoryName": "Desserts"}},
		}, nil)
	mockStore.On("NewBatch").Return(mockBatch)

	mockBatch.On("Update", catalog.ProductsCollection, "P1", map[string]any{"categoryName": "Postres"}).Once()
	mockBatch.On("Update", catalog.ProductsCollection, "P2", map[string]any{"categoryName": "Postres"}).Once()
	mockBatch.On("Update", catalog.CategoriesCollection, "C1", map[string]any{"name": "Postres"}).Once()
	mockBatch.On("Commit", ctx).Return(nil).Once()

	svc := NewCategoryService(mockStore, mirror, zerolog.Nop())

	err := svc.Rename(ctx, "C1", "Postres")
	require.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockBatch.AssertExpectations(t)
}

func TestCategoryService_Rename_SameNameIsNoOp(t *testing.T) {
	mockStore := new(MockStore)
	mirror := &fakeCatalog{categories: []model.Category{{ID: "C1", Name: "Desserts"}}}

	svc := NewCategoryService(mockStore, mirror, zerolog.Nop())

	err := svc.Rename(context.Background(), "C1", " Desserts ")
	require.NoError(t, err)

	// An idempotent rename must produce zero store calls.
	mockStore.AssertNotCalled(t, "QueryByField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "NewBatch")
}

func TestCategoryService_Rename_EmptyName(t *testing.T) {
	mockStore := new(MockStore)
	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	err := svc.Rename(context.Background(), "C1", "  ")
	assert.ErrorIs(t, err, model.ErrEmptyCategoryName)
	mockStore.AssertNotCalled(t, "NewBatch")
}

func TestCategoryService_Rename_UnknownCategory(t *testing.T) {
	mockStore := new(MockStore)
	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	err := svc.Rename(context.Background(), "C9", "Postres")
	assert.ErrorIs(t, err, model.ErrCategoryNotFound)
}

func TestCategoryService_Rename_CommitFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockBatch := new(MockBatch)
	mirror := &fakeCatalog{categories: []model.Category{{ID: "C1", Name: "Desserts"}}}

	mockStore.On("QueryByField", ctx, catalog.ProductsCollection, "categoryName", "Desserts").
		Return([]store.Document{{ID: "P1", Fields: map[string]any{}}}, nil)
	mockStore.On("NewBatch").Return(mockBatch)
	mockBatch.On("Update", mock.Anything, mock.Anything, mock.Anything)
	mockBatch.On("Commit", ctx).Return(errors.New("store unavailable"))

	svc := NewCategoryService(mockStore, mirror, zerolog.Nop())

	err := svc.Rename(ctx, "C1", "Postres")
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeWrite, domainErr.Code)
}

func TestCategoryService_Delete_Cascade(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockBatch := new(MockBatch)

	mockStore.On("QueryByField", ctx, catalog.ProductsCollection, "categoryName", "Desserts").
		Return([]store.Document{
			{ID: "P1", Fields: map[string]any{"categoryName": "Desserts"}},
			{ID: "P2", Fields: map[string]any{"categoryName": "Desserts"}},
		}, nil)
	mockStore.On("NewBatch").Return(mockBatch)

	mockBatch.On("Delete", catalog.ProductsCollection, "P1").Once()
	mockBatch.On("Delete", catalog.ProductsCollection, "P2").Once()
	mockBatch.On("Delete", catalog.CategoriesCollection, "C1").Once()
	mockBatch.On("Commit", ctx).Return(nil).Once()

	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	err := svc.Delete(ctx, "C1", "Desserts")
	require.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockBatch.AssertExpectations(t)
}

func TestCategoryService_Delete_NoProductsStillDeletesCategory(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockBatch := new(MockBatch)

	mockStore.On("QueryByField", ctx, catalog.ProductsCollection, "categoryName", "Drinks").
		Return([]store.Document{}, nil)
	mockStore.On("NewBatch").Return(mockBatch)

	mockBatch.On("Delete", catalog.CategoriesCollection, "C2").Once()
	mockBatch.On("Commit", ctx).Return(nil).Once()

	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	err := svc.Delete(ctx, "C2", "Drinks")
	require.NoError(t, err)
	mockBatch.AssertExpectations(t)
	mockBatch.AssertNotCalled(t, "Delete", catalog.ProductsCollection, mock.Anything)
}

func TestCategoryService_Delete_CommitFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockBatch := new(MockBatch)

	mockStore.On("QueryByField", ctx, catalog.ProductsCollection, "categoryName", "Desserts").
		Return([]store.Document{{ID: "P1", Fields: map[string]any{}}}, nil)
	mockStore.On("NewBatch").Return(mockBatch)
	mockBatch.On("Delete", mock.Anything, mock.Anything)
	mockBatch.On("Commit", ctx).Return(errors.New("store unavailable"))

	svc := NewCategoryService(mockStore, &fakeCatalog{}, zerolog.Nop())

	err := svc.Delete(ctx, "C1", "Desserts")
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeWrite, domainErr.Code)
}
