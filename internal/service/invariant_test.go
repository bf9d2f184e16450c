package service

import (
	"context"
	"testing"

	"menu-admin/internal/catalog"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertReferencesConsistent checks that every product's categoryName matches
// the name of an existing category.
func assertReferencesConsistent(t *testing.T, mirror *catalog.Mirror) {
	t.Helper()
	names := make(map[string]bool)
	for _, c := range mirror.Categories() {
		names[c.Name] = true
	}
	for _, p := range mirror.Products() {
		assert.True(t, names[p.CategoryName],
			"product %q references missing category %q", p.Name, p.CategoryName)
	}
}

// Runs the full engine + orchestrator + mirror against the in-memory store and
// checks the name-reference invariant after every settled operation.
func TestCatalog_ReferencesStayConsistent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(zerolog.Nop())
	mirror := catalog.NewMirror(mem, zerolog.Nop())
	require.NoError(t, mirror.Start(ctx))
	defer mirror.Stop()

	categories := NewCategoryService(mem, mirror, zerolog.Nop())
	products := NewProductService(mem, new(MockUploader), zerolog.Nop())

	dessertsID, err := categories.Create(ctx, "Desserts")
	require.NoError(t, err)
	_, err = categories.Create(ctx, "Tacos")
	require.NoError(t, err)
	assertReferencesConsistent(t, mirror)

	require.NoError(t, products.Save(ctx, SaveRequest{Name: "Flan", Price: "5.5"}, nil, "Desserts"))
	require.NoError(t, products.Save(ctx, SaveRequest{Name: "Brownie", Price: "4"}, nil, "Desserts"))
	require.NoError(t, products.Save(ctx, SaveRequest{Name: "Al Pastor", Price: "3"}, nil, "Tacos"))
	assertReferencesConsistent(t, mirror)

	// Rename cascades to both dessert products in one commit.
	require.NoError(t, categories.Rename(ctx, dessertsID, "Postres"))
	assertReferencesConsistent(t, mirror)
	assert.Len(t, mirror.ProductsInCategory("Postres"), 2)
	assert.Empty(t, mirror.ProductsInCategory("Desserts"))

	// Editing a product keeps it in its renamed category.
	edited := mirror.ProductsInCategory("Postres")[0]
	require.NoError(t, products.Save(ctx, SaveRequest{Name: edited.Name, Price: "6.0"}, &edited, "Tacos"))
	assertReferencesConsistent(t, mirror)
	assert.Len(t, mirror.ProductsInCategory("Postres"), 2)

	// Delete cascades category and products away together.
	require.NoError(t, categories.Delete(ctx, dessertsID, "Postres"))
	assertReferencesConsistent(t, mirror)
	assert.Empty(t, mirror.ProductsInCategory("Postres"))
	assert.Len(t, mirror.Products(), 1)
	assert.Len(t, mirror.Categories(), 1)
}

func TestCatalog_DuplicateCategoryNameRejected(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(zerolog.Nop())
	mirror := catalog.NewMirror(mem, zerolog.Nop())
	require.NoError(t, mirror.Start(ctx))
	defer mirror.Stop()

	categories := NewCategoryService(mem, mirror, zerolog.Nop())

	_, err := categories.Create(ctx, "Desserts")
	require.NoError(t, err)

	_, err = categories.Create(ctx, " Desserts ")
	require.Error(t, err)
	assert.Len(t, mirror.Categories(), 1)
}
