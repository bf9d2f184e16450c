package service

import (
	"context"
	"io"

	"menu-admin/internal/model"
)

// CatalogReader is the slice of the live mirror the services read from. The
// mirror holds the only in-process copy of both collections, so current
// category names come from here rather than from an extra store round trip.
type CatalogReader interface {
	CategoryByID(id string) (model.Category, bool)
	ProductByID(id string) (model.Product, bool)
}

// CategoryService keeps products' denormalized category references consistent
// with category identity. Rename and delete cascade to every referencing
// product inside one atomic batch.
type CategoryService interface {
	// Create adds a category after trimming and duplicate-name checking.
	Create(ctx context.Context, name string) (string, error)

	// Rename changes a category's name and rewrites every product that
	// references the old name, all in one batch commit. Renaming to the
	// current name is a no-op with zero store writes.
	Rename(ctx context.Context, id, newName string) error

	// Delete removes the category and every product referencing it by name
	// as one all-or-nothing batch.
	Delete(ctx context.Context, id, name string) error
}

// FileUpload is an image supplied with a product save.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// SaveRequest carries the user-entered product fields. Price arrives as the
// raw input string and is parsed during validation.
type SaveRequest struct {
	Name        string
	Price       string
	Description string
	File        *FileUpload
}

// ProductService saves and deletes products. A save resolves the image URL
// first (uploading if a file was supplied) and only then writes the document;
// a failed upload aborts the save before any store write.
type ProductService interface {
	// Save creates a product (existing nil, targetCategoryName set) or
	// updates one (existing set; the category never changes on edit).
	Save(ctx context.Context, req SaveRequest, existing *model.Product, targetCategoryName string) error

	// Delete removes a single product.
	Delete(ctx context.Context, id string) error
}
