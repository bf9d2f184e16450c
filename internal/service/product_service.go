package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"menu-admin/internal/asset"
	"menu-admin/internal/catalog"
	"menu-admin/internal/model"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
)

// saveState tracks a single save invocation through its lifecycle. Transitions
// are logged so the progress of an in-flight save is observable; there are no
// automatic retries, the caller re-invokes after a failure.
type saveState int

const (
	stateValidating saveState = iota
	stateUploadingAsset
	stateCommitting
	stateSucceeded
	stateFailed
)

func (s saveState) String() string {
	switch s {
	case stateValidating:
		return "validating"
	case stateUploadingAsset:
		return "uploading_asset"
	case stateCommitting:
		return "committing"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// productService implements ProductService.
type productService struct {
	store    store.Store
	uploader asset.Uploader
	logger   zerolog.Logger
}

// NewProductService creates the product save orchestrator.
func NewProductService(s store.Store, uploader asset.Uploader, logger zerolog.Logger) ProductService {
	return &productService{
		store:    s,
		uploader: uploader,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// Save validates, resolves the image URL (uploading first when a file is
// supplied), resolves the category, then commits the document write. The
// upload strictly precedes any store write; if it fails no write happens.
// If the upload succeeds and the write then fails, the uploaded asset is
// orphaned rather than rolled back.
func (s *productService) Save(ctx context.Context, req SaveRequest, existing *model.Product, targetCategoryName string) error {
	logger := s.logger.With().Str("product", strings.TrimSpace(req.Name)).Logger()
	logger.Debug().Str("state", stateValidating.String()).Msg("save started")

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.ErrEmptyProductName
	}
	// ParseFloat accepts "NaN" and "Inf", and NaN compares false with
	// everything, so the finiteness checks are explicit.
	price, err := strconv.ParseFloat(strings.TrimSpace(req.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return model.ErrInvalidPrice
	}

	imageURL := ""
	if existing != nil {
		imageURL = existing.ImageURL
	}
	if req.File != nil {
		logger.Debug().Str("state", stateUploadingAsset.String()).Str("filename", req.File.Filename).Msg("uploading image")
		url, err := s.uploader.Upload(ctx, req.File.Filename, req.File.Content)
		if err != nil {
			logger.Error().Err(err).Str("state", stateFailed.String()).Msg("image upload failed, save aborted")
			return model.WrapDomainError(model.ErrCodeUpload, "failed to upload image", err)
		}
		imageURL = url
	}

	categoryName := targetCategoryName
	if existing != nil {
		// Edits never move a product between categories through this path.
		categoryName = existing.CategoryName
	}

	product := model.Product{
		Name:         name,
		Price:        price,
		Description:  strings.TrimSpace(req.Description),
		ImageURL:     imageURL,
		CategoryName: categoryName,
	}

	logger.Debug().Str("state", stateCommitting.String()).Msg("writing product document")
	if existing != nil {
		err = s.store.Update(ctx, catalog.ProductsCollection, existing.ID, product.ToFields())
	} else {
		_, err = s.store.Create(ctx, catalog.ProductsCollection, product.ToFields())
	}
	if err != nil {
		if req.File != nil {
			// The freshly uploaded asset is now unreferenced. Accepted leak.
			logger.Warn().Str("image_url", imageURL).Msg("product write failed after upload, asset orphaned")
		}
		logger.Error().Err(err).Str("state", stateFailed.String()).Msg("product write failed")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to save product", err)
	}

	logger.Info().
		Str("state", stateSucceeded.String()).
		Str("category", categoryName).
		Bool("created", existing == nil).
		Msg("product saved")
	return nil
}

// Delete removes a single product document.
func (s *productService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, catalog.ProductsCollection, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return model.WrapDomainError(model.ErrCodeWrite, "failed to delete product", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
