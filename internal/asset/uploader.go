// Package asset uploads product images to an external host and hands back a
// durable URL. The catalog never stores image bytes itself; a failed upload
// aborts the save that requested it.
package asset

import (
	"context"
	"errors"
	"io"
)

// ErrUploadsDisabled is returned when no uploader is configured.
var ErrUploadsDisabled = errors.New("image uploads are disabled")

// Uploader sends a binary asset to the external host and returns the durable
// retrieval URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// Disabled is the uploader used when no asset host is configured. Saves
// without an image are unaffected; saves with an image fail cleanly.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	return "", ErrUploadsDisabled
}
