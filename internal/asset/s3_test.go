package asset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("menu-images/", "flan.JPG")

	assert.True(t, strings.HasPrefix(key, "menu-images/"))
	assert.True(t, strings.HasSuffix(key, ".JPG"))

	// Keys are random so the same filename never clobbers an earlier upload.
	assert.NotEqual(t, key, objectKey("menu-images/", "flan.JPG"))
}

func TestObjectURL(t *testing.T) {
	url := objectURL("menu-assets", "eu-west-1", "menu-images/abc.png")

	assert.Equal(t, "https://menu-assets.s3.eu-west-1.amazonaws.com/menu-images/abc.png", url)
}

func TestDisabledUploader(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "flan.jpg", strings.NewReader("bytes"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
