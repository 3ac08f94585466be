package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blognest/domain"
	"blognest/errs"
)

// pngBytes is a minimal payload carrying the png file signature, enough for
// content type sniffing.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func testImageFile(t *testing.T, name string, content []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCreateImage(t *testing.T) {
	baseDir := t.TempDir()
	is := NewImageService(baseDir)

	img := domain.Image{
		PostID:   7,
		File:     testImageFile(t, "photo.png", pngBytes),
		Filename: "photo.png",
	}
	require.NoError(t, is.Create(&img))

	// The filename is replaced with a unique one, the extension stays.
	assert.NotEqual(t, "photo.png", img.Filename)
	assert.Equal(t, ".png", filepath.Ext(img.Filename))
	assert.NotEmpty(t, img.URL)

	stored, err := is.ByPost(7)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, img.URL, stored[0].URL)
}

func TestCreateImageRejectsUnknownExtension(t *testing.T) {
	is := NewImageService(t.TempDir())

	img := domain.Image{
		PostID:   7,
		File:     testImageFile(t, "notes.txt", []byte("just text")),
		Filename: "notes.txt",
	}
	err := is.Create(&img)

	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestCreateImageRejectsMismatchedContent(t *testing.T) {
	is := NewImageService(t.TempDir())

	// png content disguised with a jpeg name.
	img := domain.Image{
		PostID:   7,
		File:     testImageFile(t, "photo.jpeg", pngBytes),
		Filename: "photo.jpeg",
	}
	err := is.Create(&img)

	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestDeleteAll(t *testing.T) {
	is := NewImageService(t.TempDir())

	img := domain.Image{
		PostID:   7,
		File:     testImageFile(t, "photo.png", pngBytes),
		Filename: "photo.png",
	}
	require.NoError(t, is.Create(&img))
	require.NoError(t, is.DeleteAll(7))

	stored, err := is.ByPost(7)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
