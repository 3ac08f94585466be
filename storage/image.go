package storage

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blognest/domain"
	"blognest/errs"
)

// ImageService stores post images as files in the filesystem.
// It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageCrud.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageCrud
}

// imageCrud runs create/read/delete operations on the filesystem using
// incoming Image data. It assumes that data has been validated.
type imageCrud struct {
	baseDir string
}

// NewImageService returns an instance of ImageService storing files under
// the given base directory.
func NewImageService(baseDir string) *ImageService {
	return &ImageService{
		imageValidator{
			imageCrud{
				baseDir: baseDir,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService
// interface. If it does not, then this expression becomes invalid and won't
// compile.
var _ domain.ImageService = &ImageService{}

// Create runs validations needed for storing a new image file.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.filenameUnique)
	if err != nil {
		return err
	}
	return iv.imageCrud.Create(img)
}

// runImageValFns runs any number of functions of type imageValFn on the
// passed in Image object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// An imageValFn is any function that takes in a pointer to a domain.Image
// object and returns an error.
type imageValFn func(img *domain.Image) error

// extensionValid normalizes the file extension and makes sure it is one of
// the allowed image types.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	img.Extension = strings.ToLower(filepath.Ext(img.Filename))
	if img.Extension == ".jpg" {
		img.Extension = ".jpeg"
	}
	switch img.Extension {
	case ".jpeg", ".png", ".gif":
		return nil
	}
	return errs.Errorf(errs.EINVALID, "The image must be jpeg, png or gif.")
}

// contentTypeValid sniffs the file's actual content type and makes sure it
// is an allowed image type. The client-provided content type is ignored.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buf := make([]byte, 512)
	n, err := img.File.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	if _, err := img.File.Seek(0, io.SeekStart); err != nil {
		return err
	}
	img.ContentType = http.DetectContentType(buf[:n])
	switch img.ContentType {
	case "image/jpeg", "image/png", "image/gif":
		return nil
	}
	return errs.Errorf(errs.EINVALID, "The image must be jpeg, png or gif.")
}

// contentTypeExtensionMatch makes sure the sniffed content type matches the
// file extension, so a renamed file doesn't slip through.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	if "image/"+strings.TrimPrefix(img.Extension, ".") != img.ContentType {
		return errs.Errorf(errs.EINVALID, "The image's content does not match its extension.")
	}
	return nil
}

// belowMaxSize makes sure the file does not exceed the maximum upload size.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := img.File.Seek(0, io.SeekStart); err != nil {
		return err
	}
	img.Size = size
	if size > domain.MaxUploadSize {
		return errs.Errorf(errs.EINVALID, "The image must not be larger than 5 MB.")
	}
	return nil
}

// filenameUnique replaces the uploaded filename with a fresh unique one,
// keeping the extension.
func (iv *imageValidator) filenameUnique(img *domain.Image) error {
	img.Filename = uuid.NewString() + img.Extension
	return nil
}

// Create writes the image file to the post's image directory and records its
// relative URL on the Image object.
func (ic *imageCrud) Create(img *domain.Image) error {
	dir := ic.postDir(img.PostID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(dir, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, img.File); err != nil {
		return err
	}
	img.URL = img.RelativePath()
	return nil
}

// ByPost returns the images stored for the given post.
func (ic *imageCrud) ByPost(postID int) ([]domain.Image, error) {
	paths, err := filepath.Glob(filepath.Join(ic.postDir(postID), "*"))
	if err != nil {
		return nil, err
	}
	images := make([]domain.Image, 0, len(paths))
	for _, p := range paths {
		img := domain.Image{
			PostID:   postID,
			Filename: filepath.Base(p),
		}
		img.URL = img.RelativePath()
		images = append(images, img)
	}
	return images, nil
}

// DeleteAll removes the whole image directory of the given post.
func (ic *imageCrud) DeleteAll(postID int) error {
	return os.RemoveAll(ic.postDir(postID))
}

// postDir returns the directory holding a post's images.
func (ic *imageCrud) postDir(postID int) string {
	return filepath.Join(ic.baseDir, "posts", fmt.Sprintf("%d", postID))
}
