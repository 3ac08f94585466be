package domain

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
)

// MaxUploadSize determines the maximum filesize of an image to be uploaded.
const MaxUploadSize int64 = 5 << 20 // 5 Megabyte

// Image represents an image file attached to a Post. Images live as files in
// the filesystem and have no table of their own. The relation to their post
// is encoded in the storage path: the image of post 2 sits in
// images/posts/2/<unique-name>.png. URL holds that relative path.
// File carries the uploaded file on its way to disk.
type Image struct {
	URL    string `json:"url"`
	PostID int    `json:"-"`

	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
	Size        int64          `json:"-"`
}

// ImageService stores and retrieves image files for posts.
type ImageService interface {
	Create(image *Image) error
	ByPost(postID int) ([]Image, error)
	DeleteAll(postID int) error
}

// RelativePath returns the storage path of an image inside the images
// directory.
func (i *Image) RelativePath() string {
	return filepath.ToSlash(filepath.Join("posts", fmt.Sprintf("%d", i.PostID), i.Filename))
}
