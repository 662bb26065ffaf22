package media

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

// Host stores bytes on a media CDN and returns a public URL for them.
type Host interface {
	Name() string
	Upload(ctx context.Context, f File, key string) (Asset, error)
	Delete(ctx context.Context, a Asset) error
}

// File is one buffered upload taken from a request.
type File struct {
	Field     string
	Filename  string
	MediaType string
	Data      []byte
}

// Kind reports image or video from the media type, or "" for anything else.
func (f File) Kind() string {
	switch {
	case strings.HasPrefix(f.MediaType, "image/"):
		return KindImage
	case strings.HasPrefix(f.MediaType, "video/"):
		return KindVideo
	}
	return ""
}

// Extension returns the filename extension, falling back to the sniffed one.
func (f File) Extension() string {
	if ext := strings.ToLower(path.Ext(f.Filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	return mimetype.Detect(f.Data).Extension()
}

// Asset is a stored object. PublicID is the host's handle for deleting it.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Kind     string `json:"kind"`
}

// FileError rejects a file before anything is uploaded.
type FileError struct {
	Field    string
	Filename string
	Reason   string
}

func (e *FileError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.Field, e.Filename, e.Reason)
}

// UploadError is a failed transfer to the media host.
type UploadError struct {
	Field    string
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s (%s) failed: %v", e.Field, e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// ObjectKey builds a timestamp-suffixed key without extension, e.g.
// studio/site-plan-1718000000000000000-3f2a9c1d.
func ObjectKey(folder, filename string, now time.Time) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		slug = "file"
	}
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	key := fmt.Sprintf("%s-%d-%s", slug, now.UnixNano(), uuid.NewString()[:8])
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return key
	}
	return folder + "/" + key
}
