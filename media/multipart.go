package media

import (
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Limits bound what a single request may carry.
type Limits struct {
	MaxFileBytes int64
	MaxFiles     int
}

// FromMultipart buffers the files posted under the given field names, in field
// then form order. Declared types that are missing or generic are sniffed.
// Files under any other field name are rejected.
func FromMultipart(form *multipart.Form, fields []string, limits Limits) ([]File, error) {
	if form == nil {
		return nil, nil
	}
	for _, name := range slices.Sorted(maps.Keys(form.File)) {
		if len(form.File[name]) > 0 && !slices.Contains(fields, name) {
			return nil, &FileError{Field: name, Reason: "is not a file field"}
		}
	}
	var files []File
	for _, field := range fields {
		for _, fh := range form.File[field] {
			if limits.MaxFiles > 0 && len(files) >= limits.MaxFiles {
				return nil, &FileError{Field: field, Reason: fmt.Sprintf("too many files, at most %d allowed", limits.MaxFiles)}
			}
			if limits.MaxFileBytes > 0 && fh.Size > limits.MaxFileBytes {
				return nil, &FileError{Field: field, Filename: fh.Filename, Reason: fmt.Sprintf("file exceeds %d bytes", limits.MaxFileBytes)}
			}
			f, err := readPart(field, fh)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}

func readPart(field string, fh *multipart.FileHeader) (File, error) {
	rc, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return NewFile(field, fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

// NewFile buffers data, sniffing the media type when the declared one is unusable.
func NewFile(field, filename, declared string, data []byte) File {
	mediaType := declared
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mimetype.Detect(data).String()
	}
	if mt, _, ok := strings.Cut(mediaType, ";"); ok {
		mediaType = strings.TrimSpace(mt)
	}
	return File{Field: field, Filename: filename, MediaType: mediaType, Data: data}
}

// Check rejects empty files and anything that is not an image or video.
func Check(files []File) error {
	for _, f := range files {
		if len(f.Data) == 0 {
			return &FileError{Field: f.Field, Filename: f.Filename, Reason: "file is empty"}
		}
		if f.Kind() == "" {
			return &FileError{Field: f.Field, Filename: f.Filename, Reason: fmt.Sprintf("unsupported media type %q", f.MediaType)}
		}
	}
	return nil
}
