// Package upload stores product images on local disk or in S3.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("invalid file type, only JPEG, PNG and WebP are allowed")
	ErrTooLarge        = errors.New("file too large, maximum size is 5MB")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Storage persists an image and returns the URL clients should reference.
type Storage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a validated upload ready to be written.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadImage checks size and sniffed content type and assigns a random name.
func ReadImage(file *multipart.FileHeader) (Image, error) {
	if file.Size > MaxImageSize {
		return Image{}, ErrTooLarge
	}

	in, err := file.Open()
	if err != nil {
		return Image{}, err
	}
	defer in.Close()

	data, err := io.ReadAll(io.LimitReader(in, MaxImageSize+1))
	if err != nil {
		return Image{}, err
	}
	if len(data) > MaxImageSize {
		return Image{}, ErrTooLarge
	}

	contentType := mimetype.Detect(data).String()
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Image{}, ErrUnsupportedType
	}

	return Image{
		Name:        uuid.NewString() + ext,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (img Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}
