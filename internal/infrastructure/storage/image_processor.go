package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrNotAnImage    = errors.New("only image files are allowed")
)

// ImageProcessor checks uploads and normalizes them to bounded JPEGs.
type ImageProcessor struct {
	MaxSize      int64
	MaxDimension int
	Quality      int
}

func NewImageProcessor(maxSize int64) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	return &ImageProcessor{MaxSize: maxSize, MaxDimension: 1600, Quality: 85}
}

// Validate enforces the size limit and an image/* content type, then makes sure the
// bytes actually decode.
func (p *ImageProcessor) Validate(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("%w (%dMB)", ErrImageTooLarge, p.MaxSize/(1024*1024))
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return ErrNotAnImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return nil
}

// Process returns the image re-encoded as JPEG and fitted inside MaxDimension.
func (p *ImageProcessor) Process(data []byte) ([]byte, string, error) {
	if err := p.Validate(data); err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	out := new(bytes.Buffer)
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, "", fmt.Errorf("cannot encode image: %w", err)
	}
	return out.Bytes(), "image/jpeg", nil
}
