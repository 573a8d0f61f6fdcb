package faceid

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultMaxUploadBytes caps submitted image files at 5 MB.
const DefaultMaxUploadBytes = 5 << 20

// cropSize is the edge length of the face crop sent to the encoder.
const cropSize = 160

// cropMargin widens the selected box on each side before cropping so the
// encoder sees some context around the face.
const cropMargin = 0.25

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// AllowedExtension reports whether the filename carries one of the
// accepted image extensions (case-insensitive).
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// ValidateImageFile checks extension and size before any decoding is
// attempted. Violations are ErrValidation.
func ValidateImageFile(path string, maxBytes int64) error {
	if !AllowedExtension(path) {
		return fmt.Errorf("%w: unsupported file extension %q, allowed: png, jpg, jpeg", ErrValidation, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat image file: %w", err)
	}
	if info.Size() > maxBytes {
		return fmt.Errorf("%w: file size %d exceeds limit of %d bytes", ErrValidation, info.Size(), maxBytes)
	}
	return nil
}

// Params holds the tunables of the extractor.
type Params struct {
	Dim            int     // embedding dimensionality, 128 for the current encoder model
	SelectorLambda float64 // best-face selector weight
	MaxUploadBytes int64   // file size cap
}

// Extractor converts an image file into a fixed-length face embedding.
// It is a pure function over its input: nothing is persisted here.
type Extractor struct {
	detector Detector
	encoder  Encoder
	params   Params
}

// NewExtractor wires a detector and an encoder into an extractor.
func NewExtractor(detector Detector, encoder Encoder, params Params) *Extractor {
	if params.SelectorLambda == 0 {
		params.SelectorLambda = DefaultSelectorLambda
	}
	if params.MaxUploadBytes == 0 {
		params.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Extractor{
		detector: detector,
		encoder:  encoder,
		params:   params,
	}
}

// Extract validates, decodes and detects faces in the image at path, then
// returns the embedding of the best face. Exactly one detected face is
// encoded directly; multiple faces go through the selector first so only
// the chosen crop is encoded.
func (e *Extractor) Extract(ctx context.Context, path string) ([]float32, error) {
	if err := ValidateImageFile(path, e.params.MaxUploadBytes); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrImageProcessing, err)
	}

	boxes, err := e.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("%w: face detection: %v", ErrImageProcessing, err)
	}
	if len(boxes) == 0 {
		return nil, ErrNoFace
	}

	box := boxes[0]
	if len(boxes) > 1 {
		bounds := img.Bounds()
		box = boxes[SelectBest(boxes, bounds.Dx(), bounds.Dy(), e.params.SelectorLambda)]
	}

	vec, err := e.encoder.Encode(ctx, cropFace(img, box))
	if errors.Is(err, ErrUnavailable) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: computing embedding: %v", ErrImageProcessing, err)
	}
	if len(vec) != e.params.Dim {
		return nil, fmt.Errorf("encoder returned %d-dimensional vector, want %d", len(vec), e.params.Dim)
	}
	return vec, nil
}

// cropFace cuts the box (widened by the crop margin) out of the image and
// scales it to the encoder's input size.
func cropFace(img image.Image, box Box) image.Image {
	pad := int(float64(box.W) * cropMargin)
	bounds := img.Bounds()

	x0 := max(box.X-pad, bounds.Min.X)
	y0 := max(box.Y-pad, bounds.Min.Y)
	x1 := min(box.X+box.W+pad, bounds.Max.X)
	y1 := min(box.Y+box.H+pad, bounds.Max.Y)

	dst := image.NewRGBA(image.Rect(0, 0, cropSize, cropSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, image.Rect(x0, y0, x1, y1), draw.Src, nil)
	return dst
}
