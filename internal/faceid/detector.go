package faceid

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Detector finds faces in a decoded image.
type Detector interface {
	Detect(img image.Image) ([]Box, error)
}

// PigoDetector detects faces with the pigo cascade classifier.
type PigoDetector struct {
	classifier *pigo.Pigo
	minQuality float64
}

// LoadCascade reads a pigo cascade file from disk.
func LoadCascade(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cascade file %s: %w", path, err)
	}
	return data, nil
}

// NewPigoDetector unpacks the cascade and returns a detector. Detections
// scoring below minQuality are discarded.
func NewPigoDetector(cascade []byte, minQuality float64) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}
	return &PigoDetector{
		classifier: classifier,
		minQuality: minQuality,
	}, nil
}

// Detect runs the cascade over the image and returns clustered detections
// as pixel bounding boxes, in the classifier's original ordering.
func (d *PigoDetector) Detect(img image.Image) ([]Box, error) {
	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols, rows := src.Bounds().Max.X, src.Bounds().Max.Y

	maxSize := cols
	if rows < cols {
		maxSize = rows
	}

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	var boxes []Box
	for _, det := range dets {
		if float64(det.Q) < d.minQuality {
			continue
		}
		half := det.Scale / 2
		boxes = append(boxes, Box{
			X:       det.Col - half,
			Y:       det.Row - half,
			W:       det.Scale,
			H:       det.Scale,
			Quality: float64(det.Q),
		})
	}
	return boxes, nil
}
