// Package faceid implements the face identity core: detection, best-face
// selection, embedding extraction and embedding comparison.
package faceid

// Box is a face bounding box in pixel coordinates.
type Box struct {
	X, Y    int // top-left corner
	W, H    int
	Quality float64 // detector score
}

// Area returns the box area in pixels.
func (b Box) Area() float64 {
	return float64(b.W) * float64(b.H)
}

// Center returns the box center point.
func (b Box) Center() (float64, float64) {
	return float64(b.X) + float64(b.W)/2, float64(b.Y) + float64(b.H)/2
}
