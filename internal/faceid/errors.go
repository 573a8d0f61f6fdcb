package faceid

import (
	"errors"
	"fmt"
)

// Error kinds raised by the face identity core. Callers classify failures
// with errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrValidation marks malformed or missing input: bad extension,
	// oversized file, mismatched vector shapes, missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrImageProcessing covers inputs that passed format checks but failed
	// semantic processing: corrupt image, undecodable content, encoder
	// failure on a structurally valid crop.
	ErrImageProcessing = errors.New("image processing failed")

	// ErrNoFace is returned when the detector finds no face in the image.
	// It is a kind of ErrImageProcessing, so errors.Is matches both.
	ErrNoFace = fmt.Errorf("no face detected: %w", ErrImageProcessing)

	// ErrUnavailable marks transient infrastructure failures, e.g. the
	// encoder sidecar being unreachable. The input itself may be fine.
	ErrUnavailable = errors.New("service unavailable")
)
