package faceid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultEncoderURL = "http://localhost:8000"

// Encoder turns a face crop into a fixed-length embedding vector.
type Encoder interface {
	Encode(ctx context.Context, face image.Image) ([]float32, error)
}

// HTTPEncoder computes face embeddings using the encoder sidecar.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEncoder creates a new encoder client.
func NewHTTPEncoder(baseURL string) *HTTPEncoder {
	if baseURL == "" {
		baseURL = defaultEncoderURL
	}
	return &HTTPEncoder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// encodeResponse represents the response from the encoder sidecar.
type encodeResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint.
func (c *HTTPEncoder) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "face.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoder request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("encoder error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Encode posts the face crop to the sidecar and returns its embedding.
func (c *HTTPEncoder) Encode(ctx context.Context, face image.Image) ([]float32, error) {
	var img bytes.Buffer
	if err := jpeg.Encode(&img, face, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encoding face crop: %w", err)
	}

	body, err := c.postMultipartImage(ctx, "/encode/face", img.Bytes())
	if err != nil {
		return nil, err
	}

	var encResp encodeResponse
	if err := json.Unmarshal(body, &encResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(encResp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return encResp.Embedding, nil
}
