// Package vision produces raw OCR envelopes for product images using the
// Google Cloud Vision API. The serialized response is exactly the
// `{"responses": [...]}` JSON shape the ocr package parses, so images can be
// annotated once, archived, and re-mined offline at any time.
package vision

import (
	"context"
	"errors"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
)

// MaxImageSizeBytes is the maximum image size accepted by the Vision API
// for synchronous annotation (20MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

var (
	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrImageTooLarge is returned when the image exceeds the API size limit.
	ErrImageTooLarge = errors.New("image size exceeds the maximum limit (20MB)")

	// ErrAnnotationFailed is returned when the Vision API call fails or
	// returns an error response.
	ErrAnnotationFailed = errors.New("image annotation failed")
)

// Client wraps the Vision image annotator.
type Client struct {
	client *vision.ImageAnnotatorClient
}

// NewClient creates a Vision client with credentials from the environment:
// inline GOOGLE_CREDENTIALS JSON first, then a GOOGLE_APPLICATION_CREDENTIALS
// file, then application default credentials.
func NewClient(ctx context.Context) (*Client, error) {
	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, fmt.Errorf("vision: creating client with GOOGLE_CREDENTIALS: %w", err)
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, fmt.Errorf("vision: creating client with GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("vision: %w", ErrMissingCredentials)
		}
	}

	return &Client{client: client}, nil
}

// annotationFeatures is the feature set requested for every product image:
// structured text plus every visual signal the extractors consume.
var annotationFeatures = []*visionpb.Feature{
	{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
	{Type: visionpb.Feature_TEXT_DETECTION},
	{Type: visionpb.Feature_LOGO_DETECTION, MaxResults: 10},
	{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 10},
	{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
	{Type: visionpb.Feature_FACE_DETECTION, MaxResults: 10},
}

// AnnotateImage runs the full annotation feature set over an image and
// returns the raw OCR envelope JSON.
func (c *Client) AnnotateImage(ctx context.Context, imageData []byte) ([]byte, error) {
	if len(imageData) > MaxImageSizeBytes {
		return nil, fmt.Errorf("vision: %w: %d bytes", ErrImageTooLarge, len(imageData))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: imageData},
				Features: annotationFeatures,
			},
		},
	}

	resp, err := c.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision: %w: %v", ErrAnnotationFailed, err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision: %w: empty response", ErrAnnotationFailed)
	}
	if respErr := resp.Responses[0].Error; respErr != nil {
		return nil, fmt.Errorf("vision: %w: %s", ErrAnnotationFailed, respErr.Message)
	}

	// protojson renders the proto field names in camelCase, which is the
	// exact envelope shape ocr.FromJSON expects.
	envelope, err := protojson.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("vision: serializing response: %w", err)
	}
	return envelope, nil
}

// Close closes the underlying Vision client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
