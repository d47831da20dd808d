// Package vision provides an OCR service adapter backed by the Google
// Cloud Vision API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"

	"github.com/planroomhq/planroom-cli/internal/adapters/driven/ratelimit"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.OCRService = (*Service)(nil)

const (
	// featureDocumentText requests dense-text OCR, tuned for documents
	// rather than photos.
	featureDocumentText = "DOCUMENT_TEXT_DETECTION"

	// maxPagesPerRequest is the Vision API cap on pages per synchronous
	// files:annotate request with inline content.
	maxPagesPerRequest = 5
)

// Config holds configuration for the Vision OCR service.
type Config struct {
	// APIKey authenticates requests when set.
	APIKey string

	// ClientID, ClientSecret and RefreshToken authenticate through
	// OAuth when no API key is configured.
	ClientID     string
	ClientSecret string
	RefreshToken string

	// Endpoint overrides the API base URL. Empty uses the default
	// global endpoint; regional endpoints (eu-vision.googleapis.com)
	// keep processing inside a jurisdiction.
	Endpoint string
}

// Service recognises text in scanned documents using Google Cloud Vision.
type Service struct {
	api     *visionapi.Service
	limiter *ratelimit.Limiter
}

// NewService creates a Vision OCR service from the given configuration.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.RefreshToken != "":
		ts := RefreshTokenSource(ctx, cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken)
		opts = append(opts, option.WithTokenSource(ts))
	default:
		return nil, fmt.Errorf("vision: an API key or a refresh token is required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	api, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}

	return &Service{
		api:     api,
		limiter: ratelimit.New(ratelimit.ProviderVision),
	}, nil
}

// Recognize returns the recognised text of each page, in page order.
// PDFs and TIFFs go through the file annotation endpoint in page
// windows; anything else is treated as a single-page image.
func (s *Service) Recognize(ctx context.Context, data []byte, pageCount int) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("vision: empty document data")
	}

	if mimeType := detectFileMIME(data); mimeType != "" {
		return s.recognizeFile(ctx, data, mimeType, pageCount)
	}
	return s.recognizeImage(ctx, data)
}

// recognizeImage annotates a single image and returns its text as one page.
func (s *Service) recognizeImage(ctx context.Context, data []byte) ([]string, error) {
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []*visionapi.Feature{{Type: featureDocumentText}},
		}},
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.api.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, s.wrapError(err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision: empty annotation response")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, fmt.Errorf("vision: annotation failed: %s", annotation.Error.Message)
	}

	return []string{annotationText(annotation)}, nil
}

// recognizeFile annotates a PDF or TIFF page window by page window.
func (s *Service) recognizeFile(ctx context.Context, data []byte, mimeType string, pageCount int) ([]string, error) {
	content := base64.StdEncoding.EncodeToString(data)

	if pageCount < 1 {
		pageCount = 1
	}
	pages := make([]string, 0, pageCount)

	// The first request omits the page list. The response covers the
	// first window and reports the file's real page count, which
	// corrects the extraction hint.
	first, err := s.annotateFile(ctx, content, mimeType, nil)
	if err != nil {
		return nil, err
	}
	pages = append(pages, first.texts...)

	for start := maxPagesPerRequest + 1; start <= first.totalPages; start += maxPagesPerRequest {
		nums := make([]int64, 0, maxPagesPerRequest)
		for p := start; p <= first.totalPages && p < start+maxPagesPerRequest; p++ {
			nums = append(nums, int64(p))
		}

		window, err := s.annotateFile(ctx, content, mimeType, nums)
		if err != nil {
			return nil, err
		}
		pages = append(pages, window.texts...)
	}

	return pages, nil
}

// fileAnnotation holds one files:annotate window worth of results.
type fileAnnotation struct {
	texts      []string
	totalPages int
}

func (s *Service) annotateFile(ctx context.Context, content, mimeType string, pageNums []int64) (*fileAnnotation, error) {
	req := &visionapi.BatchAnnotateFilesRequest{
		Requests: []*visionapi.AnnotateFileRequest{{
			InputConfig: &visionapi.InputConfig{
				Content:  content,
				MimeType: mimeType,
			},
			Features: []*visionapi.Feature{{Type: featureDocumentText}},
			Pages:    pageNums,
		}},
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.api.Files.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, s.wrapError(err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision: empty annotation response")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, fmt.Errorf("vision: file annotation failed: %s", fileResp.Error.Message)
	}

	result := &fileAnnotation{
		texts:      make([]string, 0, len(fileResp.Responses)),
		totalPages: int(fileResp.TotalPages),
	}
	for _, annotation := range fileResp.Responses {
		if annotation.Error != nil {
			return nil, fmt.Errorf("vision: page annotation failed: %s", annotation.Error.Message)
		}
		result.texts = append(result.texts, annotationText(annotation))
	}
	if result.totalPages <= 0 {
		result.totalPages = len(result.texts)
	}

	return result, nil
}

// annotationText extracts the recognised text from a page annotation.
// Pages with no recognisable text come back without a full text
// annotation and yield an empty page.
func annotationText(annotation *visionapi.AnnotateImageResponse) string {
	if annotation == nil || annotation.FullTextAnnotation == nil {
		return ""
	}
	return annotation.FullTextAnnotation.Text
}

// detectFileMIME identifies formats that must go through files:annotate
// rather than images:annotate. Returns "" for plain image formats.
func detectFileMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "image/tiff"
	default:
		return ""
	}
}

// Close releases resources.
func (s *Service) Close() error {
	// The underlying HTTP client doesn't need explicit cleanup
	return nil
}
