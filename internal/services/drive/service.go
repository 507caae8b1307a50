package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"vetter/internal/services"
)

const defaultDownloadBase = "https://www.googleapis.com/drive/v3/files"

// Service is the attachment storage surface the enrichment handler consumes.
type Service interface {
	ResolveReference(url string) (string, error)
	FetchBinary(ctx context.Context, id, expectedMIME string) ([]byte, error)
	ExtractText(data []byte) (string, error)
}

// HTTPDoer describes the HTTP client used by the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// referencePatterns cover the share URL formats the source produces.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([^/?&]+)`),
	regexp.MustCompile(`[?&]id=([^&]+)`),
	regexp.MustCompile(`open\?id=([^&]+)`),
}

type httpService struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// Option customizes the service.
type Option func(*httpService)

// WithBaseURL overrides the download endpoint (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(s *httpService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(s *httpService) {
		if client != nil {
			s.client = client
		}
	}
}

// NewService constructs the attachment storage client. The token, when set,
// is sent as a bearer credential on download requests.
func NewService(token string, opts ...Option) Service {
	svc := &httpService{
		baseURL: defaultDownloadBase,
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ResolveReference extracts the file identifier from a share URL.
func (s *httpService) ResolveReference(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", services.Wrap(services.ErrNotFound, "enrich", "resolve reference", "empty reference", nil)
	}
	for _, pattern := range referencePatterns {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			return match[1], nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "enrich", "resolve reference", "could not extract file ID from URL", nil)
}

// FetchBinary downloads the file content, failing when the served content
// type disagrees with the expected MIME type.
func (s *httpService) FetchBinary(ctx context.Context, id, expectedMIME string) ([]byte, error) {
	downloadURL := fmt.Sprintf("%s/%s?alt=media", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "enrich", "fetch binary", "build request", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "enrich", "fetch binary", "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, services.Wrap(services.ErrNotFound, "enrich", "fetch binary", fmt.Sprintf("file %s not found", id), nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(
			services.ErrCollaborator,
			"enrich", "fetch binary",
			fmt.Sprintf("storage returned %d", resp.StatusCode),
			nil,
		)
	}

	if expectedMIME != "" {
		contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
		if base, _, found := strings.Cut(contentType, ";"); found {
			contentType = strings.TrimSpace(base)
		}
		if contentType != "" && !strings.EqualFold(contentType, expectedMIME) {
			return nil, services.Wrap(
				services.ErrTypeMismatch,
				"enrich", "fetch binary",
				fmt.Sprintf("expected %s, got %s", expectedMIME, contentType),
				nil,
			)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "enrich", "fetch binary", "read body", err)
	}
	return data, nil
}

// ExtractText pulls plain text out of a PDF document. Extraction is best
// effort; callers degrade to an empty string plus an error annotation.
func (s *httpService) ExtractText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = services.Wrap(services.ErrCollaborator, "enrich", "extract text", fmt.Sprintf("pdf parse panic: %v", r), nil)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", services.Wrap(services.ErrCollaborator, "enrich", "extract text", "open pdf", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", services.Wrap(services.ErrCollaborator, "enrich", "extract text", "read pdf text", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", services.Wrap(services.ErrCollaborator, "enrich", "extract text", "copy pdf text", err)
	}
	return buf.String(), nil
}
