// Package ocr extracts text from PDF documents through a Stirling PDF
// service. Digital PDFs go through the direct text endpoint; scanned
// documents fall back to the OCR endpoint, which returns the recognized text
// as a sidecar file inside a zip archive.
package ocr

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/graphaudit/internal/cache"
	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/ppiankov/graphaudit/internal/util"
)

// Result is one extraction outcome.
type Result struct {
	// Text is the extracted document text
	Text string

	// UsedOCR reports whether the OCR fallback produced the text
	UsedOCR bool

	// FromCache reports whether the text came from the extraction cache
	FromCache bool
}

// Client talks to a Stirling PDF instance.
type Client struct {
	baseURL    string
	languages  []string
	httpClient *http.Client
	cache      cache.Cache // nil disables caching
}

// NewClient creates a Stirling PDF client from the OCR configuration.
// extractionCache may be nil.
func NewClient(cfg model.OCRConfig, extractionCache cache.Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.StirlingURL, "/"),
		languages: languages,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		cache: extractionCache,
	}
}

// IsAvailable probes the service root. Stirling PDF has no status endpoint;
// any HTTP response from the main page counts as reachable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// ExtractFile reads the PDF at path and extracts its text.
func (c *Client) ExtractFile(ctx context.Context, path string) (*Result, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return c.Extract(ctx, path, contents)
}

// Extract pulls text out of a PDF document. The direct text endpoint is
// tried first; on failure (typically a scanned document with no text layer)
// the OCR endpoint takes over. Results are cached by content hash.
func (c *Client) Extract(ctx context.Context, name string, contents []byte) (*Result, error) {
	if c.cache != nil {
		if text, found := c.cache.Get(cache.DocumentKey(contents, "text")); found {
			return &Result{Text: string(text), FromCache: true}, nil
		}
		if text, found := c.cache.Get(cache.DocumentKey(contents, "ocr")); found {
			return &Result{Text: string(text), UsedOCR: true, FromCache: true}, nil
		}
	}

	text, directErr := c.extractDirect(ctx, name, contents)
	if directErr == nil && strings.TrimSpace(text) != "" {
		c.store(contents, "text", text)
		return &Result{Text: text}, nil
	}

	text, err := c.extractOCR(ctx, name, contents)
	if err != nil {
		if directErr != nil {
			return nil, fmt.Errorf("direct extraction failed (%v); ocr failed: %w", directErr, err)
		}
		return nil, fmt.Errorf("ocr extraction: %w", err)
	}

	c.store(contents, "ocr", text)
	return &Result{Text: text, UsedOCR: true}, nil
}

func (c *Client) store(contents []byte, mode, text string) {
	if c.cache != nil {
		_ = c.cache.Set(cache.DocumentKey(contents, mode), []byte(text), 0)
	}
}

// extractDirect uses the text conversion endpoint, which only works for PDFs
// carrying a text layer.
func (c *Client) extractDirect(ctx context.Context, name string, contents []byte) (string, error) {
	body, err := c.postMultipart(ctx, "/api/v1/convert/pdf/text", name, contents, map[string]string{
		"outputFormat": "txt",
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// extractOCR runs the document through OCR with the sidecar option, which
// returns a zip holding the OCRed PDF plus a .txt with the recognized text.
func (c *Client) extractOCR(ctx context.Context, name string, contents []byte) (string, error) {
	fields := map[string]string{
		"languages":     strings.Join(c.languages, ","),
		"sidecar":       "true",
		"ocrType":       "force-ocr",
		"ocrRenderType": "sandwich",
		"clean":         "true",
		"cleanFinal":    "true",
	}

	body, err := c.postMultipart(ctx, "/api/v1/misc/ocr-pdf", name, contents, fields)
	if err != nil {
		return "", err
	}

	if text, ok := sidecarText(body); ok {
		return text, nil
	}

	// Not a zip: the service replied with the text (or the PDF) directly.
	return string(body), nil
}

// sidecarText pulls the first .txt entry out of a zip response.
func sidecarText(body []byte) (string, bool) {
	reader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", false
	}
	for _, file := range reader.File {
		if !strings.HasSuffix(file.Name, ".txt") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", false
		}
		text, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", false
		}
		return string(text), true
	}
	return "", false
}

func (c *Client) postMultipart(ctx context.Context, endpoint, name string, contents []byte, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("fileInput", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(contents); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stirling pdf returned status %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
