// Package cache provides the extraction cache: text pulled out of a PDF is
// keyed by the document's content hash, so re-running the pipeline never
// re-extracts (or re-OCRs) an unchanged document even if it was renamed or
// moved.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentKey generates a cache key from document contents and the
// extraction mode ("text" or "ocr"). The two modes cache separately: a
// document extracted via the direct path may still need an OCR pass later.
func DocumentKey(contents []byte, mode string) string {
	hash := sha256.Sum256(contents)
	return "graphaudit-v1-" + mode + "-" + hex.EncodeToString(hash[:])
}
