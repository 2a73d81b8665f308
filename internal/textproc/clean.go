// Package textproc normalizes extracted document text before it is handed
// to the graph indexer. OCR output is noisy: page numbers, running headers,
// and ragged whitespace all end up in the entity extraction context if they
// are not stripped here.
package textproc

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	pageNumberLine  = regexp.MustCompile(`\n\d+[ \t]*\n`)
	pageHeaderLine  = regexp.MustCompile(`(?i)\n[ \t]*page \d+[^\n]*\n`)
	excessBlankRuns = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)
)

// Clean normalizes extracted text: horizontal whitespace runs collapse to a
// single space, standalone page numbers and "Page N" header/footer lines are
// removed, and runs of blank lines shrink to one paragraph break.
//
// Line structure is preserved. The page-number patterns anchor on newlines,
// so flattening the text first would make them dead letters.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")

	// Anchored patterns consume the trailing newline, so adjacent page
	// artifacts need repeated passes.
	for {
		cleaned := pageNumberLine.ReplaceAllString(text, "\n")
		cleaned = pageHeaderLine.ReplaceAllString(cleaned, "\n")
		if cleaned == text {
			break
		}
		text = cleaned
	}

	text = excessBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
