//go:build !cgo

package summary

// newTreeSitterExtractors returns no extractors when cgo is unavailable, so
// Python and JavaScript files are summarized from their comments.
func newTreeSitterExtractors() map[string]declarationExtractor {
	return nil
}
