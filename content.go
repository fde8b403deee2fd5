package searchqa

// ExtractResult is the readable part of a fetched page.
type ExtractResult struct {
	Title string

	// ContentHTML is the page's main content with navigation, ads and
	// other boilerplate removed. Empty when the extractor found nothing
	// worth reading.
	ContentHTML string
}

// Extractor pulls the main content out of a page. A PageFetcher tries its
// extractors in order; an error or an empty ContentHTML passes the page to
// the next one.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter turns extracted HTML into the plain text given to the model
// as evidence.
type Converter interface {
	Convert(html string) (string, error)
}
