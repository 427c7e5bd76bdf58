package llm

import "context"

// ExtractRequest carries one document to the vision extraction oracle.
type ExtractRequest struct {
	Data     []byte // raw document bytes
	MimeType string // per constants.MimeForExt
	Filename string // hint only, used in logs

	// WithCategory selects the six-field prompt (adds Category/Description)
	// used by the direct-to-report flow; the rename flow uses four fields.
	WithCategory bool
}

// Extractor is the extraction oracle: document bytes in, a labeled free-text
// block out. The pipeline never retries internally; a failure means "no data
// for this document".
type Extractor interface {
	ExtractText(ctx context.Context, req ExtractRequest) (string, error)
}

// CategoryRequest asks the category oracle to place one expense into a closed
// category list.
type CategoryRequest struct {
	Vendor     string
	Notes      string
	Filename   string
	Categories []string
}

// CategoryOracle must answer with exactly one member of req.Categories as
// plain text. Anything else is a contract violation handled by the caller.
type CategoryOracle interface {
	Categorize(ctx context.Context, req CategoryRequest) (string, error)
}
