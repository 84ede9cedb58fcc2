package model

// AssetCategory selects which kind of asset a sync run attaches.
type AssetCategory string

const (
	CategoryImage AssetCategory = "image"
	CategorySpec  AssetCategory = "spec"
)

// AssetCandidate is one file discovered in the source Drive folder (or
// named explicitly by id). Created during enumeration, consumed once by
// the pipeline, never mutated.
type AssetCandidate struct {
	SourceFileID string
	FileName     string
	MimeType     string
	SizeBytes    int64
}

// TransferStatus is the terminal outcome of one candidate.
type TransferStatus string

const (
	StatusSuccess TransferStatus = "success"
	StatusSkipped TransferStatus = "skipped"
	StatusError   TransferStatus = "error"
)

// TransferResult records the terminal state of one candidate. Append-only;
// the orchestrator accumulates these into the run summary.
type TransferResult struct {
	SourceFileID       string
	FileName           string
	Status             TransferStatus
	DestinationAssetID string
	MatchedVariant     *Variant
	Reason             string
}

// RunSummary is the only contract the orchestrator exposes upward.
type RunSummary struct {
	RunID     string
	Category  AssetCategory
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Results   []TransferResult
}
