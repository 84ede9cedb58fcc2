package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopify-asset-sync/internal/adapters/drive"
	"shopify-asset-sync/internal/adapters/shopify"
	"shopify-asset-sync/internal/domain/model"
	"shopify-asset-sync/internal/logging"
	"shopify-asset-sync/internal/matching"
)

// SyncAssetsService runs one asset-category sync pass.
type SyncAssetsService interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// SyncOptions selects which files a run processes and how the catalog is
// fetched. Exactly one of FolderID or FileIDs should be set.
type SyncOptions struct {
	Category           model.AssetCategory
	FolderID           string
	FileIDs            []string
	ProductType        string
	PageSize           int
	MaxCatalogRecords  int
	MetafieldNamespace string
}

type ClientAssets struct {
	driveClient   drive.StorageService
	shopifyClient shopify.CatalogService
	matcher       *matching.Matcher
	dedupStore    DedupStore
	logger        logging.LoggerService
	opts          SyncOptions
}

func NewSyncAssets(driveClient drive.StorageService, shopifyClient shopify.CatalogService, matcher *matching.Matcher, dedupStore DedupStore, logger logging.LoggerService, opts SyncOptions) SyncAssetsService {
	if opts.Category == "" {
		opts.Category = model.CategoryImage
	}
	if opts.MetafieldNamespace == "" {
		opts.MetafieldNamespace = "custom"
	}
	return &ClientAssets{
		driveClient:   driveClient,
		shopifyClient: shopifyClient,
		matcher:       matcher,
		dedupStore:    dedupStore,
		logger:        logger,
		opts:          opts,
	}
}

// Run builds the catalog index once, enumerates the source files and
// pushes each through the transfer pipeline sequentially. Per-file errors
// become results; only catalog build and folder lookup are run-fatal.
func (c *ClientAssets) Run(ctx context.Context) (*model.RunSummary, error) {
	if c.logger != nil {
		c.logger.Log(fmt.Sprintf("Asset sync started category=%s", c.opts.Category))
	}

	index, err := matching.BuildCatalogIndex(ctx, c.shopifyClient, matching.IndexOptions{
		ProductType: c.opts.ProductType,
		PageSize:    c.opts.PageSize,
		MaxRecords:  c.opts.MaxCatalogRecords,
	})
	if err != nil {
		if c.logger != nil {
			c.logger.LogError("Error building catalog index", err)
		}
		return nil, err
	}
	if index.PagesFailed && c.logger != nil {
		c.logger.LogWarning(fmt.Sprintf("Catalog index is partial: pagination stopped after %d variants", index.Len()))
	}

	candidates, err := c.enumerate(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.LogError("Error enumerating source files", err)
		}
		return nil, err
	}

	tracker := NewDedupTracker(c.opts.Category)
	c.seedTracker(ctx, tracker)

	summary := &model.RunSummary{
		RunID:    uuid.NewString(),
		Category: c.opts.Category,
	}

	for _, candidate := range candidates {
		// Cancellation is honored between files only; a file already in
		// flight runs to a terminal state so no staged upload is left
		// uncommitted.
		if ctx.Err() != nil {
			break
		}

		result := c.processOne(ctx, candidate, index, tracker)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case model.StatusSuccess:
			summary.Succeeded++
		case model.StatusSkipped:
			summary.Skipped++
		case model.StatusError:
			summary.Failed++
		}
	}
	summary.Total = len(summary.Results)

	if c.logger != nil {
		c.logger.LogSuccess(fmt.Sprintf(
			"Asset sync completed category=%s total=%d succeeded=%d skipped=%d failed=%d",
			c.opts.Category, summary.Total, summary.Succeeded, summary.Skipped, summary.Failed,
		))
	}
	return summary, nil
}

func (c *ClientAssets) enumerate(ctx context.Context) ([]model.AssetCandidate, error) {
	if len(c.opts.FileIDs) > 0 {
		candidates := make([]model.AssetCandidate, 0, len(c.opts.FileIDs))
		for _, id := range c.opts.FileIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			// Metadata is fetched inside the pipeline so a bad id costs
			// one per-file error, not the run.
			candidates = append(candidates, model.AssetCandidate{SourceFileID: id})
		}
		return candidates, nil
	}
	return c.driveClient.ListFolder(ctx, c.opts.FolderID)
}

func (c *ClientAssets) seedTracker(ctx context.Context, tracker *DedupTracker) {
	if c.dedupStore == nil {
		return
	}
	keys, err := c.dedupStore.Seed(ctx, c.opts.Category)
	if err != nil {
		if c.logger != nil {
			c.logger.LogWarning(fmt.Sprintf("dedup store seed failed, starting empty: %v", err))
		}
		return
	}
	tracker.SeedFrom(keys)
}

// processOne drives a single candidate through the pipeline to a terminal
// state. All errors are converted into the returned TransferResult.
func (c *ClientAssets) processOne(ctx context.Context, candidate model.AssetCandidate, index *matching.CatalogIndex, tracker *DedupTracker) model.TransferResult {
	state := newTransferState()
	result := model.TransferResult{
		SourceFileID: candidate.SourceFileID,
		FileName:     candidate.FileName,
	}

	fail := func(stage string, err error) model.TransferResult {
		state.advance(stateErrored)
		result.Status = model.StatusError
		result.Reason = fmt.Sprintf("%s: %v", stage, err)
		if c.logger != nil {
			c.logger.LogError(fmt.Sprintf("file %s failed at %s", candidate.SourceFileID, stage), err)
		}
		return result
	}
	skip := func(reason string) model.TransferResult {
		state.advance(stateSkipped)
		result.Status = model.StatusSkipped
		result.Reason = reason
		return result
	}

	// Fetched -> Validated: make sure name, mime type and size are known.
	if candidate.FileName == "" || candidate.MimeType == "" {
		meta, err := c.driveClient.GetMetadata(ctx, candidate.SourceFileID)
		if err != nil {
			return fail("metadata fetch", err)
		}
		candidate = meta
		result.FileName = candidate.FileName
	}
	state.advance(stateValidated)

	if !mimeTypeAllowed(c.opts.Category, candidate.MimeType) {
		return skip("wrong type")
	}

	// Validated -> Matched.
	match, err := c.matcher.Match(candidate.FileName, index)
	if err != nil {
		if errors.Is(err, model.ErrInvalidFilename) || errors.Is(err, model.ErrNoCatalogMatch) {
			state.advance(stateMatched)
			return skip(err.Error())
		}
		return fail("matching", err)
	}
	state.advance(stateMatched)
	result.MatchedVariant = match.Variant

	colorCode := matching.GetColorCode(match.Variant.Sku)
	if tracker.Seen(match.Variant.ProductID, colorCode) {
		return skip(model.ErrAlreadyProcessed.Error())
	}

	// Matched -> Downloading -> Staged -> Committed.
	state.advance(stateDownloading)
	content, err := c.driveClient.Download(ctx, candidate.SourceFileID)
	if err != nil {
		return fail("download", err)
	}
	defer content.Close()

	target, err := c.shopifyClient.CreateStagedUpload(ctx, candidate.FileName, candidate.MimeType, candidate.SizeBytes)
	if err != nil {
		return fail("staged upload create", err)
	}
	if err := c.shopifyClient.UploadStaged(ctx, target, candidate.FileName, candidate.MimeType, content); err != nil {
		return fail("staged upload", err)
	}
	state.advance(stateStaged)

	committed, err := c.shopifyClient.CommitFile(ctx, target, altText(match.Variant))
	if err != nil {
		return fail("commit", err)
	}
	state.advance(stateCommitted)
	result.DestinationAssetID = committed.ID

	// Committed -> MetadataUpdated.
	key, value, valueType, err := c.attachment(ctx, colorCode, committed)
	if err != nil {
		return fail("asset readiness", err)
	}
	namespace := c.namespace()
	if err := c.shopifyClient.SetProductAttribute(ctx, match.Variant.ProductID, namespace, key, value, valueType); err != nil {
		return fail("metadata update", err)
	}
	state.advance(stateMetadataUpdated)

	tracker.Register(match.Variant.ProductID, colorCode)
	c.persistKey(ctx, tracker.key(match.Variant.ProductID, colorCode))

	state.advance(stateDone)
	result.Status = model.StatusSuccess
	return result
}

// attachment resolves the metafield key/value pair for the asset category.
// Images are attached by public URL, which may require waiting out the
// destination's processing state; spec sheets reference the file asset
// directly, so no readiness wait is needed.
func (c *ClientAssets) attachment(ctx context.Context, colorCode string, committed shopify.CommittedFile) (key, value, valueType string, err error) {
	switch c.opts.Category {
	case model.CategorySpec:
		return colorCode, committed.ID, "file_reference", nil
	default:
		url := committed.PublicURL
		if url == "" {
			url, err = c.shopifyClient.PollFileUntilReady(ctx, committed.ID)
			if err != nil {
				return "", "", "", err
			}
		}
		return colorCode, url, "url", nil
	}
}

// namespace is distinct per category so the two attachment kinds never
// collide on the same (product, color) key.
func (c *ClientAssets) namespace() string {
	switch c.opts.Category {
	case model.CategorySpec:
		return c.opts.MetafieldNamespace + "_specs"
	default:
		return c.opts.MetafieldNamespace + "_images"
	}
}

func mimeTypeAllowed(category model.AssetCategory, mimeType string) bool {
	switch category {
	case model.CategorySpec:
		return strings.EqualFold(mimeType, "application/pdf")
	default:
		return strings.HasPrefix(strings.ToLower(mimeType), "image/")
	}
}

func altText(v *model.Variant) string {
	parts := []string{strings.TrimSpace(v.ProductTitle)}
	if color := strings.TrimSpace(v.Color); color != "" {
		parts = append(parts, color)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (c *ClientAssets) persistKey(ctx context.Context, key DedupKey) {
	if c.dedupStore == nil {
		return
	}
	if err := c.dedupStore.Persist(ctx, c.opts.Category, key); err != nil && c.logger != nil {
		c.logger.LogWarning(fmt.Sprintf("dedup store persist failed for %s/%s: %v", key.ProductID, key.ColorCode, err))
	}
}
