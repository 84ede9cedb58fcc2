package usecases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-asset-sync/internal/adapters/shopify"
	"shopify-asset-sync/internal/domain/model"
	"shopify-asset-sync/internal/matching"
)

type fakeDrive struct {
	files       []model.AssetCandidate
	listErr     error
	metadataErr map[string]error
	downloadErr map[string]error
	downloads   []string
}

func (f *fakeDrive) ListFolder(ctx context.Context, folderID string) ([]model.AssetCandidate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeDrive) GetMetadata(ctx context.Context, fileID string) (model.AssetCandidate, error) {
	if err := f.metadataErr[fileID]; err != nil {
		return model.AssetCandidate{}, err
	}
	for _, c := range f.files {
		if c.SourceFileID == fileID {
			return c, nil
		}
	}
	return model.AssetCandidate{}, fmt.Errorf("file %s not found", fileID)
}

func (f *fakeDrive) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := f.downloadErr[fileID]; err != nil {
		return nil, err
	}
	f.downloads = append(f.downloads, fileID)
	return io.NopCloser(bytes.NewReader([]byte("bytes-" + fileID))), nil
}

func (f *fakeDrive) RefreshAccessToken(ctx context.Context) (string, error) {
	return "fresh", nil
}

type attributeWrite struct {
	productID string
	namespace string
	key       string
	value     string
	valueType string
}

type fakeShopify struct {
	variants   []model.Variant
	pageErr    error
	commitErr  error
	committed  int
	pollURL    string
	writes     []attributeWrite
	writeErr   error
	pollCalls  int
	fileStatus string
}

func (f *fakeShopify) FetchVariantPage(ctx context.Context, productType string, pageSize int, cursor string) ([]model.Variant, string, error) {
	if f.pageErr != nil {
		return nil, "", f.pageErr
	}
	return f.variants, "", nil
}

func (f *fakeShopify) CreateStagedUpload(ctx context.Context, fileName, mimeType string, sizeBytes int64) (shopify.StagedUploadTarget, error) {
	return shopify.StagedUploadTarget{
		URL:         "https://bucket.example/upload",
		ResourceURL: "https://bucket.example/resource/" + fileName,
	}, nil
}

func (f *fakeShopify) UploadStaged(ctx context.Context, target shopify.StagedUploadTarget, fileName, mimeType string, content io.Reader) error {
	_, err := io.Copy(io.Discard, content)
	return err
}

func (f *fakeShopify) CommitFile(ctx context.Context, target shopify.StagedUploadTarget, altText string) (shopify.CommittedFile, error) {
	if f.commitErr != nil {
		return shopify.CommittedFile{}, f.commitErr
	}
	f.committed++
	status := f.fileStatus
	if status == "" {
		status = "READY"
	}
	url := ""
	if status == "READY" {
		url = f.pollURL
	}
	return shopify.CommittedFile{
		ID:        fmt.Sprintf("gid://shopify/File/%d", f.committed),
		Status:    status,
		PublicURL: url,
	}, nil
}

func (f *fakeShopify) PollFileUntilReady(ctx context.Context, fileID string) (string, error) {
	f.pollCalls++
	return f.pollURL, nil
}

func (f *fakeShopify) SetProductAttribute(ctx context.Context, productID, namespace, key, value, valueType string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, attributeWrite{productID, namespace, key, value, valueType})
	return nil
}

func catalogVariant(sku, productID string) model.Variant {
	return model.Variant{
		ID:           "gid://shopify/ProductVariant/" + sku,
		Sku:          sku,
		Color:        "Dusty Rose",
		ProductID:    productID,
		ProductTitle: "Scallops Wallpaper",
	}
}

func newService(driveClient *fakeDrive, shopifyClient *fakeShopify, store DedupStore, opts SyncOptions) SyncAssetsService {
	if opts.FolderID == "" && len(opts.FileIDs) == 0 {
		opts.FolderID = "folder-1"
	}
	if opts.MetafieldNamespace == "" {
		opts.MetafieldNamespace = "custom"
	}
	return NewSyncAssets(driveClient, shopifyClient, matching.NewMatcher(matching.MatcherConfig{}), store, nil, opts)
}

func TestRunSpecSheetEndToEnd(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_spec.pdf", MimeType: "application/pdf", SizeBytes: 2048},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategorySpec})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, shopifyClient.writes, 1)

	write := shopifyClient.writes[0]
	assert.Equal(t, "P1", write.productID)
	assert.Equal(t, "custom_specs", write.namespace)
	assert.Equal(t, "DUS", write.key)
	assert.Equal(t, "gid://shopify/File/1", write.value)
	assert.Equal(t, "file_reference", write.valueType)
	assert.NotEmpty(t, summary.RunID)
}

func TestRunImageUsesPublicURL(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png", SizeBytes: 1024},
	}}
	shopifyClient := &fakeShopify{
		variants:   []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		fileStatus: "PROCESSING",
		pollURL:    "https://cdn.example/final.png",
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, shopifyClient.pollCalls)
	require.Len(t, shopifyClient.writes, 1)
	assert.Equal(t, "custom_images", shopifyClient.writes[0].namespace)
	assert.Equal(t, "https://cdn.example/final.png", shopifyClient.writes[0].value)
	assert.Equal(t, "url", shopifyClient.writes[0].valueType)
}

func TestRunDedupWithinRun(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
		{SourceFileID: "f2", FileName: "WP-SCAL-DUS_2.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// One metadata update, one already-satisfied skip.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, shopifyClient.writes, 1)
	assert.Equal(t, model.ErrAlreadyProcessed.Error(), summary.Results[1].Reason)
}

func TestRunImageAndSpecNamespacesAreIndependent(t *testing.T) {
	variants := []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")}

	specDrive := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_spec.pdf", MimeType: "application/pdf"},
	}}
	specShopify := &fakeShopify{variants: variants}
	specSvc := newService(specDrive, specShopify, nil, SyncOptions{Category: model.CategorySpec})
	specSummary, err := specSvc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, specSummary.Succeeded)

	// The same (product, color) pair accepts an image in its own run;
	// the spec-sheet attachment does not satisfy the image category.
	imageDrive := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f2", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
	}}
	imageShopify := &fakeShopify{variants: variants, pollURL: "https://cdn.example/final.png"}
	imageSvc := newService(imageDrive, imageShopify, nil, SyncOptions{Category: model.CategoryImage})
	imageSummary, err := imageSvc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, imageSummary.Succeeded)
}

func TestRunSkipsInvalidFilename(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCALLOPS-DUSTY_ROSE-2748-1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")}}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, model.StatusSkipped, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Reason, "invalid filename")
	assert.Empty(t, driveClient.downloads, "invalid files must not be downloaded")
}

func TestRunSkipsWrongMimeType(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_spec.pdf", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")}}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategorySpec})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "wrong type", summary.Results[0].Reason)
}

func TestRunContinuesPastPerFileErrors(t *testing.T) {
	driveClient := &fakeDrive{
		files: []model.AssetCandidate{
			{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
			{SourceFileID: "f2", FileName: "WP-VINES-MOS_1.png", MimeType: "image/png"},
		},
		downloadErr: map[string]error{"f1": errors.New("connection reset")},
	}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{
			catalogVariant("WP-SCAL-DUS-2424", "P1"),
			catalogVariant("WP-VINES-MOS-2424", "P2"),
		},
		pollURL: "https://cdn.example/final.png",
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, model.StatusError, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Reason, "download")
}

func TestRunCommitFailureSkipsMetadataUpdate(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants:  []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		commitErr: errors.New("fileCreate rejected"),
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, shopifyClient.writes, "no metadata update after failed commit")
}

func TestRunMetadataFailureDoesNotRegisterDedup(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
		{SourceFileID: "f2", FileName: "WP-SCAL-DUS_2.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}
	shopifyClient.writeErr = errors.New("metafieldsSet rejected")

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// Both files errored; neither was skipped as already satisfied.
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestRunCatalogFetchFailureIsFatal(t *testing.T) {
	driveClient := &fakeDrive{}
	shopifyClient := &fakeShopify{pageErr: errors.New("boom")}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, model.ErrCatalogFetch)
}

func TestRunFolderLookupFailureIsFatal(t *testing.T) {
	driveClient := &fakeDrive{listErr: fmt.Errorf("%w: folder gone", model.ErrFolderLookup)}
	shopifyClient := &fakeShopify{variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")}}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, model.ErrFolderLookup)
}

func TestRunExplicitFileIDsFetchMetadataPerFile(t *testing.T) {
	driveClient := &fakeDrive{
		files: []model.AssetCandidate{
			{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
		},
		metadataErr: map[string]error{"f9": errors.New("not found")},
	}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{
		Category: model.CategoryImage,
		FileIDs:  []string{"f1", "f9"},
	})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The bad id costs one per-file error, not the run.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunCancellationStopsBetweenFiles(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
		{SourceFileID: "f2", FileName: "WP-VINES-MOS_1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{
			catalogVariant("WP-SCAL-DUS-2424", "P1"),
			catalogVariant("WP-VINES-MOS-2424", "P2"),
		},
		pollURL: "https://cdn.example/final.png",
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newService(driveClient, shopifyClient, nil, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
}

type fakeDedupStore struct {
	seeded    []DedupKey
	seedErr   error
	persisted []DedupKey
}

func (f *fakeDedupStore) Seed(ctx context.Context, category model.AssetCategory) ([]DedupKey, error) {
	if f.seedErr != nil {
		return nil, f.seedErr
	}
	return f.seeded, nil
}

func (f *fakeDedupStore) Persist(ctx context.Context, category model.AssetCategory, key DedupKey) error {
	f.persisted = append(f.persisted, key)
	return nil
}

func TestRunSeedsDedupFromStore(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}
	store := &fakeDedupStore{seeded: []DedupKey{{ProductID: "P1", ColorCode: "DUS"}}}

	svc := newService(driveClient, shopifyClient, store, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, shopifyClient.writes)
}

func TestRunPersistsDedupKeys(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}
	store := &fakeDedupStore{}

	svc := newService(driveClient, shopifyClient, store, SyncOptions{Category: model.CategoryImage})
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.persisted, 1)
	assert.Equal(t, DedupKey{ProductID: "P1", ColorCode: "DUS"}, store.persisted[0])
}

func TestRunSeedFailureDegradesToWarning(t *testing.T) {
	driveClient := &fakeDrive{files: []model.AssetCandidate{
		{SourceFileID: "f1", FileName: "WP-SCAL-DUS_1.png", MimeType: "image/png"},
	}}
	shopifyClient := &fakeShopify{
		variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")},
		pollURL:  "https://cdn.example/final.png",
	}
	store := &fakeDedupStore{seedErr: errors.New("mysql down")}

	svc := newService(driveClient, shopifyClient, store, SyncOptions{Category: model.CategoryImage})
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
}

func TestMimeTypeAllowed(t *testing.T) {
	assert.True(t, mimeTypeAllowed(model.CategoryImage, "image/png"))
	assert.True(t, mimeTypeAllowed(model.CategoryImage, "IMAGE/JPEG"))
	assert.False(t, mimeTypeAllowed(model.CategoryImage, "application/pdf"))
	assert.True(t, mimeTypeAllowed(model.CategorySpec, "application/pdf"))
	assert.False(t, mimeTypeAllowed(model.CategorySpec, "image/png"))
}

func TestAltText(t *testing.T) {
	v := &model.Variant{ProductTitle: "Scallops Wallpaper", Color: "Dusty Rose"}
	assert.Equal(t, "Scallops Wallpaper Dusty Rose", altText(v))

	noColor := &model.Variant{ProductTitle: "Scallops Wallpaper"}
	assert.Equal(t, "Scallops Wallpaper", altText(noColor))
}

func TestSplitTrimsAndDropsEmptyIDs(t *testing.T) {
	svc := newService(&fakeDrive{}, &fakeShopify{variants: []model.Variant{catalogVariant("WP-SCAL-DUS-2424", "P1")}}, nil, SyncOptions{
		Category: model.CategoryImage,
		FileIDs:  []string{" f1 ", "", "f2"},
	}).(*ClientAssets)

	candidates, err := svc.enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "f1", candidates[0].SourceFileID)
	assert.Equal(t, "f2", candidates[1].SourceFileID)
}
