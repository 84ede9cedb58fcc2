package shopify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopify-asset-sync/internal/adapters/shopify/dto"
)

type stagedUploadsCreateData struct {
	StagedUploadsCreate struct {
		StagedTargets []dto.StagedTarget     `json:"stagedTargets,omitempty"`
		UserErrors    []dto.ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"stagedUploadsCreate"`
}

type fileCreateData struct {
	FileCreate struct {
		Files      []dto.ShopifyFile      `json:"files,omitempty"`
		UserErrors []dto.ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"fileCreate"`
}

type fileNodeData struct {
	Node *dto.ShopifyFile `json:"node,omitempty"`
}

func fileURL(f dto.ShopifyFile) string {
	if f.Image != nil && f.Image.URL != "" {
		return f.Image.URL
	}
	return f.URL
}

// StagedUploadTarget is the temporary upload destination returned by
// stagedUploadsCreate. ResourceURL is what fileCreate commits.
type StagedUploadTarget struct {
	URL         string
	ResourceURL string
	Parameters  []StagedUploadParameter
}

type StagedUploadParameter struct {
	Name  string
	Value string
}

// CommittedFile is the permanent asset created by fileCreate. PublicURL is
// empty while the file is still processing.
type CommittedFile struct {
	ID        string
	Status    string
	PublicURL string
}

const (
	filePollMaxAttempts = 10
	filePollBaseDelay   = time.Second
	filePollMaxDelay    = 15 * time.Second
)

// CreateStagedUpload requests a temporary upload target for one file.
func (c *Client) CreateStagedUpload(ctx context.Context, fileName, mimeType string, sizeBytes int64) (StagedUploadTarget, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return StagedUploadTarget{}, errors.New("shopify staged upload filename is required")
	}

	resource := "FILE"
	if strings.HasPrefix(mimeType, "image/") {
		resource = "IMAGE"
	}

	query := `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
	stagedUploadsCreate(input: $input) {
		stagedTargets {
			url
			resourceUrl
			parameters { name value }
		}
		userErrors { field message }
	}
}`

	var data stagedUploadsCreateData
	err := c.graphqlRequest(ctx, query, map[string]any{
		"input": []map[string]any{{
			"filename":   fileName,
			"mimeType":   mimeType,
			"fileSize":   strconv.FormatInt(sizeBytes, 10),
			"httpMethod": "POST",
			"resource":   resource,
		}},
	}, &data)
	if err != nil {
		return StagedUploadTarget{}, err
	}
	if err := userErrorsToError("stagedUploadsCreate", data.StagedUploadsCreate.UserErrors); err != nil {
		return StagedUploadTarget{}, err
	}
	if len(data.StagedUploadsCreate.StagedTargets) == 0 {
		return StagedUploadTarget{}, errors.New("shopify staged upload returned no targets")
	}

	t := data.StagedUploadsCreate.StagedTargets[0]
	target := StagedUploadTarget{
		URL:         t.URL,
		ResourceURL: t.ResourceURL,
	}
	for _, p := range t.Parameters {
		target.Parameters = append(target.Parameters, StagedUploadParameter{Name: p.Name, Value: p.Value})
	}
	if target.URL == "" || target.ResourceURL == "" {
		return StagedUploadTarget{}, errors.New("shopify staged upload target is incomplete")
	}
	return target, nil
}

// UploadStaged posts the file bytes to the staging target as multipart
// form data. The server-declared parameters go first and the file part
// last; the staging endpoint validates that ordering.
func (c *Client) UploadStaged(ctx context.Context, target StagedUploadTarget, fileName, mimeType string, content io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, p := range target.Parameters {
		if err := writer.WriteField(p.Name, p.Value); err != nil {
			return err
		}
	}

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("shopify staged upload failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// CommitFile turns a staged resource into a permanent file asset.
func (c *Client) CommitFile(ctx context.Context, target StagedUploadTarget, altText string) (CommittedFile, error) {
	if target.ResourceURL == "" {
		return CommittedFile{}, errors.New("shopify staged resource url is required")
	}

	query := `
mutation fileCreate($files: [FileCreateInput!]!) {
	fileCreate(files: $files) {
		files {
			id
			fileStatus
			... on MediaImage { image { url } }
			... on GenericFile { url }
		}
		userErrors { field message }
	}
}`

	input := map[string]any{
		"originalSource": target.ResourceURL,
	}
	if strings.TrimSpace(altText) != "" {
		input["alt"] = altText
	}

	var data fileCreateData
	err := c.graphqlRequest(ctx, query, map[string]any{
		"files": []map[string]any{input},
	}, &data)
	if err != nil {
		return CommittedFile{}, err
	}
	if err := userErrorsToError("fileCreate", data.FileCreate.UserErrors); err != nil {
		return CommittedFile{}, err
	}
	if len(data.FileCreate.Files) == 0 || strings.TrimSpace(data.FileCreate.Files[0].ID) == "" {
		return CommittedFile{}, errors.New("shopify fileCreate returned no files")
	}

	f := data.FileCreate.Files[0]
	return CommittedFile{
		ID:        f.ID,
		Status:    f.FileStatus,
		PublicURL: fileURL(f),
	}, nil
}

// PollFileUntilReady waits for a committed file to leave PROCESSING and
// returns its public URL. Bounded attempts with capped backoff; a FAILED
// status or an exhausted budget is an error.
func (c *Client) PollFileUntilReady(ctx context.Context, fileID string) (string, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return "", errors.New("shopify file id is required")
	}

	query := `
query fileStatus($id: ID!) {
	node(id: $id) {
		... on MediaImage { id fileStatus image { url } }
		... on GenericFile { id fileStatus url }
	}
}`

	for attempt := 0; attempt < filePollMaxAttempts; attempt++ {
		var data fileNodeData
		err := c.graphqlRequest(ctx, query, map[string]any{"id": fileID}, &data)
		if err != nil {
			return "", err
		}
		if data.Node == nil {
			return "", fmt.Errorf("shopify file %s not found", fileID)
		}

		switch strings.ToUpper(data.Node.FileStatus) {
		case "READY":
			return fileURL(*data.Node), nil
		case "FAILED":
			return "", fmt.Errorf("shopify file %s processing failed", fileID)
		}

		delay := filePollBaseDelay << attempt
		if delay > filePollMaxDelay {
			delay = filePollMaxDelay
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("shopify file %s still processing after %d polls", fileID, filePollMaxAttempts)
}
