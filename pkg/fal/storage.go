package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type initiateUploadRequest struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

type initiateUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// Upload stores data on the fal CDN and returns its public URL.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, err := json.Marshal(initiateUploadRequest{ContentType: contentType, FileName: fileName})
	if err != nil {
		return "", fmt.Errorf("fal: marshal upload request: %w", err)
	}

	initiateURL := c.storageURL + "/storage/upload/initiate?storage_type=fal-cdn-v3"
	raw, err := c.doRequest(ctx, http.MethodPost, initiateURL, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("fal: initiate upload: %w", err)
	}

	var initiated initiateUploadResponse
	if err := json.Unmarshal(raw, &initiated); err != nil {
		return "", fmt.Errorf("fal: decode upload response: %w", err)
	}
	if initiated.UploadURL == "" || initiated.FileURL == "" {
		return "", errors.New("fal: upload response is missing upload_url or file_url")
	}

	// upload_url is pre-signed and must not carry the API key
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, initiated.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("fal: create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if _, err := c.do(req); err != nil {
		return "", fmt.Errorf("fal: upload file: %w", err)
	}
	return initiated.FileURL, nil
}
