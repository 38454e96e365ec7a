// Package report renders business documents to PDF through Gotenberg and
// stores the artifacts for download links.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to a Gotenberg instance over its forms API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient points at a Gotenberg base URL, e.g. http://localhost:3000.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Chromium rendering of a one-page invoice is usually sub-second;
		// 30s covers cold starts.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping hits the health endpoint so startup can fail fast when the renderer
// is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg health: status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts an HTML document to PDF bytes via Chromium.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", &form)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gotenberg convert: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
