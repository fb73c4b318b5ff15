package drive

import (
	"context"
	"fmt"
)

// Download opens the media content of fileID (files.get with alt=media).
// Non-2xx responses are returned as errors before any body is handed out.
func (c *Client) Download(ctx context.Context, fileID string) (*Download, error) {
	response, err := c.service.Files.Get(fileID).
		Context(ctx).
		Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return &Download{
		Body:          response.Body,
		ContentType:   response.Header.Get("Content-Type"),
		ContentLength: response.ContentLength,
	}, nil
}
