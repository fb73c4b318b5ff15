package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

type fileList struct {
	Files []json.RawMessage `json:"files"`
}

// ListFolderJSON returns the first page of files whose parent is folderID.
// nextPageToken is ignored, so folders larger than one page are truncated.
// Elements are not decoded; fields unknown to drive.File survive.
func (c *Client) ListFolderJSON(ctx context.Context, folderID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents", folderID))
	params.Set("alt", "json")
	params.Set("prettyPrint", "false")
	urls := googleapi.ResolveRelative(c.service.BasePath, "files") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urls, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer googleapi.CloseBody(res)

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var list fileList
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	if list.Files == nil {
		return []json.RawMessage{}, nil
	}
	return list.Files, nil
}

// ListFolder is ListFolderJSON decoded into drive.File values.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	raw, err := c.ListFolderJSON(ctx, folderID)
	if err != nil {
		return nil, err
	}

	files := make([]*drive.File, 0, len(raw))
	for _, r := range raw {
		var f drive.File
		if err := json.Unmarshal(r, &f); err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		files = append(files, &f)
	}
	return files, nil
}
