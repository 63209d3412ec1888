package youtube

import (
	"context"
	"fmt"

	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/models"
)

// ResolvePlaylist returns playlistID when set, otherwise the channel's
// uploads playlist
func (c *Client) ResolvePlaylist(ctx context.Context, playlistID string) (string, error) {
	if playlistID != "" {
		return playlistID, nil
	}
	return c.UploadsPlaylistID(ctx)
}

// ListPage returns the video ids of one playlist page
func (c *Client) ListPage(ctx context.Context, collectionID, pageToken string, pageSize int) (models.Page, error) {
	response, err := c.ListPlaylistItems(ctx, collectionID, pageToken, pageSize)
	if err != nil {
		return models.Page{}, err
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.ContentDetails.VideoID != "" {
			ids = append(ids, item.ContentDetails.VideoID)
		}
	}

	return models.Page{
		Token:     pageToken,
		IDs:       ids,
		NextToken: response.NextPageToken,
	}, nil
}

// GetItem fetches a video as a rewritable item whose text is the description
func (c *Client) GetItem(ctx context.Context, id string) (models.Item, error) {
	video, err := c.GetVideo(ctx, id)
	if err != nil {
		return models.Item{}, err
	}

	return models.Item{
		ID:       video.ID,
		Text:     video.Snippet.Description,
		Snapshot: video.Snippet,
	}, nil
}

// UpdateItem writes item.Text back as the video description, keeping the
// rest of the snippet as it was read
func (c *Client) UpdateItem(ctx context.Context, item models.Item) error {
	snippet, ok := item.Snapshot.(VideoSnippet)
	if !ok {
		return errs.New(errs.ErrorTypeUnknown, 0, "item %s carries no video snippet (%T)", item.ID, item.Snapshot)
	}

	snippet.Description = item.Text
	if err := c.UpdateVideo(ctx, item.ID, snippet); err != nil {
		return fmt.Errorf("failed to update video %s: %w", item.ID, err)
	}
	return nil
}
