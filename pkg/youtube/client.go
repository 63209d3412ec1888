package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/ratelimit"
)

// quotaReasons are 403 reasons that mean "slow down", not "forbidden"
var quotaReasons = map[string]bool{
	"quotaExceeded":         true,
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"dailyLimitExceeded":    true,
}

// Client talks to the YouTube Data API v3
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    ratelimit.Limiter
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a client. httpClient must already carry credentials;
// limiter paces GET requests and may be nil.
func NewClient(httpClient *http.Client, baseURL string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    limiter,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "ytrelink",
		},
		logger: log,
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if req.Method == http.MethodGet && c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "%s %s", req.Method, req.URL.Path)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	return c.doJSON(req, target)
}

// putJSON sends body as JSON and decodes the response into target
func (c *Client) putJSON(ctx context.Context, url string, body, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeParsing, err, "failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, target)
}

func (c *Client) doJSON(req *http.Request, target interface{}) error {
	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          req.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

// checkResponseStatus turns a non-2xx response into a typed error
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr ErrorResponse
	_ = json.Unmarshal(body, &apiErr)
	reason := apiErr.Error.Reason()
	message := apiErr.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	errType := errs.FromStatusCode(resp.StatusCode)
	if resp.StatusCode == http.StatusForbidden && quotaReasons[reason] {
		errType = errs.ErrorTypeRateLimit
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
		"reason": reason,
	}
	switch errType {
	case errs.ErrorTypeRateLimit:
		logger.LogQuota(c.logger, resp.Request.URL.Path, reason)
	case errs.ErrorTypeNotFound, errs.ErrorTypeAuth:
		c.logger.WarnWithFields("API request rejected", fields)
	default:
		c.logger.ErrorWithFields("API request failed", fields)
	}

	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}

	return &errs.Error{
		Type:    errType,
		Message: message,
		Code:    resp.StatusCode,
	}
}

// UploadsPlaylistID returns the uploads playlist of the authenticated channel
func (c *Client) UploadsPlaylistID(ctx context.Context) (string, error) {
	var response ChannelListResponse
	if err := c.getJSON(ctx, ChannelsURL(c.baseURL), &response); err != nil {
		return "", fmt.Errorf("failed to fetch channel: %w", err)
	}

	if len(response.Items) == 0 || response.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", errs.New(errs.ErrorTypeNotFound, http.StatusNotFound, "no channel found for the authenticated account")
	}

	channel := response.Items[0]
	c.logger.DebugWithFields("resolved uploads playlist", map[string]interface{}{
		"channel_id":  channel.ID,
		"playlist_id": channel.ContentDetails.RelatedPlaylists.Uploads,
	})

	return channel.ContentDetails.RelatedPlaylists.Uploads, nil
}

// ListPlaylistItems fetches one page of a playlist
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int) (*PlaylistItemListResponse, error) {
	url := PlaylistItemsURL(c.baseURL, playlistID, pageToken, maxResults)

	c.logger.DebugWithFields("fetching playlist page", map[string]interface{}{
		"playlist_id": playlistID,
		"page_token":  pageToken,
	})

	var response PlaylistItemListResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetVideo fetches one video's snippet
func (c *Client) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	var response VideoListResponse
	if err := c.getJSON(ctx, VideoURL(c.baseURL, videoID), &response); err != nil {
		return nil, err
	}

	if len(response.Items) == 0 {
		return nil, errs.New(errs.ErrorTypeNotFound, http.StatusNotFound, "video %s not found", videoID)
	}

	return &response.Items[0], nil
}

// UpdateVideo replaces a video's snippet
func (c *Client) UpdateVideo(ctx context.Context, videoID string, snippet VideoSnippet) error {
	body := Video{ID: videoID, Snippet: snippet}
	if err := c.putJSON(ctx, VideoUpdateURL(c.baseURL), body, nil); err != nil {
		return err
	}

	c.logger.DebugWithFields("video snippet updated", map[string]interface{}{
		"video_id": videoID,
		"url":      WatchURL(videoID),
	})
	return nil
}
