package youtube

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the YouTube Data API v3 root
	BaseURL = "https://www.googleapis.com/youtube/v3"

	// ChannelsEndpoint lists channel resources
	ChannelsEndpoint = "/channels"

	// PlaylistItemsEndpoint lists the entries of a playlist
	PlaylistItemsEndpoint = "/playlistItems"

	// VideosEndpoint reads and updates video resources
	VideosEndpoint = "/videos"

	// MaxResults is the largest page the API will return
	MaxResults = 50

	// Scope grants read and write access to the channel's videos
	Scope = "https://www.googleapis.com/auth/youtube.force-ssl"
)

// ChannelsURL builds the URL for the authenticated user's channel
func ChannelsURL(base string) string {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("mine", "true")

	return fmt.Sprintf("%s%s?%s", trimBase(base), ChannelsEndpoint, params.Encode())
}

// PlaylistItemsURL builds the URL for one page of a playlist
func PlaylistItemsURL(base, playlistID, pageToken string, maxResults int) string {
	if maxResults <= 0 || maxResults > MaxResults {
		maxResults = MaxResults
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	return fmt.Sprintf("%s%s?%s", trimBase(base), PlaylistItemsEndpoint, params.Encode())
}

// VideoURL builds the URL that reads one video's snippet
func VideoURL(base, videoID string) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)

	return fmt.Sprintf("%s%s?%s", trimBase(base), VideosEndpoint, params.Encode())
}

// VideoUpdateURL builds the URL that replaces a video's snippet
func VideoUpdateURL(base string) string {
	return fmt.Sprintf("%s%s?part=snippet", trimBase(base), VideosEndpoint)
}

// WatchURL returns the public watch page for a video
func WatchURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

func trimBase(base string) string {
	if base == "" {
		base = BaseURL
	}
	return strings.TrimRight(base, "/")
}
