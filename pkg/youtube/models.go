package youtube

// ChannelListResponse is the channels.list response
type ChannelListResponse struct {
	Items []Channel `json:"items"`
}

// Channel carries the playlists related to a channel
type Channel struct {
	ID             string                `json:"id"`
	ContentDetails ChannelContentDetails `json:"contentDetails"`
}

// ChannelContentDetails wraps the related playlists
type ChannelContentDetails struct {
	RelatedPlaylists RelatedPlaylists `json:"relatedPlaylists"`
}

// RelatedPlaylists names the channel's system playlists
type RelatedPlaylists struct {
	Uploads string `json:"uploads"`
}

// PlaylistItemListResponse is one page of playlistItems.list
type PlaylistItemListResponse struct {
	NextPageToken string         `json:"nextPageToken"`
	PageInfo      PageInfo       `json:"pageInfo"`
	Items         []PlaylistItem `json:"items"`
}

// PageInfo contains pagination totals
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// PlaylistItem is a single playlist entry
type PlaylistItem struct {
	ContentDetails PlaylistItemContentDetails `json:"contentDetails"`
}

// PlaylistItemContentDetails identifies the video behind an entry
type PlaylistItemContentDetails struct {
	VideoID string `json:"videoId"`
}

// VideoListResponse is the videos.list response
type VideoListResponse struct {
	Items []Video `json:"items"`
}

// Video is a video resource with its snippet
type Video struct {
	ID      string       `json:"id"`
	Snippet VideoSnippet `json:"snippet"`
}

// VideoSnippet holds the writable snippet fields. videos.update replaces
// the whole snippet, so every field read must be sent back.
type VideoSnippet struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Tags                 []string `json:"tags,omitempty"`
	CategoryID           string   `json:"categoryId"`
	DefaultLanguage      string   `json:"defaultLanguage,omitempty"`
	DefaultAudioLanguage string   `json:"defaultAudioLanguage,omitempty"`
}

// ErrorResponse is the Google API error envelope
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError describes a failed API call
type APIError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Errors  []ErrorDetail `json:"errors"`
}

// ErrorDetail carries the machine-readable reason
type ErrorDetail struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Reason returns the first detail reason, if any
func (e APIError) Reason() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Reason
}
