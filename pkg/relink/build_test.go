package relink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytrelink/pkg/config"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/youtube"
)

// fakeYouTube is a two-page uploads playlist over HTTP
type fakeYouTube struct {
	mu      sync.Mutex
	videos  map[string]youtube.VideoSnippet
	updates map[string]string
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == youtube.ChannelsEndpoint:
		json.NewEncoder(w).Encode(youtube.ChannelListResponse{Items: []youtube.Channel{{
			ID:             "UC1",
			ContentDetails: youtube.ChannelContentDetails{RelatedPlaylists: youtube.RelatedPlaylists{Uploads: "UU1"}},
		}}})

	case r.URL.Path == youtube.PlaylistItemsEndpoint:
		resp := youtube.PlaylistItemListResponse{}
		if r.URL.Query().Get("pageToken") == "" {
			resp.NextPageToken = "CAEQAA"
			resp.Items = []youtube.PlaylistItem{{ContentDetails: youtube.PlaylistItemContentDetails{VideoID: "v1"}}}
		} else {
			resp.Items = []youtube.PlaylistItem{{ContentDetails: youtube.PlaylistItemContentDetails{VideoID: "v2"}}}
		}
		json.NewEncoder(w).Encode(resp)

	case r.URL.Path == youtube.VideosEndpoint && r.Method == http.MethodGet:
		id := r.URL.Query().Get("id")
		resp := youtube.VideoListResponse{}
		if snippet, ok := f.videos[id]; ok {
			resp.Items = []youtube.Video{{ID: id, Snippet: snippet}}
		}
		json.NewEncoder(w).Encode(resp)

	case r.URL.Path == youtube.VideosEndpoint && r.Method == http.MethodPut:
		var video youtube.Video
		json.NewDecoder(r.Body).Decode(&video)
		f.updates[video.ID] = video.Snippet.Description
		f.videos[video.ID] = video.Snippet
		json.NewEncoder(w).Encode(video)

	default:
		http.NotFound(w, r)
	}
}

func TestNewFromConfigEndToEnd(t *testing.T) {
	api := &fakeYouTube{
		videos: map[string]youtube.VideoSnippet{
			"v1": {Title: "One", Description: "Discord: " + oldInvite, CategoryID: "20"},
			"v2": {Title: "Two", Description: "no links", CategoryID: "20"},
		},
		updates: map[string]string{},
	}
	server := httptest.NewServer(api)
	defer server.Close()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.YouTube.APIBaseURL = server.URL
	cfg.Run.WriteDelay = 0
	cfg.RateLimit.ReadsPerMinute = 0
	cfg.State.CheckpointFile = filepath.Join(dir, "state.json")
	cfg.State.BackupFile = filepath.Join(dir, "backup.csv")

	runner, err := NewFromConfig(cfg, server.Client(), logger.NewNopLogger())
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "UU1", summary.CollectionID)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.BackedUp)
	assert.True(t, summary.Drained)
	assert.Equal(t, cfg.State.BackupFile, summary.BackupPath)
	assert.Equal(t, map[string]string{"v1": "Discord: " + newInvite}, api.updates)
	assert.Equal(t, "One", api.videos["v1"].Title)
}

func TestNewFromConfigRejectsBadRewrite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rewrite.Targets = []string{"discord.gg"}

	_, err := NewFromConfig(cfg, http.DefaultClient, logger.NewNopLogger())
	require.Error(t, err)
}
