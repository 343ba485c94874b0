package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedSource is the degraded ManifestSource. It only yields title,
// author, and thumbnail from the public oEmbed endpoint and synthesizes
// a fixed set of plausible encodings, so the UI never sees zero
// formats. Sizes and bitrates from this path are guesses and the asset
// reference aliases the watch page.
type OEmbedSource struct {
	httpClient *http.Client
	endpoint   string
}

func NewOEmbedSource(timeout time.Duration) *OEmbedSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &OEmbedSource{
		httpClient: newUpstreamHTTPClient(timeout),
		endpoint:   oembedEndpoint,
	}
}

func (s *OEmbedSource) Name() string { return "oembed" }

func (s *OEmbedSource) Fetch(ctx context.Context, id VideoID) (*Manifest, error) {
	query := url.Values{}
	query.Set("url", WatchURL(id))
	query.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, wrapCategory(CategoryFetchFailed, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, categorizeUpstream(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, wrapCategory(CategoryNotFound, fmt.Errorf("oembed status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, wrapCategory(CategoryFetchFailed, fmt.Errorf("oembed status %d", resp.StatusCode))
	}
	var payload oEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, wrapCategory(CategoryFetchFailed, fmt.Errorf("decoding oembed response: %w", err))
	}

	title := payload.Title
	if title == "" {
		title = "Unknown Title"
	}
	author := payload.AuthorName
	if author == "" {
		author = "Unknown"
	}
	return &Manifest{
		ID:        id,
		Title:     title,
		Author:    author,
		Thumbnail: payload.ThumbnailURL,
		Degraded:  true,
		Encodings: syntheticEncodings(),
	}, nil
}

// syntheticEncodings mirrors the ladder most videos actually publish.
// Itags follow the conventional assignments for these variants.
func syntheticEncodings() []Encoding {
	ladder := []struct {
		label   string
		itag    int
		height  int
		bitrate int
		audio   int
	}{
		{"1080p", 22, 1080, 2000000, 192},
		{"720p", 18, 720, 1500000, 192},
		{"480p", 135, 480, 1000000, 128},
		{"360p", 134, 360, 700000, 128},
		{"240p", 133, 240, 400000, 64},
	}
	encodings := make([]Encoding, 0, len(ladder)+1)
	for _, step := range ladder {
		encodings = append(encodings, Encoding{
			Itag:         step.itag,
			Container:    "mp4",
			HasVideo:     true,
			HasAudio:     true,
			Height:       step.height,
			FPS:          30,
			QualityLabel: step.label,
			VideoBitrate: step.bitrate,
			AudioBitrate: step.audio,
			Synthetic:    true,
		})
	}
	encodings = append(encodings, Encoding{
		Itag:         140,
		Container:    "mp4",
		HasAudio:     true,
		AudioBitrate: 128,
		Synthetic:    true,
	})
	return encodings
}
