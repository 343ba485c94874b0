package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/fetchtube/fetchtube/internal/metrics"
)

// DefaultFetchTimeout bounds one manifest fetch against the upstream
// host. The download path reuses the same bound.
const DefaultFetchTimeout = 20 * time.Second

var errFetchTimeout = errors.New("manifest fetch timeout")

// Encoding is one concrete retrievable asset variant as reported by the
// upstream manifest.
type Encoding struct {
	Itag          int
	Container     string
	Codecs        string
	HasVideo      bool
	HasAudio      bool
	Height        int
	FPS           int
	QualityLabel  string
	VideoBitrate  int   // bps, 0 when unknown
	AudioBitrate  int   // kbps, 0 when unknown
	ContentLength int64 // bytes, 0 when unknown
	Synthetic     bool  // built by the degraded path; sizes and bitrates are guesses
}

// Usable reports whether the encoding carries at least one media track.
// Track-less encodings are invalid and must be discarded.
func (e Encoding) Usable() bool {
	return e.HasVideo || e.HasAudio
}

// Manifest is the set of encodings plus descriptive metadata for one
// video at the time of fetch. Fetched per request, never cached: the
// upstream is authoritative and may change between calls.
type Manifest struct {
	ID        VideoID
	Title     string
	Author    string
	Thumbnail string
	Duration  time.Duration // 0 = unknown
	Views     int64         // 0 = unknown
	Degraded  bool          // built from the degraded fallback path
	Encodings []Encoding

	video *youtube.Video // retained for stream opening; nil on the degraded path
}

// ManifestSource retrieves the upstream manifest for one identifier.
// Two implementations exist: the primary extraction client and the
// degraded oEmbed fallback.
type ManifestSource interface {
	Name() string
	Fetch(ctx context.Context, id VideoID) (*Manifest, error)
}

// StreamSource opens the byte stream for one encoding of a previously
// fetched manifest.
type StreamSource interface {
	OpenStream(ctx context.Context, m *Manifest, enc Encoding) (io.ReadCloser, int64, error)
}

// ExtractorSource is the primary ManifestSource backed by the YouTube
// extraction client. It also opens streams for the relay.
type ExtractorSource struct {
	client  *youtube.Client
	timeout time.Duration
}

// NewExtractorSource builds the primary source. The client carries a
// browser-identity transport with bounded retries.
func NewExtractorSource(timeout time.Duration) *ExtractorSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	youtube.DefaultClient = youtube.AndroidClient
	return &ExtractorSource{
		client: &youtube.Client{
			HTTPClient: newUpstreamHTTPClient(timeout),
		},
		timeout: timeout,
	}
}

func (s *ExtractorSource) Name() string { return "extractor" }

// Fetch races the extraction call against the configured timeout. A
// fired timer is a fetch failure, never "video has no formats".
func (s *ExtractorSource) Fetch(ctx context.Context, id VideoID) (*Manifest, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, s.timeout, errFetchTimeout)
	defer cancel()

	video, err := s.client.GetVideoContext(ctx, WatchURL(id))
	if err != nil {
		if ctx.Err() != nil && errors.Is(context.Cause(ctx), errFetchTimeout) {
			return nil, wrapCategory(CategoryTimeout, errFetchTimeout)
		}
		return nil, categorizeUpstream(err)
	}

	manifest := &Manifest{
		ID:       id,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Views:    int64(video.Views),
		video:    video,
	}
	if n := len(video.Thumbnails); n > 0 {
		// Thumbnails are ordered smallest first; keep the largest.
		manifest.Thumbnail = video.Thumbnails[n-1].URL
	}
	for _, f := range video.Formats {
		enc := encodingFromFormat(f)
		if !enc.Usable() {
			continue
		}
		manifest.Encodings = append(manifest.Encodings, enc)
	}
	return manifest, nil
}

// OpenStream opens the upstream byte stream for enc. The encoding must
// originate from a manifest this source fetched.
func (s *ExtractorSource) OpenStream(ctx context.Context, m *Manifest, enc Encoding) (io.ReadCloser, int64, error) {
	if m.video == nil {
		return nil, 0, wrapCategory(CategoryUpstreamUnavailable,
			errors.New("degraded manifest has no retrievable streams"))
	}
	for i := range m.video.Formats {
		format := &m.video.Formats[i]
		if format.ItagNo == enc.Itag {
			stream, size, err := s.client.GetStreamContext(ctx, m.video, format)
			if err != nil {
				return nil, 0, categorizeUpstream(err)
			}
			return stream, size, nil
		}
	}
	return nil, 0, wrapCategory(CategoryNoUsableFormat,
		fmt.Errorf("itag %d not present in manifest", enc.Itag))
}

func encodingFromFormat(f youtube.Format) Encoding {
	hasVideo := f.Width > 0 || f.Height > 0
	hasAudio := f.AudioChannels > 0
	enc := Encoding{
		Itag:          f.ItagNo,
		Container:     containerFromMime(f.MimeType),
		Codecs:        codecsFromMime(f.MimeType),
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		Height:        f.Height,
		FPS:           f.FPS,
		QualityLabel:  f.QualityLabel,
		ContentLength: f.ContentLength,
	}
	if hasVideo {
		enc.VideoBitrate = f.Bitrate
	}
	if hasAudio {
		enc.AudioBitrate = audioKbps(f, hasVideo)
	}
	return enc
}

// audioKbps approximates the audio bitrate in kbps. Audio-only formats
// report a usable overall bitrate; combined formats only expose a
// coarse quality tier.
func audioKbps(f youtube.Format, hasVideo bool) int {
	if !hasVideo {
		if f.AverageBitrate > 0 {
			return f.AverageBitrate / 1000
		}
		if f.Bitrate > 0 {
			return f.Bitrate / 1000
		}
		return 128
	}
	switch f.AudioQuality {
	case "AUDIO_QUALITY_HIGH":
		return 256
	case "AUDIO_QUALITY_MEDIUM":
		return 192
	default:
		return 128
	}
}

func containerFromMime(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	parts := strings.Split(mimeType, "/")
	if len(parts) == 2 && parts[1] != "" {
		switch parts[1] {
		case "3gpp":
			return "3gp"
		default:
			return parts[1]
		}
	}
	return "mp4"
}

func codecsFromMime(mimeType string) string {
	const marker = `codecs="`
	i := strings.Index(mimeType, marker)
	if i < 0 {
		return ""
	}
	rest := mimeType[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return ""
}

// Fetcher resolves manifests through the primary source with a degraded
// fallback, per-call availability probing instead of exception-driven
// branching.
type Fetcher struct {
	primary  ManifestSource
	fallback ManifestSource
}

func NewFetcher(primary, fallback ManifestSource) *Fetcher {
	return &Fetcher{primary: primary, fallback: fallback}
}

// Fetch tries the primary source and degrades to the fallback when the
// primary is missing or fails. The primary failure wins for reporting
// when both paths fail.
func (f *Fetcher) Fetch(ctx context.Context, id VideoID) (*Manifest, error) {
	var primaryErr error
	if f.primary != nil {
		manifest, err := f.primary.Fetch(ctx, id)
		if err == nil {
			metrics.ManifestFetches.WithLabelValues(f.primary.Name(), "success").Inc()
			return manifest, nil
		}
		metrics.ManifestFetches.WithLabelValues(f.primary.Name(), "failure").Inc()
		primaryErr = err
	}
	if f.fallback != nil {
		manifest, err := f.fallback.Fetch(ctx, id)
		if err == nil {
			metrics.ManifestFetches.WithLabelValues(f.fallback.Name(), "success").Inc()
			return manifest, nil
		}
		metrics.ManifestFetches.WithLabelValues(f.fallback.Name(), "failure").Inc()
		if primaryErr == nil {
			primaryErr = err
		}
	}
	if primaryErr == nil {
		primaryErr = wrapCategory(CategoryUpstreamUnavailable, errors.New("no manifest source configured"))
	}
	return nil, primaryErr
}

// FetchPrimary resolves a manifest through the primary source only. The
// download path uses this: the degraded fallback synthesizes asset
// references that alias the watch page and cannot be streamed.
func (f *Fetcher) FetchPrimary(ctx context.Context, id VideoID) (*Manifest, error) {
	if f.primary == nil {
		return nil, wrapCategory(CategoryUpstreamUnavailable,
			errors.New("extraction client unavailable"))
	}
	return f.primary.Fetch(ctx, id)
}
