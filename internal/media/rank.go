package media

import (
	"fmt"
	"sort"
)

// MaxQualityChoices caps the user-presentable list.
const MaxQualityChoices = 8

// ChoiceType tags how a QualityChoice will be delivered.
type ChoiceType string

const (
	ChoiceCombined   ChoiceType = "combined"
	ChoiceVideoOnly  ChoiceType = "video-only"
	ChoiceAudioOnly  ChoiceType = "audio-only"
	ChoiceAutoMerged ChoiceType = "auto-merged"
)

// QualityChoice is the deduplicated, user-facing projection of one or
// more encodings sharing a display label. Built fresh per metadata
// request, never persisted.
type QualityChoice struct {
	Quality      string     `json:"quality"`
	Format       string     `json:"format"`
	Size         string     `json:"size"`
	Itag         int        `json:"itag"`
	AudioBitrate int        `json:"audioBitrate"`
	VideoBitrate int        `json:"videoBitrate"`
	Height       int        `json:"height"`
	FPS          int        `json:"fps"`
	Codec        string     `json:"codec,omitempty"`
	Type         ChoiceType `json:"type"`
	HasAudio     bool       `json:"hasAudio"`
}

// qualityScores ranks the known display labels on a fixed descending
// scale; unknown labels fall back to height/100.
var qualityScores = map[string]float64{
	"2160p":   10,
	"1440p":   9,
	"1080p60": 8.5,
	"1080p":   8,
	"720p60":  7.5,
	"720p":    7,
	"480p":    6,
	"360p":    5,
	"240p":    4,
	"144p":    3,
	"highest": 15,
	"medium":  6,
	"lowest":  1,
}

func qualityScore(label string, height int) float64 {
	if score, ok := qualityScores[label]; ok {
		return score
	}
	return float64(height) / 100
}

var containerRanks = map[string]int{
	"mp4":  3,
	"webm": 2,
	"flv":  1,
}

// Rank normalizes the manifest's encodings into a short, deduplicated,
// user-presentable list of quality choices. Video entries are promised
// to carry audio: delivery always prefers a combined stream, so the
// flag is asserted unconditionally.
func Rank(m *Manifest) []QualityChoice {
	type candidate struct {
		choice QualityChoice
		score  float64
	}
	var candidates []candidate

	add := func(enc Encoding, choiceType ChoiceType) {
		label := enc.QualityLabel
		if label == "" {
			if enc.Height == 0 {
				label = "Unknown"
			} else {
				label = fmt.Sprintf("%dp", enc.Height)
			}
		}
		candidates = append(candidates, candidate{
			choice: QualityChoice{
				Quality:      label,
				Format:       containerOrDefault(enc.Container, "mp4"),
				Size:         humanSize(enc.ContentLength),
				Itag:         enc.Itag,
				AudioBitrate: enc.AudioBitrate,
				VideoBitrate: enc.VideoBitrate,
				Height:       enc.Height,
				FPS:          enc.FPS,
				Codec:        enc.Codecs,
				Type:         choiceType,
			},
			score: qualityScore(label, enc.Height),
		})
	}

	// Combined first so equal-score ties resolve in their favor.
	for _, enc := range m.Encodings {
		if enc.HasVideo && enc.HasAudio && enc.Height >= 144 {
			add(enc, ChoiceCombined)
		}
	}
	for _, enc := range m.Encodings {
		if enc.HasVideo && !enc.HasAudio && enc.Height >= 144 {
			add(enc, ChoiceVideoOnly)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.choice.Type != b.choice.Type {
			return a.choice.Type == ChoiceCombined
		}
		return containerRanks[a.choice.Format] > containerRanks[b.choice.Format]
	})

	choices := make([]QualityChoice, 0, MaxQualityChoices)
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if _, dup := seen[c.choice.Quality]; dup {
			continue
		}
		seen[c.choice.Quality] = struct{}{}
		// Delivery pairs every video choice with audio, so the UI
		// contract is asserted here regardless of the source type.
		c.choice.Type = ChoiceAutoMerged
		c.choice.HasAudio = true
		choices = append(choices, c.choice)
	}

	if audio, ok := bestAudioOnly(m.Encodings); ok {
		bitrate := audio.AudioBitrate
		if bitrate == 0 {
			bitrate = 128
		}
		choices = append(choices, QualityChoice{
			Quality:      "Audio Only",
			Format:       containerOrDefault(audio.Container, "mp3"),
			Size:         humanSize(audio.ContentLength),
			Itag:         audio.Itag,
			AudioBitrate: bitrate,
			Codec:        audio.Codecs,
			Type:         ChoiceAudioOnly,
			HasAudio:     true,
		})
	}

	if len(choices) > MaxQualityChoices {
		choices = choices[:MaxQualityChoices]
	}
	return choices
}

// bestAudioOnly returns the audio-only encoding with the highest audio
// bitrate; first seen wins bitrate ties.
func bestAudioOnly(encodings []Encoding) (Encoding, bool) {
	var best Encoding
	found := false
	for _, enc := range encodings {
		if enc.HasVideo || !enc.HasAudio {
			continue
		}
		if !found || enc.AudioBitrate > best.AudioBitrate {
			best = enc
			found = true
		}
	}
	return best, found
}

func containerOrDefault(container, fallback string) string {
	if container == "" {
		return fallback
	}
	return container
}

func humanSize(bytes int64) string {
	if bytes <= 0 {
		return "Size unknown"
	}
	return fmt.Sprintf("%d MB", (bytes+512*1024)/(1024*1024))
}
