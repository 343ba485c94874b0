package media

import (
	"errors"
	"sort"
)

// SelectEncoding picks the concrete encoding to deliver for a parsed
// quality request. Video requests resolve to combined encodings only;
// video-only encodings surface solely through the relay's fallback
// chain. Selection is deterministic: ties resolve to the first-seen
// encoding in manifest order.
func SelectEncoding(m *Manifest, request ParsedQualityRequest) (Encoding, error) {
	if request.Kind == QualityAudioOnly {
		if audio, ok := bestAudioOnly(m.Encodings); ok {
			return audio, nil
		}
		return Encoding{}, wrapCategory(CategoryNoUsableFormat, errors.New("no audio-only encodings in manifest"))
	}

	combined := combinedEncodings(m.Encodings)
	if len(combined) > 0 {
		return pickByPolicy(combined, request.Policy), nil
	}

	// No combined encoding at all: degrade through video-only choices,
	// best first.
	videoOnly := videoOnlyEncodings(m.Encodings)
	if len(videoOnly) == 0 {
		return Encoding{}, wrapCategory(CategoryNoUsableFormat, errors.New("no video encodings in manifest"))
	}
	for _, policy := range []RetrievalPolicy{PolicyHighest, PolicyMedium, PolicyLowest} {
		if enc := pickByPolicy(videoOnly, policy); enc.Usable() {
			return enc, nil
		}
	}
	return Encoding{}, wrapCategory(CategoryNoUsableFormat, errors.New("no video encodings in manifest"))
}

// FallbackEncodings returns the bounded relay fallback chain for a
// failed primary choice: highest combined, then highest video-only,
// then medium and lowest combined. The primary itself and duplicates
// are excluded; at most three entries come back, keeping the whole
// relay within four attempts.
func FallbackEncodings(m *Manifest, primary Encoding) []Encoding {
	combined := combinedEncodings(m.Encodings)
	videoOnly := videoOnlyEncodings(m.Encodings)

	var chain []Encoding
	appendUnique := func(enc Encoding) {
		if !enc.Usable() || enc.Itag == primary.Itag {
			return
		}
		for _, seen := range chain {
			if seen.Itag == enc.Itag {
				return
			}
		}
		chain = append(chain, enc)
	}

	if len(combined) > 0 {
		appendUnique(pickByPolicy(combined, PolicyHighest))
	}
	if len(videoOnly) > 0 {
		appendUnique(pickByPolicy(videoOnly, PolicyHighest))
	}
	if len(combined) > 0 {
		appendUnique(pickByPolicy(combined, PolicyMedium))
		appendUnique(pickByPolicy(combined, PolicyLowest))
	}
	if len(chain) > 3 {
		chain = chain[:3]
	}
	return chain
}

func combinedEncodings(encodings []Encoding) []Encoding {
	var out []Encoding
	for _, enc := range encodings {
		if enc.HasVideo && enc.HasAudio {
			out = append(out, enc)
		}
	}
	return out
}

func videoOnlyEncodings(encodings []Encoding) []Encoding {
	var out []Encoding
	for _, enc := range encodings {
		if enc.HasVideo && !enc.HasAudio {
			out = append(out, enc)
		}
	}
	return out
}

// pickByPolicy orders candidates by height then video bitrate and picks
// per policy: highest, the middle entry, or lowest. The stable sort
// keeps manifest order authoritative under ties.
func pickByPolicy(candidates []Encoding, policy RetrievalPolicy) Encoding {
	if len(candidates) == 0 {
		return Encoding{}
	}
	ordered := make([]Encoding, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Height != ordered[j].Height {
			return ordered[i].Height > ordered[j].Height
		}
		return ordered[i].VideoBitrate > ordered[j].VideoBitrate
	})
	switch policy {
	case PolicyLowest:
		return ordered[len(ordered)-1]
	case PolicyMedium:
		return ordered[len(ordered)/2]
	default:
		return ordered[0]
	}
}
