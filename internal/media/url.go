package media

import (
	"errors"
	"regexp"
	"strings"
)

// VideoID is the 11-character opaque token that identifies one video.
// It is derived per request and never persisted.
type VideoID string

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/.*[?&]v=([a-zA-Z0-9_-]{11})`),
}

// ValidateWatchURL checks that raw is a recognizable YouTube watch or
// short-link URL and extracts the video identifier. Malformed input and
// unsupported hosts are rejected with the same invalid-input signal.
func ValidateWatchURL(raw string) (VideoID, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", wrapCategory(CategoryInvalidInput, errors.New("no url provided"))
	}
	if !strings.Contains(clean, "youtube.com/watch") && !strings.Contains(clean, "youtu.be/") {
		return "", wrapCategory(CategoryInvalidInput, errors.New("not a recognized watch URL"))
	}
	for _, pattern := range idPatterns {
		if match := pattern.FindStringSubmatch(clean); match != nil {
			return VideoID(match[1]), nil
		}
	}
	return "", wrapCategory(CategoryInvalidInput, errors.New("no video id in URL"))
}

// WatchURL returns the canonical watch URL for an identifier.
func WatchURL(id VideoID) string {
	return "https://www.youtube.com/watch?v=" + string(id)
}
