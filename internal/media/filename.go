package media

import (
	"regexp"
	"strings"
)

const maxFilenameRunes = 80

var (
	filenameInvalid = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// SanitizeTitle reduces a video title to a safe download filename stem:
// only `[A-Za-z0-9 _-]` survive, whitespace runs collapse to a single
// underscore, and the result is truncated to a bounded rune count.
func SanitizeTitle(title string) string {
	clean := filenameInvalid.ReplaceAllString(title, "")
	clean = strings.TrimSpace(clean)
	clean = whitespaceRun.ReplaceAllString(clean, "_")
	if runes := []rune(clean); len(runes) > maxFilenameRunes {
		clean = string(runes[:maxFilenameRunes])
	}
	if clean == "" {
		return "video"
	}
	return clean
}

// Disposition derives the attachment filename and content type for a
// delivery. Audio deliveries default to mp3/audio-mpeg unless the
// container is m4a; video deliveries use the container directly.
func Disposition(title string, enc Encoding, audioOnly bool) (filename, contentType string) {
	stem := SanitizeTitle(title)
	if audioOnly {
		if enc.Container == "m4a" || enc.Container == "mp4" {
			return stem + ".m4a", "audio/mp4"
		}
		return stem + ".mp3", "audio/mpeg"
	}
	container := containerOrDefault(enc.Container, "mp4")
	return stem + "." + container, "video/" + container
}
