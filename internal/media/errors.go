package media

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category classifies a failure so the HTTP boundary can map it to a
// status code and a user-readable message without leaking internals.
type Category string

const (
	CategoryInvalidInput        Category = "invalid_input"
	CategoryUnsupportedHost     Category = "unsupported_host"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
	CategoryFetchFailed         Category = "manifest_fetch_failed"
	CategoryTimeout             Category = "timeout"
	CategoryNotFound            Category = "not_found"
	CategoryRestricted          Category = "restricted"
	CategoryNoUsableFormat      Category = "no_usable_format"
	CategoryRelayFailed         Category = "relay_failed"
	CategoryRateLimited         Category = "rate_limited"
)

// CategorizedError wraps an error with a Category.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e CategorizedError) Error() string {
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

func wrapCategory(category Category, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

// CategoryOf returns the innermost category attached to err, or
// CategoryFetchFailed when none is present.
func CategoryOf(err error) Category {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategoryFetchFailed
}

// HTTPStatus maps a category to the response status code.
func HTTPStatus(category Category) int {
	switch category {
	case CategoryInvalidInput, CategoryUnsupportedHost:
		return http.StatusBadRequest
	case CategoryUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case CategoryTimeout:
		return http.StatusRequestTimeout
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryRestricted:
		return http.StatusForbidden
	case CategoryRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the user-facing message for a category. Raw
// upstream error strings are never surfaced.
func UserMessage(category Category) string {
	switch category {
	case CategoryInvalidInput:
		return "Invalid YouTube URL. Please check the URL and try again."
	case CategoryUnsupportedHost:
		return "Invalid YouTube URL. Please check the URL and try again."
	case CategoryUpstreamUnavailable:
		return "Download service temporarily unavailable. Please try again later."
	case CategoryTimeout:
		return "Request timed out. Please try again."
	case CategoryNotFound:
		return "Video is unavailable or private"
	case CategoryRestricted:
		return "Age-restricted video cannot be accessed"
	case CategoryNoUsableFormat:
		return "No downloadable format matches the request"
	case CategoryRelayFailed:
		return "All download methods failed. Video may be restricted."
	case CategoryRateLimited:
		return "Too many requests. Please slow down."
	default:
		return "Failed to fetch video information. The video may be private, age-restricted, or unavailable."
	}
}

// categorizeUpstream inspects an extraction error message and assigns
// the closest category. Upstream reports restrictions as free-text, so
// substring matching is the only signal available.
func categorizeUpstream(err error) error {
	if err == nil {
		return nil
	}
	var ce CategorizedError
	if errors.As(err, &ce) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || errors.Is(err, errFetchTimeout):
		return wrapCategory(CategoryTimeout, err)
	case strings.Contains(msg, "video unavailable") || strings.Contains(msg, "unavailable"):
		return wrapCategory(CategoryNotFound, err)
	case strings.Contains(msg, "sign in to confirm") || strings.Contains(msg, "private"):
		return wrapCategory(CategoryRestricted, err)
	case strings.Contains(msg, "age"):
		return wrapCategory(CategoryRestricted, err)
	default:
		return wrapCategory(CategoryFetchFailed, fmt.Errorf("fetching manifest: %w", err))
	}
}
