package media

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", wrapCategory(CategoryNotFound, base))

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"direct", wrapCategory(CategoryTimeout, base), CategoryTimeout},
		{"wrapped deeper", wrapped, CategoryNotFound},
		{"uncategorized defaults", base, CategoryFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Fatalf("CategoryOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapCategoryNil(t *testing.T) {
	if err := wrapCategory(CategoryTimeout, nil); err != nil {
		t.Fatalf("wrapCategory(nil) = %v, want nil", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryInvalidInput, http.StatusBadRequest},
		{CategoryUnsupportedHost, http.StatusBadRequest},
		{CategoryUpstreamUnavailable, http.StatusServiceUnavailable},
		{CategoryTimeout, http.StatusRequestTimeout},
		{CategoryNotFound, http.StatusNotFound},
		{CategoryRestricted, http.StatusForbidden},
		{CategoryRateLimited, http.StatusTooManyRequests},
		{CategoryFetchFailed, http.StatusInternalServerError},
		{CategoryNoUsableFormat, http.StatusInternalServerError},
		{CategoryRelayFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.category); got != tt.want {
			t.Fatalf("HTTPStatus(%q) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestCategorizeUpstream(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"timeout text", errors.New("context deadline exceeded: timeout"), CategoryTimeout},
		{"fetch timeout sentinel", errFetchTimeout, CategoryTimeout},
		{"unavailable", errors.New("Video unavailable"), CategoryNotFound},
		{"sign in wall", errors.New("Sign in to confirm your age"), CategoryRestricted},
		{"private", errors.New("this video is private"), CategoryRestricted},
		{"age restriction", errors.New("age-restricted content"), CategoryRestricted},
		{"anything else", errors.New("unexpected end of JSON input"), CategoryFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeUpstream(tt.err)
			if got == nil {
				t.Fatal("categorizeUpstream returned nil")
			}
			if CategoryOf(got) != tt.want {
				t.Fatalf("category = %q, want %q", CategoryOf(got), tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("categorized error does not wrap original: %v", got)
			}
		})
	}
}

func TestCategorizeUpstreamKeepsExistingCategory(t *testing.T) {
	already := wrapCategory(CategoryRestricted, errors.New("video unavailable"))
	got := categorizeUpstream(already)
	if CategoryOf(got) != CategoryRestricted {
		t.Fatalf("category = %q, want existing %q", CategoryOf(got), CategoryRestricted)
	}
}

func TestCategorizeUpstreamNil(t *testing.T) {
	if got := categorizeUpstream(nil); got != nil {
		t.Fatalf("categorizeUpstream(nil) = %v, want nil", got)
	}
}
