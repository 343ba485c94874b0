package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fetchtube/fetchtube/internal/media"
	"github.com/fetchtube/fetchtube/pkg/logger"
)

// MediaHandler serves the two core operations: resolve metadata for a
// URL and stream bytes for a URL plus format.
type MediaHandler struct {
	fetcher *media.Fetcher
	relay   *media.Relay
}

func NewMediaHandler(fetcher *media.Fetcher, relay *media.Relay) *MediaHandler {
	return &MediaHandler{fetcher: fetcher, relay: relay}
}

type metadataRequest struct {
	URL string `json:"url"`
}

type metadataResponse struct {
	Title     string                `json:"title"`
	Thumbnail string                `json:"thumbnail"`
	Duration  string                `json:"duration"`
	Author    string                `json:"author"`
	ViewCount string                `json:"viewCount"`
	Formats   []media.QualityChoice `json:"formats"`
}

type downloadFormat struct {
	Quality string `json:"quality"`
	Format  string `json:"format"`
}

type downloadRequest struct {
	URL    string          `json:"url"`
	Format *downloadFormat `json:"format"`
}

// Metadata handles POST /metadata.
func (h *MediaHandler) Metadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	id, err := media.ValidateWatchURL(req.URL)
	if err != nil {
		h.respondMetadataError(c, err)
		return
	}

	manifest, err := h.fetcher.Fetch(c.Request.Context(), id)
	if err != nil {
		h.respondMetadataError(c, err)
		return
	}

	logger.Log.Info("manifest resolved",
		zap.String("videoId", string(id)),
		zap.String("title", manifest.Title),
		zap.Int("encodings", len(manifest.Encodings)),
		zap.Bool("degraded", manifest.Degraded),
	)

	c.JSON(http.StatusOK, metadataResponse{
		Title:     manifest.Title,
		Thumbnail: manifest.Thumbnail,
		Duration:  media.DurationString(manifest.Duration),
		Author:    manifest.Author,
		ViewCount: media.ViewCountString(manifest.Views),
		Formats:   media.Rank(manifest),
	})
}

// Download handles POST /download.
func (h *MediaHandler) Download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" || req.Format == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and format are required"})
		return
	}

	id, err := media.ValidateWatchURL(req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	request, err := media.ParseQualityRequest(req.Format.Quality)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and format are required"})
		return
	}

	// The degraded manifest source synthesizes asset references that
	// alias the watch page, so downloads require the primary source.
	manifest, err := h.fetcher.FetchPrimary(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	encoding, err := media.SelectEncoding(manifest, request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	logger.Log.Info("starting relay",
		zap.String("videoId", string(id)),
		zap.String("quality", req.Format.Quality),
		zap.Int("itag", encoding.Itag),
	)

	audioOnly := request.Kind == media.QualityAudioOnly
	if err := h.relay.Stream(c.Request.Context(), manifest, encoding, audioOnly, c.Writer); err != nil {
		if errors.Is(err, media.ErrCommitted) || errors.Is(err, context.Canceled) {
			// Bytes already reached the client. Killing the connection
			// keeps the truncation visible instead of closing out a
			// seemingly complete chunked response.
			logger.Log.Warn("relay aborted mid-stream",
				zap.String("videoId", string(id)),
				zap.Error(err),
			)
			panic(http.ErrAbortHandler)
		}
		h.respondError(c, err)
	}
}

func (h *MediaHandler) respondError(c *gin.Context, err error) {
	category := media.CategoryOf(err)
	h.respond(c, category, media.HTTPStatus(category), err)
}

// respondMetadataError answers metadata failures. Upstream failures all
// surface as 500 there with the categorized message; the per-category
// statuses belong to the download path.
func (h *MediaHandler) respondMetadataError(c *gin.Context, err error) {
	category := media.CategoryOf(err)
	status := media.HTTPStatus(category)
	if status != http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	h.respond(c, category, status, err)
}

func (h *MediaHandler) respond(c *gin.Context, category media.Category, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("category", string(category)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	} else {
		logger.Log.Warn("request rejected",
			zap.String("category", string(category)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": media.UserMessage(category)})
}
