package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fetchtube/fetchtube/internal/metrics"
)

const relayChunkSize = 64 * 1024

// ErrCommitted marks a relay failure that happened after response bytes
// were already sent. Headers and body are committed, so the only option
// left is terminating the connection.
var ErrCommitted = errors.New("relay failed after response committed")

// Relay opens the upstream byte stream for a selected encoding and
// forwards it to the client chunk by chunk. A failure before any byte
// reaches the client triggers a bounded chain of more conservative
// encodings; a failure after that is terminal.
type Relay struct {
	source StreamSource
	logger *zap.Logger
}

func NewRelay(source StreamSource, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{source: source, logger: logger}
}

// Stream delivers primary to w, retrying the whole relay with each
// fallback from FallbackEncodings while nothing has been committed.
// The returned error is nil on success, ErrCommitted-wrapped on a
// mid-stream abort, and CategoryRelayFailed once every attempt failed.
func (r *Relay) Stream(ctx context.Context, m *Manifest, primary Encoding, audioOnly bool, w http.ResponseWriter) error {
	attempts := append([]Encoding{primary}, FallbackEncodings(m, primary)...)

	var lastErr error
	for i, enc := range attempts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			r.logger.Warn("relay attempt failed, trying fallback encoding",
				zap.String("videoId", string(m.ID)),
				zap.Int("attempt", i+1),
				zap.Int("itag", enc.Itag),
				zap.Error(lastErr),
			)
		}
		committed, err := r.attempt(ctx, m, enc, audioOnly, w)
		if err == nil {
			metrics.RelayAttempts.WithLabelValues("success").Inc()
			return nil
		}
		if committed {
			metrics.RelayAttempts.WithLabelValues("aborted").Inc()
			return fmt.Errorf("%w: %w", ErrCommitted, err)
		}
		metrics.RelayAttempts.WithLabelValues("failure").Inc()
		lastErr = err
	}
	return wrapCategory(CategoryRelayFailed,
		fmt.Errorf("all %d relay attempts failed: %w", len(attempts), lastErr))
}

// attempt relays one encoding. The committed flag reports whether any
// byte reached the client before the error.
func (r *Relay) attempt(ctx context.Context, m *Manifest, enc Encoding, audioOnly bool, w http.ResponseWriter) (bool, error) {
	stream, size, err := r.source.OpenStream(ctx, m, enc)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	// A fallback can swap an audio request for a combined stream; the
	// labeling follows what this attempt actually delivers.
	filename, contentType := Disposition(m.Title, enc, audioOnly && !enc.HasVideo)
	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	header.Set("Cache-Control", "no-cache")
	if size > 0 {
		header.Set("Content-Length", strconv.FormatInt(size, 10))
	} else {
		// A prior attempt may have advertised a length it never sent.
		header.Del("Content-Length")
	}

	written, err := r.copyChunks(ctx, w, stream)
	metrics.RelayBytes.Add(float64(written))
	if err != nil {
		return written > 0, err
	}
	r.logger.Info("relay completed",
		zap.String("videoId", string(m.ID)),
		zap.Int("itag", enc.Itag),
		zap.Int64("bytes", written),
	)
	return true, nil
}

// copyChunks forwards the stream without buffering the asset, flushing
// after each chunk so bytes reach the client with bounded latency. A
// client disconnect cancels ctx and releases the upstream stream via
// the caller's deferred Close.
func (r *Relay) copyChunks(ctx context.Context, w http.ResponseWriter, stream io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, relayChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := stream.Read(buf)
		if n > 0 {
			wn, writeErr := w.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
