// Package transport is the publication boundary of the sender. It hides the
// concrete pub/sub client behind a small handle whose offer result is a
// closed status set, so the publish loop never sees transport-specific codes.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/c360/telemsend/errors"
)

// Result is the outcome of offering a batch to a publication.
type Result int

const (
	// ResultSuccess means the whole batch was accepted
	ResultSuccess Result = iota
	// ResultCongested means the transport is backpressured; retry shortly
	ResultCongested
	// ResultAdminPause means the transport is administratively paused; retry shortly
	ResultAdminPause
	// ResultNotConnected means no subscriber connection exists
	ResultNotConnected
	// ResultClosed means the publication has been closed
	ResultClosed
	// ResultError means a hard transport failure
	ResultError
)

// String returns the string representation of Result
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultCongested:
		return "congested"
	case ResultAdminPause:
		return "admin_pause"
	case ResultNotConnected:
		return "not_connected"
	case ResultClosed:
		return "closed"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Publication is a connected handle onto one destination stream. The
// transport may copy offered buffers but does not retain them beyond the
// call.
type Publication interface {
	// Offer presents the ordered batch. Buffers are offered in order; the
	// first non-success outcome is returned.
	Offer(buffers [][]byte) Result
	// IsConnected reports whether a subscriber connection exists.
	IsConnected() bool
	// Close releases the handle. Safe to call on every exit path.
	Close() error
}

// Config selects and configures the concrete transport.
type Config struct {
	// URI is the destination channel. The scheme picks the backend:
	// "aeron" or "nats".
	URI string
	// StreamID identifies the destination stream within the channel.
	StreamID int32
	// AeronDir is the media driver directory for aeron channels.
	AeronDir string
	// DriverTimeout bounds the initial client-to-driver handshake.
	DriverTimeout time.Duration
	Logger        *slog.Logger
}

// Connect dispatches on the URI scheme and returns a publication handle.
// The handle may not have a subscriber connection yet; callers poll
// IsConnected before sending.
func Connect(ctx context.Context, cfg Config) (Publication, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DriverTimeout == 0 {
		cfg.DriverTimeout = 5 * time.Second
	}

	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, errors.WrapInvalid(err, "transport", "Connect", "parse uri")
	}

	switch u.Scheme {
	case "aeron":
		return connectAeron(cfg)
	case "nats":
		return connectNATS(ctx, cfg)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unsupported transport scheme %q", u.Scheme),
			"transport", "Connect", "scheme dispatch")
	}
}
