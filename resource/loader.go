// Package resource turns a URI into raw bytes or an N-dimensional numeric
// array for tensor encoding. Supported schemes are file, http, https and ftp;
// local files with a recognized FITS suffix decode to their native pixel
// shape.
package resource

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/parse"
	"github.com/c360/telemsend/pkg/retry"
)

// Payload is the result of loading a URI: homogeneous elements with a shape.
// Opaque byte content is a rank-1 uint8 payload.
type Payload struct {
	Elem  parse.Kind
	Shape []uint32
	Data  []byte
}

// Bytes wraps opaque content as a rank-1 uint8 payload.
func Bytes(b []byte) *Payload {
	return &Payload{Elem: parse.KindUint8, Shape: []uint32{uint32(len(b))}, Data: b}
}

// Loader resolves a URI to a payload.
type Loader interface {
	Load(ctx context.Context, uri string) (*Payload, error)
}

// Client is the production Loader.
type Client struct {
	httpClient *http.Client
	retryCfg   retry.Config
	ftpTimeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for http/https URIs
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig sets the retry policy for remote fetches
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithFTPTimeout sets the dial timeout for ftp URIs
func WithFTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.ftpTimeout = d }
}

// NewClient creates a Loader with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryCfg:   retry.Quick(),
		ftpTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load implements Loader. Unknown schemes fail with ErrUnsupportedScheme;
// an absent local file fails with ErrResourceNotFound.
func (c *Client) Load(ctx context.Context, uri string) (*Payload, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.WrapInvalid(err, "resource", "Load", "parse uri")
	}

	switch u.Scheme {
	case "file":
		return c.loadFile(u)
	case "http", "https":
		return c.loadHTTP(ctx, uri)
	case "ftp":
		return c.loadFTP(ctx, u)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnsupportedScheme, u.Scheme),
			"resource", "Load", "scheme dispatch")
	}
}

func (c *Client) loadFile(u *url.URL) (*Payload, error) {
	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrResourceNotFound, path),
				"resource", "loadFile", "read")
		}
		return nil, errors.Wrap(err, "resource", "loadFile", "read")
	}

	if isFITSPath(path) {
		return decodeFITS(b)
	}
	return Bytes(b), nil
}

func (c *Client) loadHTTP(ctx context.Context, uri string) (*Payload, error) {
	var body []byte
	err := retry.Do(ctx, c.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return retry.NonRetryable(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return retry.NonRetryable(fmt.Errorf("%w: %s", errors.ErrResourceNotFound, uri))
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return retry.NonRetryable(fmt.Errorf("http status %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("http status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrResourceNotFound) {
			return nil, errors.WrapInvalid(err, "resource", "loadHTTP", "fetch")
		}
		return nil, errors.WrapTransient(err, "resource", "loadHTTP", "fetch")
	}
	return Bytes(body), nil
}

func (c *Client) loadFTP(ctx context.Context, u *url.URL) (*Payload, error) {
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.ftpTimeout))
	if err != nil {
		return nil, errors.WrapTransient(err, "resource", "loadFTP", "dial")
	}
	defer func() { _ = conn.Quit() }()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, errors.Wrap(err, "resource", "loadFTP", "login")
	}

	r, err := conn.Retr(u.Path)
	if err != nil {
		var perr *textproto.Error
		if stderrors.As(err, &perr) && perr.Code == ftp.StatusFileUnavailable {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrResourceNotFound, u.Path),
				"resource", "loadFTP", "retrieve")
		}
		return nil, errors.Wrap(err, "resource", "loadFTP", "retrieve")
	}
	defer func() { _ = r.Close() }()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "resource", "loadFTP", "read")
	}
	return Bytes(b), nil
}
