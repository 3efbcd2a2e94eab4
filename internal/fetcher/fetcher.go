// Package fetcher retrieves the HTML of a single target page.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html/charset"
)

var (
	// ErrFetchFailed wraps every network, timeout and status failure.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrUnsupportedContent is returned for responses that are not markup.
	ErrUnsupportedContent = errors.New("unsupported content type")
	// ErrPrivateAddress is returned when a connection would reach a non-public
	// address.
	ErrPrivateAddress = errors.New("address is not public")
)

// Page is a retrieved document.
type Page struct {
	URL string
	// FinalURL is where redirects ended, empty when unknown.
	FinalURL string
	HTML     []byte
}

// DocumentURL is the address the HTML was served from.
func (p *Page) DocumentURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*Page, error)
}

// Options controls HTTP retrieval.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	// BlockPrivate refuses connections to loopback, private and link-local
	// addresses, including hosts that resolve to them. It only applies to
	// the client built when none is passed in.
	BlockPrivate bool
}

// HTTPFetcher performs a single GET with a browser-like User-Agent.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

// NewHTTPFetcher builds an HTTPFetcher. A nil client falls back to one with
// the configured timeout.
func NewHTTPFetcher(client *http.Client, opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
		if opts.BlockPrivate {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.DialContext = (&net.Dialer{
				Timeout: opts.Timeout,
				Control: refusePrivate,
			}).DialContext
			client.Transport = transport
		}
	}
	return &HTTPFetcher{client: client, opts: opts}
}

func refusePrivate(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

// IsPrivateIP reports whether ip is loopback, private, link-local, multicast
// or unspecified.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() || ip.IsUnspecified()
}

// Fetch downloads target and converts the body to UTF-8.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isMarkup(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	body := raw
	if r, err := charset.NewReader(bytes.NewReader(raw), contentType); err == nil {
		if converted, err := io.ReadAll(r); err == nil {
			body = converted
		}
	}

	return &Page{
		URL:      target,
		FinalURL: resp.Request.URL.String(),
		HTML:     body,
	}, nil
}

// isMarkup accepts HTML-ish types. A missing header is treated as HTML.
func isMarkup(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain", "application/xml", "text/xml":
		return true
	}
	return false
}

var _ Fetcher = (*HTTPFetcher)(nil)
