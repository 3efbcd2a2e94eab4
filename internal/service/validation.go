package service

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/site-scraper/internal/fetcher"
)

var (
	// ErrMissingURL is returned when no target url was supplied.
	ErrMissingURL = errors.New("url is required")
	// ErrInvalidURL is returned when the target url cannot be fetched as given.
	ErrInvalidURL = errors.New("url is invalid")
	// ErrPrivateTarget is returned for loopback and private network targets.
	ErrPrivateTarget = fmt.Errorf("%w: host is not a public address", ErrInvalidURL)
)

var idnaProfile = idna.Lookup

// NormalizeTargetURL checks that raw is an absolute http(s) url with a usable
// host. A missing scheme defaults to https. The input is otherwise preserved.
func NormalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil || strings.EqualFold(host, "localhost") {
		return raw, nil
	}
	ascii, err := idnaProfile.ToASCII(host)
	if err != nil || !isDomainValid(ascii) {
		return "", ErrInvalidURL
	}
	return raw, nil
}

// IsPrivateTarget reports whether the host of a normalized target is
// localhost or a non-public IP literal. Names resolving to private addresses
// are refused later by the fetcher's dialer.
func IsPrivateTarget(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && fetcher.IsPrivateIP(ip)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
