// Package security validates destination URLs before they are shortened.
package security

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// Policy violations. The link service maps these onto its own error set.
var (
	ErrDangerousScheme = errors.New("dangerous URL scheme detected")
	ErrInvalidScheme   = errors.New("URL must use http or https scheme")
	ErrPrivateIP       = errors.New("private IP addresses not allowed")
	ErrBlockedHost     = errors.New("host is blocked")
	ErrURLTooLong      = errors.New("URL exceeds maximum length")
	ErrMalformedURL    = errors.New("malformed URL")
)

// dangerousSchemes are schemes a browser would execute rather than fetch.
// These get their own error so the rejection reads as a security refusal,
// not a format complaint.
var dangerousSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"vbscript":   true,
	"file":       true,
}

// Config holds the destination URL policy.
type Config struct {
	MaxURLLength    int
	AllowPrivateIPs bool
	BlockedHosts    []string
}

// DefaultConfig returns the default policy: 2048 byte URLs, no private
// addresses, no blocklist.
func DefaultConfig() Config {
	return Config{MaxURLLength: 2048}
}

// Sanitizer checks destination URLs against a Config.
type Sanitizer struct {
	maxLength       int
	allowPrivateIPs bool
	blocked         map[string]bool
}

// NewSanitizer creates a Sanitizer enforcing the given policy.
func NewSanitizer(cfg Config) *Sanitizer {
	blocked := make(map[string]bool, len(cfg.BlockedHosts))
	for _, host := range cfg.BlockedHosts {
		blocked[strings.ToLower(host)] = true
	}

	maxLength := cfg.MaxURLLength
	if maxLength <= 0 {
		maxLength = 2048
	}

	return &Sanitizer{
		maxLength:       maxLength,
		allowPrivateIPs: cfg.AllowPrivateIPs,
		blocked:         blocked,
	}
}

// Validate reports the first policy violation for rawURL, or nil if the
// URL is an acceptable shortening destination.
func (s *Sanitizer) Validate(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrMalformedURL
	}
	if len(rawURL) > s.maxLength {
		return ErrURLTooLong
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrMalformedURL
	}

	scheme := strings.ToLower(u.Scheme)
	if dangerousSchemes[scheme] {
		return ErrDangerousScheme
	}
	if scheme != "http" && scheme != "https" {
		return ErrInvalidScheme
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrMalformedURL
	}

	if s.hostBlocked(host) {
		return ErrBlockedHost
	}

	if !s.allowPrivateIPs && isPrivateHost(host) {
		return ErrPrivateIP
	}

	return nil
}

// hostBlocked matches the host and every parent domain against the
// blocklist, so blocking "evil.com" also blocks "cdn.evil.com".
func (s *Sanitizer) hostBlocked(host string) bool {
	if len(s.blocked) == 0 {
		return false
	}

	for {
		if s.blocked[host] {
			return true
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			return false
		}
		host = host[dot+1:]
	}
}

// isPrivateHost reports whether host points at localhost or a private,
// link-local, loopback, or unspecified address.
func isPrivateHost(host string) bool {
	if host == "localhost" {
		return true
	}

	// IPv6 literals arrive bracketed
	trimmed := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(trimmed)
	if ip == nil {
		return false
	}

	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
