// Package security is the trust boundary between client-asserted path
// strings and paths that filesystem operations may touch. Every transition
// goes through token issuance and verification; no other code constructs a
// TrustedPath.
package security

import (
	"net"

	"github.com/heimgewebe/lenskit/internal/pathutil"
)

// Config is the immutable security posture of the process: allowlisted
// roots, bind host, and signing secret. It is built once at startup and
// passed by reference; issuance and verification are pure functions over
// it, safe under unbounded parallel use.
type Config struct {
	roots    []string
	bindHost string
	secret   []byte
	devMode  bool
}

// NewConfig builds a security configuration. Roots are canonicalized;
// entries that cannot normalize are dropped. The secret may be empty, in
// which case issuance fails with ErrConfiguration unless devMode is set.
func NewConfig(roots []string, bindHost, secret string, devMode bool) *Config {
	cfg := &Config{
		bindHost: bindHost,
		devMode:  devMode,
	}
	if secret != "" {
		cfg.secret = []byte(secret)
	}
	for _, r := range roots {
		if p, ok := pathutil.Normalize(r); ok && p != "/" {
			cfg.roots = append(cfg.roots, p)
		}
	}
	return cfg
}

// Roots returns the configured allowlist roots in canonical form. The
// system root "/" is never in this list; it is governed by RootBrowsing.
func (c *Config) Roots() []string {
	out := make([]string, len(c.roots))
	copy(out, c.roots)
	return out
}

// HasSecret reports whether a signing secret is configured.
func (c *Config) HasSecret() bool {
	return len(c.secret) > 0
}

// RootBrowsing reports whether issuing a token for the system root "/" is
// permitted, with a human-readable reason when it is not. Policy: loopback
// bind AND a configured secret. A non-loopback bind refuses root regardless
// of authentication.
func (c *Config) RootBrowsing() (bool, string) {
	if !isLoopbackHost(c.bindHost) {
		return false, "root browsing refused by policy (non-loopback host)"
	}
	if !c.HasSecret() {
		return false, "root browsing requires a configured auth secret"
	}
	return true, ""
}

// Covers reports whether a canonical path is inside the current allowlist:
// equal to or a descendant of an allowlisted root, or "/" itself when root
// browsing is active. When root browsing is active every absolute path is
// reachable, since "/" is then a browsable ancestor.
func (c *Config) Covers(canonical string) bool {
	if rootOK, _ := c.RootBrowsing(); rootOK && canonical == "/" {
		return true
	}
	for _, root := range c.roots {
		if canonical == root || pathutil.IsDescendant(root, canonical) {
			return true
		}
	}
	if rootOK, _ := c.RootBrowsing(); rootOK {
		return pathutil.IsDescendant("/", canonical)
	}
	return false
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
