// Package producturl reduces product page URLs to a canonical form so that
// the same product reached through different links is fetched from one address.
package producturl

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
)

// trackingParams are query parameters that never change the product shown.
var trackingParams = map[string]struct{}{
	"fbclid":     {},
	"gclid":      {},
	"gclsrc":     {},
	"dclid":      {},
	"msclkid":    {},
	"ref":        {},
	"ref_":       {},
	"tag":        {},
	"psc":        {},
	"qid":        {},
	"sr":         {},
	"keywords":   {},
	"th":         {},
	"content-id": {},
	"crid":       {},
	"sprefix":    {},
	"linkcode":   {},
	"linkid":     {},
	"camp":       {},
	"creative":   {},
	"smid":       {},
	"spla":       {},
}

// trackingPrefixes strip whole families such as utm_source or pd_rd_w.
var trackingPrefixes = []string{"utm_", "pd_rd_", "pf_rd_"}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// asinPattern matches the product identifier in the path shapes Amazon uses.
var asinPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d|product)/([A-Z0-9]{10})(?:[/?]|$)`)

var (
	errEmptyInput          = errors.New("canonicalize url: empty input")
	errMissingSchemeOrHost = errors.New("canonicalize url: missing scheme or host")
)

// Canonicalize returns the canonical address of a product page. Amazon
// product links collapse to https://<host>/dp/<ASIN>; any other URL goes
// through NormalizeURL.
func Canonicalize(rawURL string) (string, error) {
	parsed, err := parse(rawURL)
	if err != nil {
		return "", err
	}

	host := normalizeHost(parsed, strings.ToLower(parsed.Scheme))
	if asin, ok := ASIN(parsed); ok && IsAmazonHost(host) {
		return "https://" + host + "/dp/" + asin, nil
	}

	return NormalizeURL(rawURL)
}

// ASIN extracts the ten-character Amazon product identifier from u's path.
func ASIN(u *url.URL) (string, bool) {
	m := asinPattern.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// IsAmazonHost reports whether host belongs to an Amazon storefront.
func IsAmazonHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return strings.HasPrefix(host, "amazon.") || strings.Contains(host, ".amazon.")
}

// NormalizeURL lowercases scheme and host, upgrades to https, removes default
// ports, fragments and tracking parameters, sorts the remaining query and
// cleans the path.
func NormalizeURL(rawURL string) (string, error) {
	parsed, err := parse(rawURL)
	if err != nil {
		return "", err
	}

	originalScheme := strings.ToLower(parsed.Scheme)
	parsed.Scheme = "https"
	parsed.Host = normalizeHost(parsed, originalScheme)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = cleanQuery(parsed.Query())
	parsed.Path = cleanPath(parsed.Path)
	parsed.RawPath = ""

	return parsed.String(), nil
}

func parse(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errEmptyInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("canonicalize url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errMissingSchemeOrHost
	}
	return parsed, nil
}

func isTracking(key string) bool {
	key = strings.ToLower(key)
	if _, ok := trackingParams[key]; ok {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func normalizeHost(u *url.URL, originalScheme string) string {
	hostname := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" {
		return hostname
	}

	for _, scheme := range []string{originalScheme, "https"} {
		if port == defaultPorts[scheme] {
			return hostname
		}
	}
	return hostname + ":" + port
}

func cleanQuery(values url.Values) string {
	for key := range values {
		if isTracking(key) {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, val := range values[key] {
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(val))
		}
	}
	return strings.Join(parts, "&")
}

// cleanPath resolves dot segments and drops trailing slashes, keeping the root.
func cleanPath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimRight(path.Clean(p), "/")
}
