package utils

import (
	"net/url"
	"strings"
)

// GetBaseDomain extracts the lower-cased host from a URL, removing the port
// and only the "www" prefix.
// For example: "www.example.com" -> "example.com", "docs.example.com" -> "docs.example.com"
func GetBaseDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// HostMatches reports whether the URL's host is domain or a subdomain of it
func HostMatches(rawURL, domain string) bool {
	host := GetBaseDomain(rawURL)
	if host == "" {
		return false
	}
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsHTTPURL checks if a URL uses HTTP or HTTPS scheme and names a host
func IsHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
