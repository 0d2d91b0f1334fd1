package util

import (
	"net/url"
	"path"
	"strings"
)

// ResolveURLPath resolves a resource root or absolute URL against a base URL.
// If pathOrURL is already an absolute URL it is returned as-is, which lets a
// single resource live on a different host from the configured base.
// Otherwise pathOrURL is joined onto the base URL's path, keeping any prefix.
//
// url.ResolveReference is avoided on purpose: it treats roots starting with "/"
// as absolute references and would drop a base path prefix such as /api.
//
// Examples:
//   - ResolveURLPath("http://status.local/api/", "/modelstatus/v0/model_run") -> "http://status.local/api/modelstatus/v0/model_run"
//   - ResolveURLPath("http://status.local", "https://other:9000/productstatus/v0/model_run") -> "https://other:9000/productstatus/v0/model_run"
func ResolveURLPath(baseURL, pathOrURL string) string {
	if baseURL == "" {
		return pathOrURL
	}
	if pathOrURL == "" {
		return baseURL
	}

	if parsed, err := url.Parse(pathOrURL); err == nil && parsed.IsAbs() {
		return pathOrURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return pathOrURL
	}

	base.Path = path.Join(base.Path, pathOrURL)
	return base.String()
}

// ResourceItemURL returns the URL of a single record under a collection URL.
// The id is escaped as one path segment, so ids containing '/' can't walk
// out of the collection.
func ResourceItemURL(collectionURL, id string) string {
	return strings.TrimRight(collectionURL, "/") + "/" + url.PathEscape(id)
}
