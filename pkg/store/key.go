package store

import (
	"net/url"
	"strings"
)

// keyPrefix namespaces all snapshot keys.
const keyPrefix = "polls:snapshot"

// SnapshotKey identifies the snapshot for one API deployment.
type SnapshotKey struct {
	// BaseURL is the API base URL (e.g., "http://localhost:8000")
	BaseURL string
}

// String generates a deterministic key string.
// Scheme and trailing slashes are ignored and the host is lower-cased, so
// equivalent base URLs share one snapshot.
//
// Example:
//
//	polls:snapshot:localhost:8000
//	polls:snapshot:api.example.com/v1
func (k SnapshotKey) String() string {
	raw := strings.TrimSpace(k.BaseURL)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return keyPrefix + ":" + strings.Trim(raw, "/")
	}

	target := strings.ToLower(u.Host)
	if path := strings.Trim(u.Path, "/"); path != "" {
		target += "/" + path
	}

	return keyPrefix + ":" + target
}
