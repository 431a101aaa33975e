package cache

import (
	"net/url"
	"path"
	"strings"
)

// ValidateKey maps a caller-supplied opaque key to a relative path under the
// cache root. A key that parses as a URL decomposes into three segments,
// "misc/scheme-host-port/path-query", so distinct URLs never collide and
// URLs for the same host cluster in one directory. Any other key is treated
// as a slash-separated relative path. Every segment passes a whitelist
// filter, so the result can never escape the cache root or carry characters
// hostile to the underlying filesystem.
func ValidateKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	if u, err := url.Parse(key); err == nil && u.Scheme != "" && u.Host != "" {
		host := u.Scheme + "-" + u.Hostname()
		if port := u.Port(); port != "" {
			host += "-" + port
		}

		tail := strings.Trim(u.Path, "/")
		if u.RawQuery != "" {
			if tail != "" {
				tail += "-"
			}
			tail += u.RawQuery
		}
		if tail == "" {
			tail = "index"
		}

		return path.Join("misc", sanitizeSegment(host), sanitizeSegment(tail)), true
	}

	var segments []string
	for _, segment := range strings.Split(key, "/") {
		// Empty, dot and dot-dot segments are dropped so the joined path
		// stays confined under the root.
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		segments = append(segments, sanitizeSegment(segment))
	}

	if len(segments) == 0 {
		return "", false
	}
	return path.Join(segments...), true
}

// sanitizeSegment replaces every character outside the allowed set with a
// placeholder dash.
func sanitizeSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	// A segment of only dots could still walk upward once joined.
	if strings.Trim(b.String(), ".") == "" {
		return "-"
	}
	return b.String()
}
