package httpmetrics

import (
	"regexp"
	"strings"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// NormalizePath collapses path parameters so metric label cardinality
// stays bounded: /api/talks/5f0e... -> /api/talks/{param}.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if uuidRegex.MatchString(segment) || isNumeric(segment) {
			segments[i] = "{param}"
		}
	}

	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
