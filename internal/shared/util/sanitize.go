package util

import (
	"errors"
	"strings"
)

// SanitizeFileName flattens path separators to "_" and rejects names with a
// "." or ".." path segment. Dots inside a segment are kept.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	segments := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segments {
		if seg == "." || seg == ".." {
			return "", errors.New("invalid file name")
		}
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
