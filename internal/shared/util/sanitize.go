package util

import (
	"errors"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// SanitizeFileName replaces unsafe characters and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = unsafeFileChars.ReplaceAllString(s, "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
