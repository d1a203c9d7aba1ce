package packs

import (
	"regexp"
	"strings"
)

var (
	keyPattern         = regexp.MustCompile(`^[a-z0-9]+$`)
	stickerNamePattern = regexp.MustCompile(`^:?-?[a-z0-9]+:?$`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// collapseWhitespace trims the string and squashes internal whitespace runs
// to single spaces. Applied before any length validation.
func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

var stickerNameStrip = strings.NewReplacer(":", "", "-", "")

// normalizeStickerName lowercases the name and strips emoji-style colon and
// dash decorations, e.g. ":katana-" becomes "katana".
func normalizeStickerName(s string) string {
	return stickerNameStrip.Replace(strings.ToLower(s))
}
