package packs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   ":             "",
		"Foo Bar":         "Foo Bar",
		"  Foo   Bar  ":   "Foo Bar",
		"a\t\tb\n c":      "a b c",
		" leading":        "leading",
		"trailing ":       "trailing",
	}
	for in, want := range cases {
		assert.Equal(t, want, collapseWhitespace(in), "input %q", in)
	}
}

func TestNormalizeStickerName(t *testing.T) {
	cases := map[string]string{
		"katana":   "katana",
		":katana:": "katana",
		"-katana":  "katana",
		":KATANA:": "katana",
		"cool2":    "cool2",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeStickerName(in), "input %q", in)
	}
}

func TestPatterns(t *testing.T) {
	t.Run("pack keys", func(t *testing.T) {
		for _, key := range []string{"a", "abc123", "00000000"} {
			assert.True(t, keyPattern.MatchString(key), "key %q", key)
		}
		for _, key := range []string{"", "ABC", "a b", "a-b", "émoji"} {
			assert.False(t, keyPattern.MatchString(key), "key %q", key)
		}
	})

	t.Run("sticker names", func(t *testing.T) {
		for _, name := range []string{"katana", ":katana:", "-katana", ":cool2"} {
			assert.True(t, stickerNamePattern.MatchString(name), "name %q", name)
		}
		for _, name := range []string{"", "::x::", "UPPER", "with space", "under_score"} {
			assert.False(t, stickerNamePattern.MatchString(name), "name %q", name)
		}
	})
}
