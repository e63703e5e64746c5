package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const codeFence = "```"

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// StripCodeFences removes a leading ```lang marker, a trailing ``` marker and
// surrounding whitespace. Text that opens with prose before a fenced block is
// reduced to the body of the first block.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, codeFence) {
		if body, ok := firstFencedBlock(s); ok {
			return body
		}
	}
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func firstFencedBlock(s string) (string, bool) {
	start := strings.Index(s, codeFence)
	if start == -1 {
		return "", false
	}
	rest := s[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	if idx := strings.IndexByte(block, '\n'); idx != -1 {
		first := strings.TrimSpace(block[:idx])
		if first != "" && !strings.ContainsAny(first, "[{") {
			block = block[idx+1:]
		}
	}
	block = strings.TrimSpace(block)
	return block, block != ""
}

// Truncate cuts s to at most max bytes without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
