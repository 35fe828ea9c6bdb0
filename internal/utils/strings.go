package utils

import (
	"strings"
	"unicode"
)

// CollapseSpace replaces every run of whitespace (including embedded
// newlines) with a single space. Popup rows are single-line, so every
// string that reaches the formatter goes through this first.
func CollapseSpace(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// CurrentWord returns the word token of the typed segment: everything
// after the last space. An input with no space is its own word.
func CurrentWord(s string) string {
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		return s[i+1:]
	}
	return s
}

// HasWordPrefix reports whether cand begins with word, using a
// case-sensitive fixed-length byte comparison. Unlike a substring
// search this never matches past len(word).
func HasWordPrefix(cand, word string) bool {
	return len(cand) >= len(word) && cand[:len(word)] == word
}

// IsRepetitive checks if a string consists of a single repeated
// character (e.g. "aaa", "www"). Used by the dictionary provider to
// skip junk prefixes.
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}

// IsValidInput checks if input should be looked up in the dictionary.
// Returns false for empty, all-digit, or repetitive strings and for
// strings with characters outside letters/digits/common separators.
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	onlyDigits := true
	for _, r := range s {
		if !unicode.IsDigit(r) {
			onlyDigits = false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !isSeparator(r) {
			return false
		}
	}
	if onlyDigits {
		return false
	}
	return !IsRepetitive(s)
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}
