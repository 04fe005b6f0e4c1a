package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxStringLength is the default maximum length for truncated strings
const DefaultMaxStringLength = 500

// JSONToString returns the compact JSON form of object, or a JSON error
// object when it cannot be marshaled. Safe to use in log output.
func JSONToString(object any) string {
	encoded, err := json.Marshal(object)
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen runes, appending a suffix
// that records the original length in runes. Multi-byte characters are never
// split. If maxLen is zero or negative, [DefaultMaxStringLength] is used
// instead.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	total := utf8.RuneCountInString(s)
	if total <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", FirstRunes(s, maxLen), total)
}

// FirstRunes returns the first n runes of s without splitting a multi-byte
// character.
func FirstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for index := range s {
		if count == n {
			return s[:index]
		}
		count++
	}
	return s
}
