package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(testCase *testing.T) {
	assert.Equal(testCase, "short", TruncateString("short", 10))
	assert.Equal(testCase, "abc... (truncated, total: 6 chars)", TruncateString("abcdef", 3))

	long := strings.Repeat("x", DefaultMaxStringLength+1)
	assert.Contains(testCase, TruncateString(long, 0), "truncated")
}

func TestTruncateStringKeepsRunesWhole(testCase *testing.T) {
	truncated := TruncateString("café ☕ trending", 4)

	assert.True(testCase, utf8.ValidString(truncated))
	assert.Equal(testCase, "café... (truncated, total: 15 chars)", truncated)
	assert.Equal(testCase, "日本", TruncateString("日本", 2))
}

func TestFirstRunes(testCase *testing.T) {
	assert.Equal(testCase, "héllo", FirstRunes("héllo wörld", 5))
	assert.Equal(testCase, "ab", FirstRunes("ab", 100))
	assert.Equal(testCase, "", FirstRunes("abc", 0))
}

func TestJSONToString(testCase *testing.T) {
	assert.Equal(testCase, `{"a":1}`, JSONToString(map[string]int{"a": 1}))
	assert.Contains(testCase, JSONToString(make(chan int)), "failed to marshal")
}
