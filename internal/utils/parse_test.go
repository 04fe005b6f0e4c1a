package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analysis struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
	Score    string   `json:"score"`
}

func TestParseJSONValueRepairs(testCase *testing.T) {
	value, err := ParseJSONValue("```json\n{topic: 'eco', keywords: ['a',],}\n```")
	require.NoError(testCase, err)
	assert.Equal(testCase, map[string]any{"topic": "eco", "keywords": []any{"a"}}, value)

	_, err = ParseJSONValue("  ")
	assert.ErrorIs(testCase, err, ErrEmptyContent)
}

func TestParseLooseAsStripsFencesAndProse(testCase *testing.T) {
	content := "Here you go:\n```json\n{\"topic\": \"bottles\", \"keywords\": [\"eco\", \"reuse\"], \"score\": 7}\n```\nEnjoy!"

	parsed, err := ParseLooseAs[analysis](content)
	require.NoError(testCase, err)
	assert.Equal(testCase, "bottles", parsed.Topic)
	assert.Equal(testCase, []string{"eco", "reuse"}, parsed.Keywords)
	assert.Equal(testCase, "7", parsed.Score)
}

func TestParseLooseAsWeakSlice(testCase *testing.T) {
	parsed, err := ParseLooseAs[analysis](`{"topic": "t", "keywords": "solo"}`)
	require.NoError(testCase, err)
	assert.Equal(testCase, []string{"solo"}, parsed.Keywords)
}

func TestParseLooseAsMapOfLists(testCase *testing.T) {
	parsed, err := ParseLooseAs[map[string][]string](`{"twitter": ["#a", "#b"], "blog": []}`)
	require.NoError(testCase, err)
	assert.Equal(testCase, []string{"#a", "#b"}, parsed["twitter"])
	assert.Empty(testCase, parsed["blog"])
}

func TestParseLooseAsEmpty(testCase *testing.T) {
	_, err := ParseLooseAs[analysis]("   ")
	assert.True(testCase, errors.Is(err, ErrEmptyContent))
}

func TestExtractJSON(testCase *testing.T) {
	assert.Equal(testCase, `{"a":1}`, ExtractJSON("noise {\"a\":1} trailing"))
	assert.Equal(testCase, `[1,2]`, ExtractJSON("```\n[1,2]\n```"))
	assert.Equal(testCase, "plain", ExtractJSON("  plain "))
}
