package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"
)

// ErrEmptyContent is returned when there is nothing to parse.
var ErrEmptyContent = errors.New("empty content")

// ParseJSONValue returns the generic JSON value (maps, slices, strings,
// float64, bool or nil) embedded in content, after the same fence stripping
// and repair as [ParseLooseAs].
func ParseJSONValue(content string) (any, error) {
	raw, err := repairedJSON(content)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return generic, nil
}

// ParseLooseAs decodes model output into T while tolerating the usual
// deviations: code fences, prose around the JSON object, single quotes,
// trailing commas, and scalar/slice mismatches (a lone string where a list is
// expected becomes a one-element list, numbers become strings).
// Field names are matched through `json` tags.
func ParseLooseAs[T any](content string) (T, error) {
	var result T

	generic, err := ParseJSONValue(content)
	if err != nil {
		return result, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return result, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return result, fmt.Errorf("failed to decode content as %T: %w", result, err)
	}
	return result, nil
}

// repairedJSON strips markdown fences and surrounding prose, then returns the
// content unchanged when it is valid JSON, or repaired by jsonrepair otherwise.
func repairedJSON(content string) (string, error) {
	trimmed := ExtractJSON(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	repaired, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return "", fmt.Errorf("failed to repair JSON: %w", err)
	}
	return repaired, nil
}

// ExtractJSON returns the outermost JSON object or array embedded in content,
// dropping markdown code fences and any leading or trailing prose. When no
// bracket is found the trimmed content is returned unchanged.
func ExtractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
			trimmed = trimmed[newline+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return trimmed
	}
	closing := byte('}')
	if trimmed[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(trimmed, closing)
	if end < start {
		return trimmed[start:]
	}
	return trimmed[start : end+1]
}
