package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Platform is a publishing target.
type Platform string

const (
	Twitter   Platform = "twitter"
	Instagram Platform = "instagram"
	LinkedIn  Platform = "linkedin"
	YouTube   Platform = "youtube"
	Blog      Platform = "blog"
)

// AllPlatforms lists every supported platform in canonical order.
var AllPlatforms = []Platform{Twitter, Instagram, LinkedIn, YouTube, Blog}

var (
	// ErrUnknownPlatform is returned by ParsePlatforms for an unsupported name.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrNoPlatforms is returned by ParsePlatforms for an empty selection.
	ErrNoPlatforms = errors.New("at least one platform is required")
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case Twitter, Instagram, LinkedIn, YouTube, Blog:
		return true
	}
	return false
}

// ParsePlatforms lower-cases and trims names, drops duplicates while keeping
// the first-seen order, and rejects unknown names and empty selections.
func ParsePlatforms(names []string) ([]Platform, error) {
	platforms := make([]Platform, 0, len(names))
	seen := make(map[Platform]bool, len(names))

	for _, name := range names {
		platform := Platform(strings.ToLower(strings.TrimSpace(name)))
		if !platform.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
		}
		if seen[platform] {
			continue
		}
		seen[platform] = true
		platforms = append(platforms, platform)
	}

	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}
	return platforms, nil
}

func platformNames(platforms []Platform) []string {
	names := make([]string, len(platforms))
	for index, platform := range platforms {
		names[index] = string(platform)
	}
	return names
}
