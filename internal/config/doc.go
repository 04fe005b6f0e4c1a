// Package config loads ViralFlow settings. Values are layered: built-in
// defaults, then an optional YAML file, then the process environment
// (after a local .env file has been merged into it).
package config
