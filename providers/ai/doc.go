// Package ai defines the provider-agnostic chat types used by every language
// model backend. A backend converts [ChatRequest] into its own wire format and
// maps the reply back into [ChatResponse]; nothing above this package knows
// which backend is in use.
package ai
