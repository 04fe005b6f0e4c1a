// Package slogobs implements observability.Provider on top of log/slog.
//
// Logs go through a text or JSON handler; spans become a DEBUG record at start
// and end; counters and histograms become DEBUG records carrying the delta and
// running total. Wrap the Observer with promobs when real metrics are needed.
package slogobs
