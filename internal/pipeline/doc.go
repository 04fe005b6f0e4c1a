// Package pipeline turns one piece of source content into platform-tailored
// posts.
//
// A request flows through a graph built per call:
//
//	understanding -> {adapter.<platform>..., hashtags, visuals} -> optimizer -> scheduler
//
// Every step degrades to a deterministic fallback when its language model or
// search backend fails or the pipeline deadline passes, and records the
// outcome in State.Steps, so a run completes unless the caller cancels it.
package pipeline
