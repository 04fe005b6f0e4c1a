// Package server exposes the content pipeline over HTTP.
//
// Routes:
//
//	POST /generate            run the full pipeline
//	POST /regenerate_visuals  run visuals research only
//	GET  /healthz             liveness
//	GET  /metrics             Prometheus exposition
//
// Request bodies are validated against JSON Schemas; a body that does not
// validate, or names an unknown platform, is answered with 422 and a
// {"detail": ...} object.
package server
