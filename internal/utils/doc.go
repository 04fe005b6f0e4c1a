// Package utils provides shared low-level helpers for the provider and
// pipeline packages: a JSON POST round-trip with span events ([DoPostSync]),
// tolerant decoding of model output ([ParseLooseAs], [ParseJSONValue]),
// rune-safe string helpers for log previews and [Ptr].
package utils
