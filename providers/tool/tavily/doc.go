// Package tavily is a client for the Tavily search API, which returns web
// results already trimmed into snippets suitable for prompt context.
//
// A [Client] is safe for concurrent use. The API key is passed to [New]
// rather than read from the environment, so tests and callers decide where
// it comes from.
package tavily
