// Package eino adapts a CloudWeGo Eino chat model to ai.Provider.
//
// New builds the OpenAI-compatible model from eino-ext, so the same Groq
// endpoint used by the plain HTTP backend can be driven through Eino's
// component layer. JSON mode is requested through the prompt only: Eino fixes
// the response format when the model is built, not per call.
package eino
