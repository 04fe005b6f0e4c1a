// Package openai implements ai.Provider for OpenAI-compatible chat completions
// endpoints. The default base URL points at Groq, which serves the
// llama-3.3-70b-versatile model behind the same wire format; any other
// compatible endpoint can be selected with WithBaseURL.
package openai
