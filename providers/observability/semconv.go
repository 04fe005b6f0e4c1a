package observability

// Semantic conventions shared by log records, span attributes and metric
// labels. Metric names use dots; promobs rewrites them for Prometheus.

// --- Generic ---

const (
	AttrError     = "error"
	AttrStatus    = "status"
	AttrDuration  = "duration"
	AttrRequestID = "request.id"
)

// --- LLM ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrLLMTemperature  = "llm.temperature"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- token counts, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- token counts, not credentials
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- token counts, not credentials
	AttrLLMCalls            = "llm.calls"
	AttrLLMCostUSD          = "llm.cost_usd"

	SpanLLMSend       = "llm.send"
	MetricLLMRequests = "viralflow.llm.requests"
	MetricLLMDuration = "viralflow.llm.duration"
)

// --- HTTP client ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Search ---

const (
	AttrSearchProvider = "search.provider"
	AttrSearchQuery    = "search.query"
	AttrSearchResults  = "search.results"

	MetricSearchRequests = "viralflow.search.requests"
)

// --- Pipeline ---

const (
	AttrStep       = "pipeline.step"
	AttrStepStatus = "pipeline.step.status"
	AttrPlatform   = "pipeline.platform"
	AttrPlatforms  = "pipeline.platforms"

	MetricStepOutcome = "viralflow.pipeline.step.outcome"
	MetricRequests    = "viralflow.pipeline.requests"
	MetricDuration    = "viralflow.pipeline.duration"
)
