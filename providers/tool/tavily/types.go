package tavily

// Search depths accepted by the API. Basic costs one credit, advanced two.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// SearchInput represents the input parameters for Tavily Search.
// Query is required; all other fields are optional.
type SearchInput struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
	Topic          string   `json:"topic,omitempty"`
}

// SearchOutput is a search result shaped for prompt context: the query, an
// optional answer, a numbered plain-text summary, and the structured results.
type SearchOutput struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Summary string         `json:"summary"`
	Results []SearchResult `json:"results"`
}

// SearchResult represents a single search result from a Tavily search query.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// searchRequest is the wire body of POST /search.
type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
	Topic          string   `json:"topic,omitempty"`
}

// searchResponse represents the raw API response from Tavily Search
type searchResponse struct {
	Query        string             `json:"query"`
	Answer       string             `json:"answer,omitempty"`
	Results      []searchResultItem `json:"results"`
	ResponseTime float64            `json:"response_time"`
}

type searchResultItem struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// apiError represents an error response from Tavily API
type apiError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}
