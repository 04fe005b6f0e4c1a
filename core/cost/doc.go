// Package cost prices language model token usage.
//
// Prices are expressed in USD per million tokens, the unit providers publish:
//
//	price := cost.ModelCost{InputCostPerMillion: 0.59, OutputCostPerMillion: 0.79}
//	usd := price.CalculateTotalCost(usage.PromptTokens, usage.CompletionTokens)
package cost
