package cost

import (
	"fmt"
)

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million prompt tokens.
	InputCostPerMillion float64 `yaml:"input_cost_per_million" json:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million completion tokens.
	OutputCostPerMillion float64 `yaml:"output_cost_per_million" json:"output_cost_per_million"`
}

// IsZero reports whether no price is configured.
func (mc ModelCost) IsZero() bool {
	return mc.InputCostPerMillion == 0 && mc.OutputCostPerMillion == 0
}

// Validate rejects negative prices.
func (mc ModelCost) Validate() error {
	if mc.InputCostPerMillion < 0 || mc.OutputCostPerMillion < 0 {
		return fmt.Errorf("model cost must not be negative: %s", mc)
	}
	return nil
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateTotalCost calculates the cost of a prompt/completion token pair.
func (mc ModelCost) CalculateTotalCost(inputTokens, outputTokens int) float64 {
	return mc.CalculateInputCost(inputTokens) + mc.CalculateOutputCost(outputTokens)
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}
