package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelCostCalculations(testCase *testing.T) {
	price := ModelCost{InputCostPerMillion: 0.59, OutputCostPerMillion: 0.79}

	assert.InDelta(testCase, 0.59, price.CalculateInputCost(1_000_000), 1e-9)
	assert.InDelta(testCase, 0.00079, price.CalculateOutputCost(1_000), 1e-9)
	assert.InDelta(testCase, 0.000059+0.000079, price.CalculateTotalCost(100, 100), 1e-12)
	assert.Zero(testCase, ModelCost{}.CalculateTotalCost(5_000, 5_000))
}

func TestModelCostIsZeroAndValidate(testCase *testing.T) {
	assert.True(testCase, ModelCost{}.IsZero())
	assert.False(testCase, ModelCost{OutputCostPerMillion: 1}.IsZero())

	assert.NoError(testCase, ModelCost{InputCostPerMillion: 1}.Validate())
	assert.Error(testCase, ModelCost{InputCostPerMillion: -1}.Validate())
}

func TestModelCostString(testCase *testing.T) {
	price := ModelCost{InputCostPerMillion: 2.5, OutputCostPerMillion: 10}
	assert.Equal(testCase, "Input: $2.500000/M, Output: $10.000000/M", price.String())
}
