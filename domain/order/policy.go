package order

import (
	"ddd-commerce/domain/shared"

	"github.com/shopspring/decimal"
)

// DefaultMaxWeight weight cap used when no policy is configured
const DefaultMaxWeight = 100

// WeightPolicy the weight caps an order is checked against.
// An order keeps the policy it was created with.
type WeightPolicy struct {
	MaxTotal shared.Weight
	MaxLine  shared.Weight
}

// DefaultWeightPolicy 100 units total, 100 units per line
func DefaultWeightPolicy() WeightPolicy {
	limit, _ := shared.NewWeight(decimal.NewFromInt(DefaultMaxWeight))
	return WeightPolicy{MaxTotal: limit, MaxLine: limit}
}

// NewWeightPolicy both limits must be positive.
func NewWeightPolicy(maxTotal, maxLine decimal.Decimal) (WeightPolicy, error) {
	total, err := shared.NewWeight(maxTotal)
	if err != nil {
		return WeightPolicy{}, err
	}
	line, err := shared.NewWeight(maxLine)
	if err != nil {
		return WeightPolicy{}, err
	}
	policy := WeightPolicy{MaxTotal: total, MaxLine: line}
	if err := policy.validate(); err != nil {
		return WeightPolicy{}, err
	}
	return policy, nil
}

func (p WeightPolicy) validate() error {
	if !p.MaxTotal.IsPositive() || !p.MaxLine.IsPositive() {
		return shared.NewValidationError("order", "weight_policy", "weight limits must be positive")
	}
	return nil
}
