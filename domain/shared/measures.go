package shared

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Weight value object, non-negative, in abstract weight units.
type Weight struct {
	value decimal.Decimal
}

func NewWeight(value decimal.Decimal) (Weight, error) {
	if value.IsNegative() {
		return Weight{}, NewValidationError("weight", "value", "weight must not be negative")
	}
	return Weight{value: value}, nil
}

// WeightFromInt shorthand for whole units.
func WeightFromInt(units int64) (Weight, error) {
	return NewWeight(decimal.NewFromInt(units))
}

func (w Weight) Value() decimal.Decimal { return w.value }
func (w Weight) IsZero() bool           { return w.value.IsZero() }
func (w Weight) IsPositive() bool       { return w.value.IsPositive() }

func (w Weight) Add(other Weight) Weight {
	return Weight{value: w.value.Add(other.value)}
}

// Multiply scales by a non-negative quantity.
func (w Weight) Multiply(qty int) (Weight, error) {
	if qty < 0 {
		return Weight{}, NewValidationError("weight", "quantity", "quantity must not be negative")
	}
	return Weight{value: w.value.Mul(decimal.NewFromInt(int64(qty)))}, nil
}

func (w Weight) GreaterThan(other Weight) bool { return w.value.GreaterThan(other.value) }
func (w Weight) Equals(other Weight) bool      { return w.value.Equal(other.value) }
func (w Weight) String() string                { return w.value.String() }

// Location value object: a point on the globe.
type Location struct {
	longitude float64
	latitude  float64
}

func NewLocation(longitude, latitude float64) (Location, error) {
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return Location{}, NewValidationError("location", "longitude",
			fmt.Sprintf("longitude must be within [-180, 180], got %v", longitude))
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return Location{}, NewValidationError("location", "latitude",
			fmt.Sprintf("latitude must be within [-90, 90], got %v", latitude))
	}
	return Location{longitude: longitude, latitude: latitude}, nil
}

func (l Location) Longitude() float64 { return l.longitude }
func (l Location) Latitude() float64  { return l.latitude }

// Key canonical form used for uniqueness checks and storage.
func (l Location) Key() string {
	return fmt.Sprintf("%.6f,%.6f", l.longitude, l.latitude)
}

func (l Location) Equals(other Location) bool {
	return l.Key() == other.Key()
}

func (l Location) String() string { return l.Key() }
