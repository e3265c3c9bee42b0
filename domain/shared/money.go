package shared

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultCurrencies is the allowed currency set used until SetAllowedCurrencies is called.
var DefaultCurrencies = []string{"USD", "EUR", "UAH", "PLN"}

var (
	currencyMu        sync.RWMutex
	allowedCurrencies = toCurrencySet(DefaultCurrencies)
)

func toCurrencySet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// SetAllowedCurrencies replaces the allowed currency set. Called once at startup from config.
func SetAllowedCurrencies(codes []string) {
	set := toCurrencySet(codes)
	currencyMu.Lock()
	allowedCurrencies = set
	currencyMu.Unlock()
}

// AllowedCurrencies returns the allowed currency codes, sorted.
func AllowedCurrencies() []string {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	codes := make([]string, 0, len(allowedCurrencies))
	for c := range allowedCurrencies {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func isAllowedCurrency(code string) bool {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	_, ok := allowedCurrencies[code]
	return ok
}

// Money value object: non-negative amount in an allowed currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates and normalizes (currency upper-cased) the input.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !isAllowedCurrency(currency) {
		return Money{}, NewValidationError("money", "currency", "unsupported currency: "+currency)
	}
	if amount.IsNegative() {
		return Money{}, NewValidationError("money", "amount", "amount must not be negative")
	}
	return Money{amount: amount, currency: currency}, nil
}

// ParseMoney is NewMoney for a decimal string amount.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, NewValidationError("money", "amount", "amount is not a number: "+amount)
	}
	return NewMoney(d, currency)
}

// ZeroMoney returns 0 in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

// Add returns a new Money with the summed amount.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, NewValidationError("money", "currency",
			"cannot add "+other.currency+" to "+m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money; it never goes below zero.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, NewValidationError("money", "currency",
			"cannot subtract "+other.currency+" from "+m.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, NewValidationError("money", "amount",
			"subtraction would result in negative amount: "+m.String()+" - "+other.String())
	}
	return Money{amount: result, currency: m.currency}, nil
}

// Multiply scales the amount by a non-negative factor.
func (m Money) Multiply(factor int) (Money, error) {
	if factor < 0 {
		return Money{}, NewValidationError("money", "factor", "factor must not be negative")
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(factor))), currency: m.currency}, nil
}

func (m Money) GreaterThan(other Money) bool {
	return m.currency == other.currency && m.amount.GreaterThan(other.amount)
}

// Equals compares amount by value (1.0 == 1) and currency.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// Price is the catalog price of a product.
type Price struct {
	money Money
}

// NewPrice builds a price; same rules as Money.
func NewPrice(amount decimal.Decimal, currency string) (Price, error) {
	m, err := NewMoney(amount, currency)
	if err != nil {
		return Price{}, err
	}
	return Price{money: m}, nil
}

// PriceFromMoney wraps an already valid Money.
func PriceFromMoney(m Money) Price { return Price{money: m} }

func (p Price) Money() Money            { return p.money }
func (p Price) Amount() decimal.Decimal { return p.money.amount }
func (p Price) Currency() string        { return p.money.currency }
func (p Price) Equals(other Price) bool { return p.money.Equals(other.money) }
func (p Price) String() string          { return p.money.String() }

// Times is the price of qty units.
func (p Price) Times(qty int) (Money, error) {
	return p.money.Multiply(qty)
}
