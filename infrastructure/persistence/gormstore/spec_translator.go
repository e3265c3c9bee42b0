package gormstore

import (
	"strings"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"

	"gorm.io/gorm"
)

// Expr a WHERE fragment with its bind arguments
type Expr struct {
	SQL  string
	Args []any
}

// SpecTranslator converts domain specifications to WHERE clauses.
// And/Or/Not are handled here; leaf specifications by the concrete func.
// ok=false means some leaf has no SQL form and the caller must filter in memory.
type SpecTranslator[T any] struct {
	concrete func(spec shared.Specification[T]) (Expr, bool)
}

func (t SpecTranslator[T]) Translate(spec shared.Specification[T]) (Expr, bool) {
	switch s := spec.(type) {
	case shared.AndSpecification[T]:
		return t.binary("AND", s.Left, s.Right)
	case shared.OrSpecification[T]:
		return t.binary("OR", s.Left, s.Right)
	case shared.NotSpecification[T]:
		inner, ok := t.Translate(s.Spec)
		if !ok {
			return Expr{}, false
		}
		return Expr{SQL: "NOT (" + inner.SQL + ")", Args: inner.Args}, true
	}
	return t.concrete(spec)
}

func (t SpecTranslator[T]) binary(op string, left, right shared.Specification[T]) (Expr, bool) {
	l, ok := t.Translate(left)
	if !ok {
		return Expr{}, false
	}
	r, ok := t.Translate(right)
	if !ok {
		return Expr{}, false
	}
	args := make([]any, 0, len(l.Args)+len(r.Args))
	args = append(args, l.Args...)
	args = append(args, r.Args...)
	return Expr{SQL: "(" + l.SQL + ") " + op + " (" + r.SQL + ")", Args: args}, true
}

// Scope returns a GORM scope for spec. A nil spec matches everything.
func (t SpecTranslator[T]) Scope(spec shared.Specification[T]) (func(*gorm.DB) *gorm.DB, bool) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, true
	}
	expr, ok := t.Translate(spec)
	if !ok {
		return nil, false
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(expr.SQL, expr.Args...)
	}, true
}

var matchAll = Expr{SQL: "1 = 1"}

var ProductSpecs = SpecTranslator[*product.Product]{concrete: translateProductSpec}

func translateProductSpec(spec shared.Specification[*product.Product]) (Expr, bool) {
	switch s := spec.(type) {
	case product.ByNameSpecification:
		return Expr{SQL: "name = ?", Args: []any{strings.TrimSpace(s.Name)}}, true
	case product.ByNameContainsSpecification:
		return Expr{SQL: "LOWER(name) LIKE ?", Args: []any{"%" + strings.ToLower(s.Fragment) + "%"}}, true
	case product.InStockSpecification:
		// quantity 非负，存在正库存即总量 > 0
		return Expr{SQL: "EXISTS (SELECT 1 FROM product_stocks ps WHERE ps.product_id = products.id AND ps.quantity > 0)"}, true
	case product.PriceAtMostSpecification:
		return Expr{
			SQL:  "price_currency = ? AND price_amount <= ?",
			Args: []any{strings.ToUpper(s.Currency), s.Amount},
		}, true
	}
	return Expr{}, false
}

var OrderSpecs = SpecTranslator[*order.Order]{concrete: translateOrderSpec}

func translateOrderSpec(spec shared.Specification[*order.Order]) (Expr, bool) {
	switch s := spec.(type) {
	case order.ByCustomerSpecification:
		return Expr{SQL: "customer_id = ?", Args: []any{s.CustomerID}}, true
	case order.ByStatusSpecification:
		return Expr{SQL: "status = ?", Args: []any{string(s.Status)}}, true
	case order.ByDateRangeSpecification:
		switch {
		case !s.Start.IsZero() && !s.End.IsZero():
			return Expr{SQL: "created_at >= ? AND created_at <= ?", Args: []any{s.Start, s.End}}, true
		case !s.Start.IsZero():
			return Expr{SQL: "created_at >= ?", Args: []any{s.Start}}, true
		case !s.End.IsZero():
			return Expr{SQL: "created_at <= ?", Args: []any{s.End}}, true
		}
		return matchAll, true
	}
	return Expr{}, false
}

var UserSpecs = SpecTranslator[*user.User]{concrete: translateUserSpec}

func translateUserSpec(spec shared.Specification[*user.User]) (Expr, bool) {
	switch s := spec.(type) {
	case user.ByEmailSpecification:
		return Expr{SQL: "email = ?", Args: []any{strings.ToLower(strings.TrimSpace(s.Email))}}, true
	case user.ByStatusSpecification:
		return Expr{SQL: "is_active = ?", Args: []any{s.Active}}, true
	case user.ByAgeRangeSpecification:
		switch {
		case s.Min > 0 && s.Max > 0:
			return Expr{SQL: "age >= ? AND age <= ?", Args: []any{s.Min, s.Max}}, true
		case s.Min > 0:
			return Expr{SQL: "age >= ?", Args: []any{s.Min}}, true
		case s.Max > 0:
			return Expr{SQL: "age <= ?", Args: []any{s.Max}}, true
		}
		return matchAll, true
	}
	return Expr{}, false
}
