/*
Package order Order subdomain.

Order is the aggregate root for an order and its line items. All changes to
line items go through Order; every change is applied, re-validated against
the order's weight policy and the other invariants, and rolled back if the
check fails. Callers never see a half-applied change.
*/
package order

import (
	"fmt"
	"strings"
	"time"

	"ddd-commerce/domain/shared"

	"github.com/google/uuid"
)

// Order Order aggregate root
type Order struct {
	id           string
	customerID   string
	items        []LineItem
	policy       WeightPolicy
	status       Status
	cancelReason string
	version      int // Optimistic lock version, advanced by the repository
	createdAt    time.Time
	updatedAt    time.Time
}

// Status Order status enum
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// transitions allowed status moves; CANCELLED is reachable from every non-final state
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
}

// ParseStatus accepts any case.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return status, nil
	}
	return "", shared.NewValidationError("order", "status", "unknown order status: "+s)
}

func (s Status) canTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ============================================================================
// Factory Methods
// ============================================================================

// New Create an Order in PENDING status.
// An order without lines is a valid draft; it only has to be non-empty to be confirmed.
func New(id, customerID string, lines []LineSpec, policy WeightPolicy) (*Order, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	o := &Order{
		id:         strings.TrimSpace(id),
		customerID: strings.TrimSpace(customerID),
		items:      make([]LineItem, 0, len(lines)),
		policy:     policy,
		status:     StatusPending,
	}
	for _, line := range lines {
		item, err := newLineItem(line)
		if err != nil {
			return nil, err
		}
		o.items = append(o.items, item)
	}

	if err := o.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	o.createdAt = now
	o.updatedAt = now
	return o, nil
}

func newLineItem(line LineSpec) (LineItem, error) {
	if line.Quantity <= 0 {
		return LineItem{}, newInvalidQuantityError(line.Quantity)
	}
	if strings.TrimSpace(line.Product.ID) == "" {
		return LineItem{}, shared.NewValidationError("order", "product_id", "line item product id cannot be empty")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to generate line item ID: %w", err)
	}

	return LineItem{
		id:          id.String(),
		productID:   line.Product.ID,
		productName: line.Product.Name,
		unitWeight:  line.Product.Weight,
		unitPrice:   line.Product.Price,
		quantity:    line.Quantity,
	}, nil
}

// ============================================================================
// Invariants
// ============================================================================

// validate checks every aggregate-level invariant against the current state.
func (o *Order) validate() error {
	if o.id == "" {
		return newInvalidOrderError("id")
	}
	if o.customerID == "" {
		return newInvalidOrderError("customer")
	}

	total := shared.Weight{}
	seen := make(map[string]struct{}, len(o.items))
	currency := ""
	for _, item := range o.items {
		if item.quantity <= 0 {
			return newInvalidQuantityError(item.quantity)
		}
		if _, dup := seen[item.productID]; dup {
			return newDuplicateLineItemError(item.productID)
		}
		seen[item.productID] = struct{}{}

		if currency == "" {
			currency = item.unitPrice.Currency()
		} else if item.unitPrice.Currency() != currency {
			return newCurrencyMismatchError(currency, item.unitPrice.Currency())
		}

		weight := item.Weight()
		if weight.GreaterThan(o.policy.MaxLine) {
			return newLineWeightLimitError(item.productID, weight, o.policy.MaxLine)
		}
		total = total.Add(weight)
	}

	if total.GreaterThan(o.policy.MaxTotal) {
		return newWeightLimitError(total, o.policy.MaxTotal)
	}
	return nil
}

// mutate applies change to the line items, re-validates, and restores the
// previous items when either step fails.
func (o *Order) mutate(change func() error) error {
	if o.status != StatusPending {
		return newCannotModifyError(o.id, o.status)
	}

	before := make([]LineItem, len(o.items))
	copy(before, o.items)

	if err := change(); err != nil {
		o.items = before
		return err
	}
	if err := o.validate(); err != nil {
		o.items = before
		return err
	}
	o.updatedAt = time.Now()
	return nil
}

func (o *Order) indexOf(productID string) int {
	for i, item := range o.items {
		if item.productID == productID {
			return i
		}
	}
	return -1
}

// ============================================================================
// Line item behavior
// ============================================================================

// AddLineItem appends a line for a product not yet in the order.
func (o *Order) AddLineItem(ref ProductRef, quantity int) error {
	return o.mutate(func() error {
		item, err := newLineItem(LineSpec{Product: ref, Quantity: quantity})
		if err != nil {
			return err
		}
		o.items = append(o.items, item)
		return nil
	})
}

// RemoveLineItem removes the line for productID.
func (o *Order) RemoveLineItem(productID string) error {
	return o.mutate(func() error {
		i := o.indexOf(productID)
		if i < 0 {
			return newLineItemNotFoundError(productID)
		}
		o.items = append(o.items[:i:i], o.items[i+1:]...)
		return nil
	})
}

// ChangeLineItemQuantity sets a new quantity on an existing line.
func (o *Order) ChangeLineItemQuantity(productID string, quantity int) error {
	return o.mutate(func() error {
		if quantity <= 0 {
			return newInvalidQuantityError(quantity)
		}
		i := o.indexOf(productID)
		if i < 0 {
			return newLineItemNotFoundError(productID)
		}
		o.items[i].quantity = quantity
		return nil
	})
}

// TotalWeight sum of line weights
func (o *Order) TotalWeight() shared.Weight {
	total := shared.Weight{}
	for _, item := range o.items {
		total = total.Add(item.Weight())
	}
	return total
}

// TotalPrice sum of line subtotals; zero Money with no currency for an empty order.
func (o *Order) TotalPrice() shared.Money {
	if len(o.items) == 0 {
		return shared.Money{}
	}
	total := o.items[0].Subtotal()
	for _, item := range o.items[1:] {
		if sum, err := total.Add(item.Subtotal()); err == nil {
			total = sum
		}
	}
	return total
}

// Currency of the order's lines, empty when there are none
func (o *Order) Currency() string {
	if len(o.items) == 0 {
		return ""
	}
	return o.items[0].unitPrice.Currency()
}

// ============================================================================
// State Change Methods
// ============================================================================

func (o *Order) transition(target Status) error {
	if !o.status.canTransitionTo(target) {
		return NewInvalidOrderStateError(o.status, target)
	}
	o.status = target
	o.updatedAt = time.Now()
	return nil
}

// Confirm PENDING -> CONFIRMED; the order must have at least one line.
func (o *Order) Confirm() error {
	if o.status == StatusPending && len(o.items) == 0 {
		return newCannotConfirmEmptyOrderError(o.id)
	}
	return o.transition(StatusConfirmed)
}

// Ship CONFIRMED -> SHIPPED
func (o *Order) Ship() error {
	return o.transition(StatusShipped)
}

// Deliver SHIPPED -> DELIVERED
func (o *Order) Deliver() error {
	return o.transition(StatusDelivered)
}

// Cancel Delivered or cancelled orders cannot be cancelled.
func (o *Order) Cancel(reason string) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	o.cancelReason = reason
	return nil
}

// TransitionTo dispatches to the method for target. Moving to the current
// status is a no-op.
func (o *Order) TransitionTo(target Status, reason string) error {
	if target == o.status {
		return nil
	}
	switch target {
	case StatusConfirmed:
		return o.Confirm()
	case StatusShipped:
		return o.Ship()
	case StatusDelivered:
		return o.Deliver()
	case StatusCancelled:
		return o.Cancel(reason)
	default:
		return NewInvalidOrderStateError(o.status, target)
	}
}

// IncrementVersionForSave is called by the repository after a successful write.
func (o *Order) IncrementVersionForSave() {
	o.version++
}

// ============================================================================
// Getters - Read-only Accessors
// ============================================================================

func (o *Order) ID() string           { return o.id }
func (o *Order) CustomerID() string   { return o.customerID }
func (o *Order) Policy() WeightPolicy { return o.policy }
func (o *Order) Status() Status       { return o.status }
func (o *Order) CancelReason() string { return o.cancelReason }
func (o *Order) Version() int         { return o.version }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// Items Return copy of line items
func (o *Order) Items() []LineItem {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	return items
}

// ============================================================================
// ReconstructionDTO - For Repository Layer Use Only
// ============================================================================

// ReconstructionDTO ⚠️ Note: This DTO should only be used in repository implementation
type ReconstructionDTO struct {
	ID           string
	CustomerID   string
	Items        []LineItemReconstructionDTO
	Policy       WeightPolicy
	Status       Status
	CancelReason string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot exports the aggregate state for storage.
func (o *Order) Snapshot() ReconstructionDTO {
	items := make([]LineItemReconstructionDTO, len(o.items))
	for i, item := range o.items {
		items[i] = item.snapshot()
	}
	return ReconstructionDTO{
		ID:           o.id,
		CustomerID:   o.customerID,
		Items:        items,
		Policy:       o.policy,
		Status:       o.status,
		CancelReason: o.cancelReason,
		Version:      o.version,
		CreatedAt:    o.createdAt,
		UpdatedAt:    o.updatedAt,
	}
}

// RebuildFromDTO Reconstruct Order aggregate root from DTO
func RebuildFromDTO(dto ReconstructionDTO) *Order {
	items := make([]LineItem, len(dto.Items))
	for i, item := range dto.Items {
		items[i] = rebuildLineItem(item)
	}
	return &Order{
		id:           dto.ID,
		customerID:   dto.CustomerID,
		items:        items,
		policy:       dto.Policy,
		status:       dto.Status,
		cancelReason: dto.CancelReason,
		version:      dto.Version,
		createdAt:    dto.CreatedAt,
		updatedAt:    dto.UpdatedAt,
	}
}

// Compile-time check that Order implements AggregateRoot interface
var _ shared.AggregateRoot = (*Order)(nil)
