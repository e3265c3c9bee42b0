package order

import (
	"errors"
	"testing"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	"ddd-commerce/infrastructure/persistence"
	"ddd-commerce/infrastructure/persistence/memory"
	"ddd-commerce/infrastructure/persistence/retry"
	apperrors "ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

type fixture struct {
	service  *ApplicationService
	orders   *memory.OrderRepository
	products *memory.ProductRepository
	users    *memory.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:   memory.NewOrderRepository(),
		products: memory.NewProductRepository(),
		users:    memory.NewUserRepository(),
	}
	f.service = NewApplicationService(f.orders, f.products, f.users, order.DefaultWeightPolicy(), memory.NewUnitOfWork(retry.DefaultConfig))

	f.addUser(t, "adult", 30)
	f.addUser(t, "minor", 16)
	f.addProduct(t, "p-60", 60, "10")
	f.addProduct(t, "p-50", 50, "20")
	f.addProduct(t, "p-5", 5, "1.5")
	return f
}

func (f *fixture) addUser(t *testing.T, id string, age int) {
	t.Helper()
	u, err := user.NewUser(id, "User "+id, id+"@example.com", "secret123", age)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := f.users.Create(t.Context(), u); err != nil {
		t.Fatalf("users.Create: %v", err)
	}
}

func (f *fixture) addProduct(t *testing.T, id string, unitWeight int64, amount string) {
	t.Helper()
	price, _ := shared.NewPrice(decimal.RequireFromString(amount), "USD")
	w, _ := shared.WeightFromInt(unitWeight)
	loc, _ := shared.NewLocation(0, 0)
	p, err := product.New(id, "Product "+id, price, w, []product.StockSpec{{Location: loc, Quantity: 100}})
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	if err := f.products.Create(t.Context(), p); err != nil {
		t.Fatalf("products.Create: %v", err)
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	resp, err := f.service.PlaceOrder(t.Context(), PlaceOrderRequest{
		CustomerID: "adult",
		Items:      []LineItemRequest{{ProductID: "p-60", Quantity: 1}, {ProductID: "p-5", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if resp.Status != "PENDING" || len(resp.Items) != 2 {
		t.Errorf("unexpected order: %+v", resp)
	}
	if !resp.TotalWeight.Equal(decimal.NewFromInt(75)) {
		t.Errorf("TotalWeight = %s, want 75", resp.TotalWeight)
	}
	if resp.TotalPrice == nil || !resp.TotalPrice.Amount.Equal(decimal.RequireFromString("14.5")) {
		t.Errorf("TotalPrice = %+v, want 14.5", resp.TotalPrice)
	}

	draft, err := f.service.PlaceOrder(t.Context(), PlaceOrderRequest{CustomerID: "adult"})
	if err != nil {
		t.Fatalf("empty draft order: %v", err)
	}
	if draft.TotalPrice != nil {
		t.Error("empty order should not report a total price")
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      PlaceOrderRequest
		kind     apperrors.Kind
		sentinel error
	}{
		{"minor", PlaceOrderRequest{CustomerID: "minor"}, apperrors.KindDomain, order.ErrUserCannotPlaceOrder},
		{"unknown customer", PlaceOrderRequest{CustomerID: "ghost"}, apperrors.KindNotFound, shared.ErrNotFound},
		{"unknown product", PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "nope", Quantity: 1}}}, apperrors.KindNotFound, shared.ErrNotFound},
		{"over weight", PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-60", Quantity: 1}, {ProductID: "p-50", Quantity: 1}}}, apperrors.KindDomain, order.ErrWeightLimitExceeded},
		{"zero quantity", PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-5", Quantity: 0}}}, apperrors.KindValidation, order.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.PlaceOrder(t.Context(), tt.req)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if got := apperrors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %s, want %s", got, tt.kind)
			}
			if f.orders.Count() != 0 {
				t.Error("rejected order was stored")
			}
		})
	}
}

func TestAddLineItemOverLimitLeavesStoredOrderUnchanged(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	placed, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-60", Quantity: 1}}})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	_, err = f.service.AddLineItem(ctx, placed.ID, LineItemRequest{ProductID: "p-50", Quantity: 1})
	if !errors.Is(err, order.ErrWeightLimitExceeded) {
		t.Fatalf("expected ErrWeightLimitExceeded, got %v", err)
	}
	if code := apperrors.Classify(err).Code; code != "ORDER_MAX_TOTAL_WEIGHT" {
		t.Errorf("code = %s", code)
	}

	stored, err := f.service.GetOrder(ctx, placed.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(stored.Items) != 1 || stored.Version != 0 || !stored.TotalWeight.Equal(decimal.NewFromInt(60)) {
		t.Errorf("stored order changed: %+v", stored)
	}
}

func TestLineItemUseCases(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	placed, _ := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult"})

	resp, err := f.service.AddLineItem(ctx, placed.ID, LineItemRequest{ProductID: "p-5", Quantity: 2})
	if err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if !resp.TotalWeight.Equal(decimal.NewFromInt(10)) {
		t.Errorf("TotalWeight = %s", resp.TotalWeight)
	}

	resp, err = f.service.ChangeLineItemQuantity(ctx, placed.ID, "p-5", ChangeQuantityRequest{Quantity: 20})
	if err != nil || !resp.TotalWeight.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("ChangeLineItemQuantity to the limit: %+v, %v", resp, err)
	}
	if _, err := f.service.ChangeLineItemQuantity(ctx, placed.ID, "p-5", ChangeQuantityRequest{Quantity: 21}); !errors.Is(err, order.ErrWeightLimitExceeded) {
		t.Errorf("over the limit: %v", err)
	}

	resp, err = f.service.RemoveLineItem(ctx, placed.ID, "p-5")
	if err != nil || len(resp.Items) != 0 {
		t.Fatalf("RemoveLineItem: %+v, %v", resp, err)
	}
	if _, err := f.service.RemoveLineItem(ctx, placed.ID, "p-5"); !errors.Is(err, order.ErrLineItemNotFound) {
		t.Errorf("removing a missing line: %v", err)
	}
	if _, err := f.service.AddLineItem(ctx, "missing", LineItemRequest{ProductID: "p-5", Quantity: 1}); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("missing order kind = %s", apperrors.KindOf(err))
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	placed, _ := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-5", Quantity: 1}}})
	empty, _ := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult"})

	if _, err := f.service.UpdateStatus(ctx, empty.ID, UpdateOrderStatusRequest{Status: "confirmed"}); !errors.Is(err, order.ErrCannotConfirmEmptyOrder) {
		t.Errorf("confirming an empty order: %v", err)
	}
	if _, err := f.service.UpdateStatus(ctx, placed.ID, UpdateOrderStatusRequest{Status: "LOST"}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("unknown status kind = %s", apperrors.KindOf(err))
	}
	if _, err := f.service.UpdateStatus(ctx, placed.ID, UpdateOrderStatusRequest{Status: "SHIPPED"}); !errors.Is(err, order.ErrInvalidOrderStateTransition) {
		t.Errorf("skipping CONFIRMED: %v", err)
	}

	resp, err := f.service.UpdateStatus(ctx, placed.ID, UpdateOrderStatusRequest{Status: "CONFIRMED"})
	if err != nil || resp.Status != "CONFIRMED" {
		t.Fatalf("confirm: %+v, %v", resp, err)
	}
	if _, err := f.service.AddLineItem(ctx, placed.ID, LineItemRequest{ProductID: "p-60", Quantity: 1}); !errors.Is(err, order.ErrCannotModifyNonPendingOrder) {
		t.Errorf("modifying a confirmed order: %v", err)
	}

	resp, err = f.service.UpdateStatus(ctx, placed.ID, UpdateOrderStatusRequest{Status: "CANCELLED", Reason: "changed mind"})
	if err != nil || resp.Status != "CANCELLED" || resp.CancelReason != "changed mind" {
		t.Fatalf("cancel: %+v, %v", resp, err)
	}

	cancelled, err := f.service.ListOrders(ctx, ListOrdersQuery{CustomerID: "adult", Status: "cancelled"})
	if err != nil || len(cancelled) != 1 || cancelled[0].ID != placed.ID {
		t.Errorf("ListOrders cancelled = %v, %v", cancelled, err)
	}
	all, _ := f.service.ListOrders(ctx, ListOrdersQuery{})
	if len(all) != 2 {
		t.Errorf("ListOrders all = %d", len(all))
	}
}

func TestConfirmRechecksCustomer(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	placed, _ := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-5", Quantity: 1}}})

	u, _ := f.users.FindByID(ctx, "adult")
	u.Deactivate()
	if err := f.users.Update(ctx, u); err != nil {
		t.Fatalf("users.Update: %v", err)
	}

	_, err := f.service.UpdateStatus(ctx, placed.ID, UpdateOrderStatusRequest{Status: "CONFIRMED"})
	if !errors.Is(err, order.ErrUserCannotPlaceOrder) || !errors.Is(err, user.ErrUserNotActive) {
		t.Errorf("expected inactive customer rejection, got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	placed, _ := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult"})
	if err := f.service.DeleteOrder(ctx, placed.ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if err := f.service.DeleteOrder(ctx, placed.ID); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("second delete kind = %s", apperrors.KindOf(err))
	}
}

func TestUseCaseLogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })

	f := newFixture(t)
	ctx := persistence.ContextWithRequestID(t.Context(), "req-order")

	placed, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{CustomerID: "adult", Items: []LineItemRequest{{ProductID: "p-60", Quantity: 1}}})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if _, err := f.service.AddLineItem(ctx, placed.ID, LineItemRequest{ProductID: "p-50", Quantity: 1}); err == nil {
		t.Fatal("expected weight limit error")
	}

	for _, msg := range []string{"Order placed", "Unit of work rolled back"} {
		entries := logs.FilterMessage(msg).All()
		if len(entries) != 1 {
			t.Fatalf("%q: got %d entries", msg, len(entries))
		}
		if got := entries[0].ContextMap()[logger.RequestIDField]; got != "req-order" {
			t.Errorf("%q: request_id = %v", msg, got)
		}
	}
	if got := logs.FilterMessage("Order placed").All()[0].ContextMap()["order_id"]; got != placed.ID {
		t.Errorf("order_id = %v, want %s", got, placed.ID)
	}
}
