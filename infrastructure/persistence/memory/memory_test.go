package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	"ddd-commerce/infrastructure/persistence/retry"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

func testProduct(t *testing.T, id string) *product.Product {
	t.Helper()
	price, _ := shared.NewPrice(decimal.NewFromInt(10), "USD")
	w, _ := shared.WeightFromInt(2)
	loc, _ := shared.NewLocation(1, 1)
	p, err := product.New(id, "Kettle", price, w, []product.StockSpec{{Location: loc, Quantity: 5}})
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return p
}

func fastRetry() retry.Config {
	cfg := retry.DefaultConfig
	cfg.InitialDelay = time.Millisecond
	return cfg
}

func TestRepositoryStoresSnapshots(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository()
	p := testProduct(t, "p-1")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 未保存的修改不可见
	if err := p.Rename("Teapot"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	stored, _ := repo.FindByID(ctx, "p-1")
	if stored.Name() != "Kettle" {
		t.Errorf("unsaved change leaked into the store: %s", stored.Name())
	}
	if stored == p {
		t.Error("FindByID must not return the caller's pointer")
	}
}

func TestRepositoryVersionCheck(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository()
	if err := repo.Create(ctx, testProduct(t, "p-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := repo.FindByID(ctx, "p-1")
	b, _ := repo.FindByID(ctx, "p-1")
	_ = a.Rename("A")
	_ = b.Rename("B")

	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if a.Version() != 1 {
		t.Errorf("version = %d, want 1", a.Version())
	}
	if err := repo.Update(ctx, b); !errors.Is(err, shared.ErrConcurrentModification) {
		t.Fatalf("expected conflict, got %v", err)
	}
	stored, _ := repo.FindByID(ctx, "p-1")
	if stored.Name() != "A" {
		t.Errorf("stored name = %s, want A", stored.Name())
	}

	if err := repo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Update(ctx, a); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("update after delete should be not found, got %v", err)
	}
	if _, err := repo.FindOne(ctx, product.NewByNameSpecification("A")); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("FindOne on empty repo should be not found, got %v", err)
	}
}

func TestUserEmailIsUnique(t *testing.T) {
	ctx := t.Context()
	repo := NewUserRepository()
	a, _ := user.NewUser("u-1", "A", "a@example.com", "secret123", 20)
	b, _ := user.NewUser("u-2", "B", "A@example.com", "secret123", 20)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, b); !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUnitOfWorkRollsBackEveryWrite(t *testing.T) {
	ctx := t.Context()
	products := NewProductRepository()
	users := NewUserRepository()
	uow := NewUnitOfWork(fastRetry())

	if err := products.Create(ctx, testProduct(t, "p-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := uow.Execute(ctx, func(ctx context.Context) error {
		p, err := products.FindByID(ctx, "p-1")
		if err != nil {
			return err
		}
		_ = p.Rename("Changed")
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		if err := products.Create(ctx, testProduct(t, "p-2")); err != nil {
			return err
		}
		if err := products.Delete(ctx, "p-1"); err != nil {
			return err
		}
		u, _ := user.NewUser("u-1", "A", "a@example.com", "secret123", 20)
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	p, err := products.FindByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("p-1 should be restored: %v", err)
	}
	if p.Name() != "Kettle" || p.Version() != 0 {
		t.Errorf("p-1 = %s v%d, want Kettle v0", p.Name(), p.Version())
	}
	if products.Count() != 1 || users.Count() != 0 {
		t.Errorf("counts after rollback: products=%d users=%d", products.Count(), users.Count())
	}
}

func TestUnitOfWorkSerialisesConcurrentUpdates(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository()
	uow := NewUnitOfWork(fastRetry())
	if err := repo.Create(ctx, testProduct(t, "p-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	loc, _ := shared.NewLocation(1, 1)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- uow.Execute(ctx, func(ctx context.Context) error {
				p, err := repo.FindByID(ctx, "p-1")
				if err != nil {
					return err
				}
				if err := p.IncreaseStock(loc, 1); err != nil {
					return err
				}
				return repo.Update(ctx, p)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Execute: %v", err)
		}
	}

	p, _ := repo.FindByID(ctx, "p-1")
	if p.TotalQuantity() != 5+workers || p.Version() != workers {
		t.Errorf("quantity=%d version=%d, want %d and %d", p.TotalQuantity(), p.Version(), 5+workers, workers)
	}
}

func TestUnitOfWorkSkipsWhenAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	ran := false
	err := NewUnitOfWork(fastRetry()).Execute(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || ran {
		t.Errorf("err=%v ran=%v", err, ran)
	}
}
