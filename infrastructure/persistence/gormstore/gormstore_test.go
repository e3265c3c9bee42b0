package gormstore

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ddd-commerce/config"
	"ddd-commerce/domain/order"
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	"ddd-commerce/infrastructure/persistence/retry"
	apperrors "ddd-commerce/pkg/errors"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func testProduct(t *testing.T, id, name, amount string, unitWeight int64, stocks ...product.StockSpec) *product.Product {
	t.Helper()
	price, err := shared.NewPrice(decimal.RequireFromString(amount), "USD")
	if err != nil {
		t.Fatalf("NewPrice: %v", err)
	}
	w, err := shared.WeightFromInt(unitWeight)
	if err != nil {
		t.Fatalf("WeightFromInt: %v", err)
	}
	if len(stocks) == 0 {
		stocks = []product.StockSpec{{Location: testLocation(t, 30.5, 50.4), Quantity: 5}}
	}
	p, err := product.New(id, name, price, w, stocks)
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return p
}

func testLocation(t *testing.T, lon, lat float64) shared.Location {
	t.Helper()
	l, err := shared.NewLocation(lon, lat)
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}
	return l
}

func TestProductRepositoryRoundTrip(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository(newTestDB(t))

	p := testProduct(t, "p-1", "Kettle", "19.99", 2,
		product.StockSpec{Location: testLocation(t, 10, 10), Quantity: 3},
		product.StockSpec{Location: testLocation(t, -20, 5), Quantity: 0},
	)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name() != "Kettle" || !got.Price().Equals(p.Price()) || !got.Weight().Equals(p.Weight()) {
		t.Errorf("loaded product differs: %s %s %s", got.Name(), got.Price(), got.Weight())
	}
	stocks := got.Stocks()
	if len(stocks) != 2 || !stocks[0].Location().Equals(testLocation(t, 10, 10)) || stocks[1].Quantity() != 0 {
		t.Errorf("stocks not preserved in order: %+v", stocks)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := repo.Create(ctx, p); !shared.IsKind(err, shared.KindDuplicate) {
		t.Errorf("second Create should be a duplicate, got %v", err)
	}
}

func TestProductRepositoryOptimisticLock(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository(newTestDB(t))
	if err := repo.Create(ctx, testProduct(t, "p-1", "Kettle", "10", 2)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, _ := repo.FindByID(ctx, "p-1")
	second, _ := repo.FindByID(ctx, "p-1")

	if err := first.AddStock(testLocation(t, 1, 1), 4); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if first.Version() != 1 {
		t.Errorf("version after update = %d, want 1", first.Version())
	}

	if err := second.Rename("Teapot"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := repo.Update(ctx, second); !errors.Is(err, shared.ErrConcurrentModification) {
		t.Fatalf("stale update should conflict, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, "p-1")
	if stored.Name() != "Kettle" || len(stored.Stocks()) != 2 || stored.Version() != 1 {
		t.Errorf("stale write leaked: name=%s stocks=%d version=%d", stored.Name(), len(stored.Stocks()), stored.Version())
	}

	ghost := testProduct(t, "ghost", "Ghost", "1", 1)
	if err := repo.Update(ctx, ghost); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("update of missing product should be not found, got %v", err)
	}
}

// heavySpec has no SQL form, so the repository filters in memory
type heavySpec struct{}

func (heavySpec) IsSatisfiedBy(_ context.Context, p *product.Product) bool {
	return p.Weight().GreaterThan(shared.Weight{})
}

func TestProductRepositorySpecifications(t *testing.T) {
	ctx := t.Context()
	repo := NewProductRepository(newTestDB(t))
	empty := product.StockSpec{Location: testLocation(t, 0, 0), Quantity: 0}
	for _, p := range []*product.Product{
		testProduct(t, "p-1", "Red Kettle", "10", 2),
		testProduct(t, "p-2", "Blue Kettle", "30", 3),
		testProduct(t, "p-3", "Lamp", "5", 1, empty),
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	ids := func(ps []*product.Product) string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID()
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name string
		spec shared.Specification[*product.Product]
		want string
	}{
		{"all", nil, "p-1,p-2,p-3"},
		{"contains", product.NewByNameContainsSpecification("kettle"), "p-1,p-2"},
		{"in stock", product.NewInStockSpecification(), "p-1,p-2"},
		{"price at most", product.NewPriceAtMostSpecification(decimal.NewFromInt(10), "usd"), "p-1,p-3"},
		{"and", shared.And(product.NewByNameContainsSpecification("kettle"), product.NewPriceAtMostSpecification(decimal.NewFromInt(10), "USD")), "p-1"},
		{"or", shared.Or(product.NewByNameSpecification("Lamp"), product.NewByNameSpecification("Blue Kettle")), "p-2,p-3"},
		{"not", shared.Not(product.NewInStockSpecification()), "p-3"},
		{"in memory fallback", shared.And[*product.Product](heavySpec{}, product.NewByNameSpecification("Lamp")), "p-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAll(ctx, tt.spec)
			if err != nil {
				t.Fatalf("FindAll: %v", err)
			}
			if ids(got) != tt.want {
				t.Errorf("FindAll = %s, want %s", ids(got), tt.want)
			}
		})
	}

	found, err := repo.FindOne(ctx, product.NewByNameSpecification("Lamp"))
	if err != nil || found.ID() != "p-3" {
		t.Errorf("FindOne = %v, %v", found, err)
	}
	if _, err := repo.FindOne(ctx, product.NewByNameSpecification("Sofa")); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("FindOne without match should be not found, got %v", err)
	}
}

func TestOrderRepositoryLifecycle(t *testing.T) {
	ctx := t.Context()
	repo := NewOrderRepository(newTestDB(t))

	kettle := order.RefOf(testProduct(t, "p-1", "Kettle", "10", 20))
	lamp := order.RefOf(testProduct(t, "p-2", "Lamp", "4.5", 5))
	policy, err := order.NewWeightPolicy(decimal.NewFromInt(80), decimal.NewFromInt(60))
	if err != nil {
		t.Fatalf("NewWeightPolicy: %v", err)
	}
	o, err := order.New("o-1", "c-1", []order.LineSpec{{Product: kettle, Quantity: 2}}, policy)
	if err != nil {
		t.Fatalf("order.New: %v", err)
	}
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "o-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if err := loaded.AddLineItem(lamp, 3); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if err := loaded.RemoveLineItem("p-1"); err != nil {
		t.Fatalf("RemoveLineItem: %v", err)
	}
	if err := repo.Update(ctx, loaded); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, err := repo.FindByID(ctx, "o-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	items := stored.Items()
	if len(items) != 1 || items[0].ProductID() != "p-2" || items[0].Quantity() != 3 {
		t.Fatalf("line items not replaced: %+v", items)
	}
	if stored.TotalWeight().String() != "15" || stored.TotalPrice().String() != "13.50 USD" {
		t.Errorf("totals = %s / %s", stored.TotalWeight(), stored.TotalPrice())
	}
	if !stored.Policy().MaxTotal.Equals(policy.MaxTotal) || !stored.Policy().MaxLine.Equals(policy.MaxLine) {
		t.Errorf("policy not persisted: %+v", stored.Policy())
	}

	pending, err := repo.FindAll(ctx, shared.And(order.NewByCustomerSpecification("c-1"), order.NewByStatusSpecification(order.StatusPending)))
	if err != nil || len(pending) != 1 {
		t.Errorf("FindAll by customer and status = %d, %v", len(pending), err)
	}

	if err := repo.Delete(ctx, "o-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "o-1"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("deleted order should be gone, got %v", err)
	}
	if err := repo.Delete(ctx, "o-1"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := t.Context()
	repo := NewUserRepository(newTestDB(t))

	alice, err := user.NewUser("u-1", "Alice", "alice@example.com", "secret123", 30)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("Create: %v", err)
	}
	twin, _ := user.NewUser("u-2", "Alice Two", "ALICE@example.com", "secret123", 31)
	if err := repo.Create(ctx, twin); !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}

	found, err := repo.FindOne(ctx, user.NewByEmailSpecification(" Alice@Example.com"))
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if !found.CheckPassword("secret123") {
		t.Error("password hash not persisted")
	}

	found.Deactivate()
	if err := repo.Update(ctx, found); err != nil {
		t.Fatalf("Update: %v", err)
	}
	inactive, err := repo.FindAll(ctx, user.NewByStatusSpecification(false))
	if err != nil || len(inactive) != 1 {
		t.Errorf("inactive users = %d, %v", len(inactive), err)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	uow := NewUnitOfWork(db, retry.DefaultConfig)

	boom := errors.New("boom")
	err := uow.Execute(t.Context(), func(ctx context.Context) error {
		if err := repo.Create(ctx, testProduct(t, "p-1", "Kettle", "10", 2)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back unchanged, got %v", err)
	}
	if _, err := repo.FindByID(t.Context(), "p-1"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("rolled back create is visible: %v", err)
	}
}

func TestUnitOfWorkRetriesConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	cfg := retry.DefaultConfig
	cfg.InitialDelay = time.Millisecond
	uow := NewUnitOfWork(db, cfg)

	if err := repo.Create(t.Context(), testProduct(t, "p-1", "Kettle", "10", 2)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var attempts atomic.Int32
	err := uow.Execute(t.Context(), func(ctx context.Context) error {
		p, err := repo.FindByID(ctx, "p-1")
		if err != nil {
			return err
		}
		if attempts.Add(1) == 1 {
			// 模拟另一个事务抢先提交
			return product.NewConcurrentModificationError(p.ID())
		}
		if err := p.Rename("Teapot"); err != nil {
			return err
		}
		return repo.Update(ctx, p)
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
	stored, _ := repo.FindByID(t.Context(), "p-1")
	if stored.Name() != "Teapot" || stored.Version() != 1 {
		t.Errorf("stored = %s v%d", stored.Name(), stored.Version())
	}
}

func TestUnitOfWorkCompletesAfterCallerCancels(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	uow := NewUnitOfWork(db, retry.DefaultConfig)

	ctx, cancel := context.WithCancel(t.Context())
	err := uow.Execute(ctx, func(txCtx context.Context) error {
		cancel()
		return repo.Create(txCtx, testProduct(t, "p-1", "Kettle", "10", 2))
	})
	if err != nil {
		t.Fatalf("started unit of work should commit, got %v", err)
	}
	if _, err := repo.FindByID(t.Context(), "p-1"); err != nil {
		t.Errorf("committed product missing: %v", err)
	}
}

func TestStoreErrWrapsDriverFailures(t *testing.T) {
	err := storeErr("product.FindByID", errors.New("dial tcp: connection refused"))
	if apperrors.KindOf(err) != apperrors.KindUnavailable {
		t.Errorf("driver failure kind = %s", apperrors.KindOf(err))
	}
	if strings.Contains(apperrors.Classify(err).Message, "dial tcp") {
		t.Error("driver detail leaked into the message")
	}

	domainErr := product.NewProductNotFoundError("p-1")
	if storeErr("op", domainErr) != domainErr {
		t.Error("domain errors must pass through unchanged")
	}
}

func TestDialector(t *testing.T) {
	if _, err := Dialector(configFor("oracle")); err == nil {
		t.Error("unknown database type should fail")
	}
	for _, typ := range []string{"mysql", "postgres", "sqlite"} {
		if _, err := Dialector(configFor(typ)); err != nil {
			t.Errorf("Dialector(%s): %v", typ, err)
		}
	}
	if dsn := SQLiteDSN(configFor("sqlite")); !strings.HasPrefix(dsn, "shop.db?") {
		t.Errorf("SQLiteDSN = %s", dsn)
	}
	if dsn := SQLiteDSN(config.DatabaseConfig{Database: "ddd_commerce"}); dsn != "ddd_commerce.db?_busy_timeout=5000" {
		t.Errorf("bare name DSN = %s", dsn)
	}
	if dsn := SQLiteDSN(config.DatabaseConfig{Database: "file:x?mode=memory"}); dsn != "file:x?mode=memory&_busy_timeout=5000" {
		t.Errorf("uri DSN = %s", dsn)
	}
}

func configFor(typ string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Type:     typ,
		Host:     "localhost",
		Port:     "3306",
		Username: "shop",
		Password: "shop",
		Database: "shop.db",
	}
}
