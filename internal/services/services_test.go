package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/database"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "letmein"

var dbSeq atomic.Int64

type fakePublisher struct {
	mu      sync.Mutex
	changes []realtime.Change
	err     error
}

func (f *fakePublisher) PublishChange(_ context.Context, c realtime.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, c)
	return f.err
}

func (f *fakePublisher) count(collection string, event realtime.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.changes {
		if c.Collection == collection && c.Event == event {
			n++
		}
	}
	return n
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (f *fakeCache) SetTempData(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.data == nil {
		f.data = make(map[string][]byte)
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) GetTempData(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[key]
	if !ok {
		return fmt.Errorf("miss")
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) DeleteTempData(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type fakeReceipts struct {
	mu    sync.Mutex
	bills []string
}

func (f *fakeReceipts) SendBillReceipt(_ context.Context, bill *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bills = append(f.bills, bill.BillNumber)
	return nil
}

// failingDrafts deletes nothing and always errors.
type failingDrafts struct {
	repository.RunningOrderRepository
}

func (failingDrafts) DeleteByTableID(uint) error {
	return fmt.Errorf("draft store unavailable")
}

type testEnv struct {
	db       *gorm.DB
	pub      *fakePublisher
	cache    *fakeCache
	receipts *fakeReceipts
	manager  *cart.Manager

	menuRepo  repository.MenuItemRepository
	tableRepo repository.TableRepository
	draftRepo repository.RunningOrderRepository
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	billRepo  repository.BillRepository
	custRepo  repository.CustomerRepository
	finRepo   repository.FinancialRepository

	settings  SettingsService
	menu      MenuService
	customers CustomerService
	drafts    RunningOrderService
	orders    OrderService
	bills     BillingService
	tables    TableService
	sessions  SessionService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	e := &testEnv{
		db:       newTestDB(t),
		pub:      &fakePublisher{},
		cache:    &fakeCache{},
		receipts: &fakeReceipts{},
	}
	e.menuRepo = repository.NewMenuItemRepository(e.db)
	e.tableRepo = repository.NewTableRepository(e.db)
	e.draftRepo = repository.NewRunningOrderRepository(e.db)
	e.orderRepo = repository.NewOrderRepository(e.db)
	e.itemRepo = repository.NewOrderItemRepository(e.db)
	e.billRepo = repository.NewBillRepository(e.db)
	e.custRepo = repository.NewCustomerRepository(e.db)
	e.finRepo = repository.NewFinancialRepository(e.db)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	settings := &models.BusinessSettings{DeletePasswordHash: string(hash)}
	settings.ApplyPolicy(billing.NewGSTPolicy(true, map[billing.BusinessUnit]billing.UnitGST{
		billing.UnitCafe:   {Enabled: true, Percent: 5},
		billing.UnitBar:    {Enabled: true, Percent: 18},
		billing.UnitHotel:  {Enabled: true, Percent: 12},
		billing.UnitGarden: {Enabled: false, Percent: 18},
	}))
	if err := e.finRepo.SaveSettings(settings); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	e.settings = NewSettingsService(e.finRepo, e.cache, time.Minute, e.pub, log)
	e.menu = NewMenuService(e.menuRepo, e.pub, log)
	e.customers = NewCustomerService(e.custRepo, e.pub, log)
	e.drafts = NewRunningOrderService(e.draftRepo, e.orderRepo, e.tableRepo, e.menuRepo, e.pub, log)
	e.manager = cart.NewManager(e.drafts, time.Hour, log)
	e.orders = NewOrderService(e.orderRepo, e.itemRepo, e.tableRepo, e.draftRepo, e.settings, "ORD", e.pub, log)
	e.bills = NewBillingService(e.billRepo, e.orderRepo, e.draftRepo, e.orders, e.customers, e.settings, e.receipts, "BILL", e.pub, log)
	e.tables = NewTableService(e.tableRepo, e.orderRepo, e.draftRepo, e.orders, e.settings, e.manager, e.pub, log)
	e.sessions = NewSessionService(e.manager, e.menu, e.drafts, e.orders, e.bills, e.customers, e.orderRepo, log)
	return e
}

func (e *testEnv) table(t *testing.T, number string, unit billing.BusinessUnit) *models.Table {
	t.Helper()
	table := &models.Table{Number: number, BusinessUnit: unit, Capacity: 4}
	if err := e.tables.CreateTable(context.Background(), table); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return table
}

func (e *testEnv) menuItem(t *testing.T, name string, price billing.Money, unit billing.BusinessUnit, measurement, base string) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:            name,
		Price:           price,
		BusinessUnit:    unit,
		Available:       true,
		Measurement:     measurement,
		BaseMeasurement: base,
	}
	if err := e.menu.CreateMenuItem(context.Background(), item); err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	return item
}

// submitted places an order of qty x item on the table through a session.
func (e *testEnv) submitted(t *testing.T, table *models.Table, item *models.MenuItem, qty int, cust CustomerInput) *models.Order {
	t.Helper()
	if _, _, err := e.sessions.OpenSession(table.ID); err != nil {
		t.Fatalf("open session: %v", err)
	}
	for i := 0; i < qty; i++ {
		if _, err := e.sessions.AddItem(table.ID, item.ID, ""); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	if cust.Mobile != "" || cust.DiscountPercent != nil {
		if _, err := e.sessions.SetCustomer(table.ID, cust); err != nil {
			t.Fatalf("set customer: %v", err)
		}
	}
	order, err := e.sessions.Submit(context.Background(), table.ID, SubmitRequest{GuestCount: 2})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return order
}

func pct(v float64) *float64 {
	return &v
}
