package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"repairbox/internal/events"
	"repairbox/internal/models"
	"repairbox/internal/redis"
	"repairbox/internal/repository"
	"repairbox/internal/testutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendHTML(ctx context.Context, to []string, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return m.err
}

type sentChat struct {
	phone   string
	message string
}

type fakeChat struct {
	sent []sentChat
	err  error
}

func (c *fakeChat) SendTextMessage(ctx context.Context, phone, message string) error {
	c.sent = append(c.sent, sentChat{phone: phone, message: message})
	return c.err
}

type fakePublisher struct {
	events []events.StatusChanged
	err    error
}

func (p *fakePublisher) PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakeCache struct {
	snapshots map[string][]byte
	reserved  map[string]bool
	hits      int
	deleted   []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: map[string][]byte{}, reserved: map[string]bool{}}
}

func (c *fakeCache) GetTracking(ctx context.Context, trackingID string, dest interface{}) error {
	raw, ok := c.snapshots[trackingID]
	if !ok {
		return redis.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetTracking(ctx context.Context, trackingID string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.snapshots[trackingID] = raw
	return nil
}

func (c *fakeCache) DeleteTracking(ctx context.Context, trackingID string) error {
	delete(c.snapshots, trackingID)
	c.deleted = append(c.deleted, trackingID)
	return nil
}

func (c *fakeCache) ReserveTrackingID(ctx context.Context, trackingID string, ttl time.Duration) (bool, error) {
	if c.reserved[trackingID] {
		return false, nil
	}
	c.reserved[trackingID] = true
	return true, nil
}

type testEnv struct {
	db        *gorm.DB
	orders    RepairOrderService
	logs      RepairLogService
	orderRepo repository.RepairOrderRepository
	settings  repository.RepairSettingsRepository
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	checklist repository.ChecklistRepository
	mail      *fakeMailer
	chat      *fakeChat
	publisher *fakePublisher
	cache     *fakeCache
}

var (
	technician = Actor{UserID: 2, Username: "tech", Email: "tech@example.com", Roles: []string{"technician"}}
	manager    = Actor{UserID: 1, Username: "boss", Email: "boss@example.com", Roles: []string{"manager"}}
)

func newTestEnv(t *testing.T, taxRate string) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	env := &testEnv{
		db:        db,
		orderRepo: repository.NewRepairOrderRepository(db),
		settings:  repository.NewRepairSettingsRepository(db),
		catalog:   repository.NewCatalogRepository(db),
		customers: repository.NewCustomerRepository(db),
		checklist: repository.NewChecklistRepository(db),
		mail:      &fakeMailer{},
		chat:      &fakeChat{},
		publisher: &fakePublisher{},
		cache:     newFakeCache(),
	}
	seedCatalog(t, env)

	log := zap.NewNop()
	notifier := NewNotificationService(env.settings, env.mail, env.chat, "RepairBox", log)
	checklists := NewChecklistService(env.checklist, env.catalog)
	env.orders = NewRepairOrderService(
		env.orderRepo, env.settings, env.catalog, env.customers,
		checklists, notifier, env.publisher, env.cache,
		RepairOrderOptions{
			TaxRate:        decimal.RequireFromString(taxRate),
			TrackingPrefix: "RB-",
			ElevatedRoles:  []string{"super_admin", "manager"},
			CacheTTL:       time.Minute,
		},
		log,
	)
	env.logs = NewRepairLogService(repository.NewRepairLogRepository(db), env.orderRepo, env.orders, log)
	return env
}

func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	statuses := []models.RepairStatus{
		{Name: models.StatusPendingReview, Sequence: 1, IsDefault: true},
		{Name: models.StatusInProgress, Sequence: 2, NotifyCustomer: true},
		{Name: models.StatusAwaitingParts, Sequence: 3},
		{Name: models.StatusCompleted, Sequence: 6, NotifyCustomer: true},
		{Name: models.StatusReadyForPickup, Sequence: 7, NotifyCustomer: true},
		{Name: models.StatusDelivered, Sequence: 8, NotifyCustomer: true, IsTerminal: true},
	}
	for i := range statuses {
		if err := env.settings.SaveStatus(ctx, &statuses[i]); err != nil {
			t.Fatalf("seed status: %v", err)
		}
	}
	priorities := []models.RepairPriority{
		{Name: "Standard", ExtraCharge: decimal.Zero, IsDefault: true},
		{Name: "Express", ExtraCharge: decimal.NewFromInt(30)},
	}
	for i := range priorities {
		if err := env.settings.SavePriority(ctx, &priorities[i]); err != nil {
			t.Fatalf("seed priority: %v", err)
		}
	}

	if err := env.catalog.SaveBrand(ctx, &models.Brand{Name: "Apple"}); err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	if err := env.catalog.SaveDevice(ctx, &models.Device{Name: "iPhone 13", BrandName: "Apple", DeviceType: "Smartphone"}); err != nil {
		t.Fatalf("seed device: %v", err)
	}
	defects := []models.Defect{
		{Name: "iPhone 13-Screen", DeviceName: "iPhone 13", BrandName: "Apple", DefectTitle: "Screen", SellingPrice: decimal.NewFromInt(280), EstimatedTime: 60, IsActive: true},
		{Name: "iPhone 13-Battery", DeviceName: "iPhone 13", BrandName: "Apple", DefectTitle: "Battery", SellingPrice: decimal.NewFromInt(120), EstimatedTime: 40, IsActive: true},
	}
	for i := range defects {
		if err := env.catalog.SaveDefect(ctx, &defects[i]); err != nil {
			t.Fatalf("seed defect: %v", err)
		}
	}

	tpl := &models.InspectionChecklistTemplate{
		Name:       "Smartphone Check",
		DeviceType: "Smartphone",
		IsDefault:  true,
		IsActive:   true,
		Items: []models.InspectionChecklistTemplateItem{
			{ItemName: "Screen", Category: "Display", IsMandatory: true},
			{ItemName: "Charging Port", Category: "Power"},
		},
	}
	if err := env.checklist.Save(ctx, tpl); err != nil {
		t.Fatalf("seed checklist: %v", err)
	}
}

// newOrder returns an iPhone 13 order with the screen and battery lines.
func newOrder() *models.RepairOrder {
	return &models.RepairOrder{
		CustomerName:  "Jane Doe",
		ContactNumber: "08123456789",
		Email:         "jane@example.com",
		DeviceName:    "iPhone 13",
		BookingDate:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Defects: []models.RepairOrderDefect{
			{DefectName: "iPhone 13-Screen"},
			{DefectName: "iPhone 13-Battery"},
		},
	}
}

func mustCreate(t *testing.T, env *testEnv, order *models.RepairOrder) *models.RepairOrder {
	t.Helper()
	if err := env.orders.Create(context.Background(), technician, order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return order
}

func assertValidation(t *testing.T, err error, title string) {
	t.Helper()
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError %q, got %v", title, err)
	}
	if ve.Title != title {
		t.Fatalf("expected title %q, got %q (%s)", title, ve.Title, ve.Message)
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got.String(), want)
	}
}
