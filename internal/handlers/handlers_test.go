package handlers

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/repository"
	"repairbox/internal/services"
	"repairbox/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	testSecret  = "handler-test-secret"
	hookSecret  = "hook-secret"
	adminPass   = "admin123"
	techPass    = "tech123"
	xlsxContent = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type fakeChat struct {
	sent []string
}

func (c *fakeChat) SendTextMessage(ctx context.Context, phone, message string) error {
	c.sent = append(c.sent, phone+": "+message)
	return nil
}

type testServer struct {
	router *gin.Engine
	chat   *fakeChat
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	ctx := context.Background()

	orderRepo := repository.NewRepairOrderRepository(db)
	settingsRepo := repository.NewRepairSettingsRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	users := services.NewUserService(repository.NewUserRepository(db))

	setup := services.NewSetupService(settingsRepo, catalogRepo, checklistRepo, dashboardRepo, users,
		services.AdminAccount{Username: "admin", Password: adminPass, Email: "admin@repairbox.local"}, log)
	if err := setup.Install(ctx); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := users.CreateUser(ctx, &models.User{Username: "tech", Email: "tech@repairbox.local"}, techPass); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	chat := &fakeChat{}
	checklists := services.NewChecklistService(checklistRepo, catalogRepo)
	orders := services.NewRepairOrderService(
		orderRepo, settingsRepo, catalogRepo, repository.NewCustomerRepository(db),
		checklists, services.NewNotificationService(settingsRepo, nil, chat, "RepairBox", log),
		nil, nil,
		services.RepairOrderOptions{TaxRate: decimal.Zero, ElevatedRoles: []string{"super_admin", "manager"}},
		log,
	)
	logs := services.NewRepairLogService(repository.NewRepairLogRepository(db), orderRepo, orders, log)

	h := Handlers{
		Auth:        NewAuthHandler(services.NewAuthService(users, testSecret, time.Hour), log),
		RepairOrder: NewRepairOrderHandler(orders, logs, orderRepo, log),
		Catalog:     NewCatalogHandler(services.NewCatalogService(catalogRepo), services.NewRepairSettingsService(settingsRepo), checklists, log),
		Customer:    NewCustomerHandler(services.NewCustomerService(repository.NewCustomerRepository(db)), log),
		Dashboard:   NewDashboardHandler(services.NewDashboardService(dashboardRepo, orderRepo), log),
		WhatsApp:    NewWhatsAppHandler(services.NewWhatsAppService(chat, orders, "RB-", "RepairBox"), log),
	}
	router := testutil.SetupRouter()
	RegisterRoutes(router, h, RouteConfig{
		JWTSecret:     testSecret,
		WebhookSecret: hookSecret,
		ElevatedRoles: []string{"super_admin", "manager"},
	})
	return &testServer{router: router, chat: chat}
}

func (s *testServer) login(t *testing.T, username, password string) map[string]string {
	t.Helper()
	w := testutil.DoRequest(s.router, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	token, _ := testutil.ParseResponse(w)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %s", username, w.Body.String())
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func (s *testServer) seedCatalog(t *testing.T, admin map[string]string) {
	t.Helper()
	steps := []struct {
		path string
		body interface{}
	}{
		{"/api/brands", map[string]interface{}{"name": "Apple"}},
		{"/api/devices", map[string]interface{}{"name": "iPhone 13", "brand": "Apple", "device_type": "Smartphone"}},
		{"/api/defects", map[string]interface{}{"device": "iPhone 13", "defect_title": "Screen", "selling_price": "280", "estimated_time": 60}},
	}
	for _, step := range steps {
		w := testutil.DoRequest(s.router, http.MethodPost, step.path, step.body, admin)
		if w.Code != http.StatusOK {
			t.Fatalf("POST %s: status %d body %s", step.path, w.Code, w.Body.String())
		}
	}
}

func errorTitle(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("no error object in %v", body)
	}
	title, _ := e["title"].(string)
	return title
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := setupServer(t)

	w := testutil.DoRequest(s.router, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "nope"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without password, got %d", w.Code)
	}
}

func TestRepairOrderLifecycle(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin", adminPass)
	tech := s.login(t, "tech", techPass)
	s.seedCatalog(t, admin)

	w := testutil.DoRequest(s.router, http.MethodPost, "/api/repair-orders", map[string]interface{}{
		"customer_name":  "Jane Doe",
		"contact_number": "08123456789",
		"device":         "iPhone 13",
		"defects":        []map[string]interface{}{{"defect": "iPhone 13-Screen"}},
	}, tech)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	created := testutil.ParseResponse(w)
	trackingID, _ := created["tracking_id"].(string)
	if !regexp.MustCompile(`^RB-[A-Z0-9]{5}$`).MatchString(trackingID) {
		t.Fatalf("unexpected tracking id %q", trackingID)
	}
	if created["status"] != models.StatusPendingReview || created["brand"] != "Apple" {
		t.Errorf("defaults not applied: %v", created)
	}
	inspection, _ := created["device_inspection"].([]interface{})
	if len(inspection) == 0 {
		t.Error("expected the smartphone checklist to be copied")
	}
	id := int(created["id"].(float64))
	orderPath := "/api/repair-orders/" + strconv.Itoa(id)

	// public tracking needs no token
	w = testutil.DoRequest(s.router, http.MethodGet, "/api/track/"+strings.ToLower(trackingID), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("track: status %d", w.Code)
	}
	if snap := testutil.ParseResponse(w); snap["grand_total"] != "280.00" || snap["order"] != "RO-00001" {
		t.Errorf("unexpected snapshot %v", snap)
	}

	// technicians cannot deliver unpaid repairs
	update := map[string]interface{}{
		"customer_name":  "Jane Doe",
		"contact_number": "08123456789",
		"device":         "iPhone 13",
		"status":         models.StatusDelivered,
		"defects":        []map[string]interface{}{{"defect": "iPhone 13-Screen"}},
	}
	w = testutil.DoRequest(s.router, http.MethodPut, orderPath, update, tech)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body %s", w.Code, w.Body.String())
	}
	if title := errorTitle(t, testutil.ParseResponse(w)); title != "Payment Required" {
		t.Errorf("error title = %q", title)
	}

	w = testutil.DoRequest(s.router, http.MethodPost, orderPath+"/payments", map[string]interface{}{"amount": "280"}, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("payment: status %d body %s", w.Code, w.Body.String())
	}
	if paid := testutil.ParseResponse(w); paid["payment_status"] != string(models.Paid) {
		t.Errorf("payment status = %v", paid["payment_status"])
	}

	update["paid_amount"] = "280"
	w = testutil.DoRequest(s.router, http.MethodPut, orderPath, update, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: status %d body %s", w.Code, w.Body.String())
	}
	if len(s.chat.sent) != 1 || !strings.Contains(s.chat.sent[0], "has been delivered") {
		t.Errorf("expected delivery message, got %v", s.chat.sent)
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders?status=Delivered", nil, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	if total := testutil.ParseResponse(w)["total"]; total != float64(1) {
		t.Errorf("total = %v", total)
	}
}

func TestRepairOrderErrors(t *testing.T) {
	s := setupServer(t)
	tech := s.login(t, "tech", techPass)

	w := testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders/999", nil, tech)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders/abc", nil, tech)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad id, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodPost, "/api/repair-orders", map[string]interface{}{
		"customer_name": "Jane Doe",
		"status":        models.StatusCompleted,
	}, tech)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if title := errorTitle(t, testutil.ParseResponse(w)); title != "Missing Information" {
		t.Errorf("error title = %q", title)
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders?page_size=500", nil, tech)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for page_size, got %d", w.Code)
	}
}

func TestCatalogWritesRequireElevatedRole(t *testing.T) {
	s := setupServer(t)
	tech := s.login(t, "tech", techPass)

	w := testutil.DoRequest(s.router, http.MethodPost, "/api/brands", map[string]interface{}{"name": "Nokia"}, tech)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/statuses", nil, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("list statuses: %d", w.Code)
	}
	items, _ := testutil.ParseResponse(w)["items"].([]interface{})
	if len(items) != 10 {
		t.Errorf("expected 10 statuses, got %d", len(items))
	}
}

func TestQuickCustomer(t *testing.T) {
	s := setupServer(t)
	tech := s.login(t, "tech", techPass)

	w := testutil.DoRequest(s.router, http.MethodPost, "/api/customers/quick",
		map[string]string{"customer_name": "Rina"}, tech)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without phone, got %d", w.Code)
	}

	w = testutil.DoRequest(s.router, http.MethodPost, "/api/customers/quick",
		map[string]string{"customer_name": "Rina", "contact_number": "0813000000"}, tech)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", w.Code, w.Body.String())
	}
	if body := testutil.ParseResponse(w); body["customer_type"] != models.CustomerTypeIndividual {
		t.Errorf("unexpected customer %v", body)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	s := setupServer(t)
	tech := s.login(t, "tech", techPass)

	w := testutil.DoRequest(s.router, http.MethodGet, "/api/dashboard/workspace", nil, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("workspace: status %d", w.Code)
	}
	blocks, _ := testutil.ParseResponse(w)["blocks"].([]interface{})
	if len(blocks) != 9 {
		t.Errorf("expected 9 workspace blocks, got %d", len(blocks))
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/dashboard/charts/"+url.PathEscape(services.ChartMonthlyRevenue), nil, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("chart: status %d body %s", w.Code, w.Body.String())
	}
	labels, _ := testutil.ParseResponse(w)["labels"].([]interface{})
	if len(labels) != 12 {
		t.Errorf("expected 12 labels, got %d", len(labels))
	}
}

func TestExport(t *testing.T) {
	s := setupServer(t)
	tech := s.login(t, "tech", techPass)

	w := testutil.DoRequest(s.router, http.MethodGet, "/api/repair-orders/export", nil, tech)
	if w.Code != http.StatusOK {
		t.Fatalf("export: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContent {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Error("export is not a zip container")
	}
}

func TestWhatsAppWebhook(t *testing.T) {
	s := setupServer(t)

	body := map[string]interface{}{
		"from":    "628123456789@s.whatsapp.net",
		"message": map[string]string{"text": "hello"},
	}
	w := testutil.DoRequest(s.router, http.MethodPost, "/api/whatsapp/webhook", body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without secret, got %d", w.Code)
	}

	headers := map[string]string{"X-Webhook-Secret": hookSecret}
	w = testutil.DoRequest(s.router, http.MethodPost, "/api/whatsapp/webhook", body, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook: status %d body %s", w.Code, w.Body.String())
	}
	if len(s.chat.sent) != 1 || !strings.HasPrefix(s.chat.sent[0], "628123456789: Welcome to RepairBox!") {
		t.Errorf("unexpected reply %v", s.chat.sent)
	}

	group := map[string]interface{}{"from": "1203630@g.us", "message": map[string]string{"text": "RB-AAAAA"}}
	w = testutil.DoRequest(s.router, http.MethodPost, "/api/whatsapp/webhook", group, headers)
	if resp := testutil.ParseResponse(w); resp["status"] != "ignored" {
		t.Errorf("group message not ignored: %v", resp)
	}
	if len(s.chat.sent) != 1 {
		t.Error("replied to a group chat")
	}
}

func TestSaveDefectHonoursActiveFlag(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin", adminPass)
	s.seedCatalog(t, admin)

	w := testutil.DoRequest(s.router, http.MethodPost, "/api/defects", map[string]interface{}{
		"device":        "iPhone 13",
		"defect_title":  "Water Damage",
		"selling_price": "150",
		"is_active":     false,
	}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/defects: status %d body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(s.router, http.MethodGet, "/api/defects?device="+url.QueryEscape("iPhone 13"), nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("list defects: %d", w.Code)
	}
	items, _ := testutil.ParseResponse(w)["items"].([]interface{})
	active := map[string]bool{}
	for _, item := range items {
		d := item.(map[string]interface{})
		active[d["name"].(string)], _ = d["is_active"].(bool)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 defects, got %v", active)
	}
	if !active["iPhone 13-Screen"] {
		t.Error("defect saved without is_active should be active")
	}
	if active["iPhone 13-Water Damage"] {
		t.Error("defect saved with is_active=false was stored as active")
	}
}
