package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/catalog"
	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/database"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/notify"
	"github.com/beachmarket/beachmarketgo/internal/reports"
	"github.com/beachmarket/beachmarketgo/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeCatalog struct {
	products map[string]*models.CatalogProduct
	err      error
}

func (f *fakeCatalog) FindByBarcode(ctx context.Context, branchCode, barcode string) (*models.CatalogProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[barcode], nil
}

type fakeSource struct {
	products []models.CatalogProduct
	summary  *catalog.SalesSummary
	err      error
}

func (f *fakeSource) RecentProducts(ctx context.Context, branchCode string, filters catalog.ProductFilters) ([]models.CatalogProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeSource) Sales(ctx context.Context, branchCode string, from, to time.Time) (*catalog.SalesSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

// Bearer token shared by test requests, issued in newTestRouter
var testToken string

func newTestRouter(t *testing.T, source CatalogSource, migrate ...interface{}) (*Router, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if len(migrate) > 0 {
		if err := gdb.AutoMigrate(migrate...); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
	}

	cfg := &config.Config{
		NodeEnv:   "test",
		JWTSecret: "test-jwt-secret",
		EncKey:    "test-encryption-key",
	}
	testToken, _, err = utils.GenerateTokens(&models.UserAuth{
		ID:    "test-user",
		Email: "tester@beachmarket.local",
		Role:  "admin",
	}, cfg)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	store := inventory.NewStore(gdb, &fakeCatalog{products: map[string]*models.CatalogProduct{
		"111": {Barcode: "111", Description: "Yogurt"},
		"222": {Barcode: "222", Description: "Milk"},
	}})

	router := NewRouter(&database.DB{DB: gdb}, cfg, store, source,
		reports.NullGenerator{}, notify.NewNullSender("whatsapp"), notify.NewNullSender("email"), nil)
	return router, gdb
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if testToken != "" {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v (body: %s)", err, rec.Body.String())
	}
	return rec, decoded
}

func TestStats_DegradesToZerosWithoutTable(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{})

	rec, body := doJSON(t, router, "GET", "/api/inventory/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	stats, ok := body["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected stats object, got %v", body["stats"])
	}
	if stats["total"].(float64) != 0 {
		t.Errorf("expected zero total, got %v", stats["total"])
	}
}

func TestExtendedList_ReturnsUrgency(t *testing.T) {
	router, gdb := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{})

	gdb.Create(&models.ExtendedInventoryItem{
		BranchCode:     "playa",
		Barcode:        "111",
		Description:    "Yogurt",
		ExpirationDate: time.Now().AddDate(0, 0, 2),
		IsActive:       true,
	})

	rec, body := doJSON(t, router, "GET", "/api/inventory/extended", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 item, got %d", len(data))
	}
	item := data[0].(map[string]interface{})
	if item["urgency"] != "critical" {
		t.Errorf("expected critical urgency, got %v", item["urgency"])
	}
}

func TestDeleteItem_MalformedAndMissing(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{})

	rec, _ := doJSON(t, router, "DELETE", "/api/inventory/item/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, "DELETE", "/api/inventory/item/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestAttachData_ReportsEveryBarcode(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{})

	rec, body := doJSON(t, router, "POST", "/api/inventory/attach-data", map[string]interface{}{
		"branchId":       "playa",
		"barcodes":       []string{"111", "222", "999"},
		"expirationDate": "2026-09-10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	data := body["data"].(map[string]interface{})
	if data["inserted"].(float64) != 2 {
		t.Errorf("expected 2 inserted, got %v", data["inserted"])
	}
	if data["errors"].(float64) != 1 {
		t.Errorf("expected 1 error, got %v", data["errors"])
	}
}

func TestAttachData_RejectsBadPayload(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{})

	rec, _ := doJSON(t, router, "POST", "/api/inventory/attach-data", map[string]interface{}{
		"branchId": "playa",
		"barcodes": []string{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty barcodes, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, "POST", "/api/inventory/attach-data", map[string]interface{}{
		"branchId":       "playa",
		"barcodes":       []string{"111"},
		"expirationDate": "not-a-date",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestRecentProducts_SoftFailureHidesDetailOutsideDevelopment(t *testing.T) {
	source := &fakeSource{err: errors.New("dial tcp: connection refused")}
	router, _ := newTestRouter(t, source)

	rec, body := doJSON(t, router, "GET", "/api/inventory/recent-products?branchId=playa", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 soft failure, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if _, present := body["error"]; present {
		t.Error("error detail should be hidden outside development mode")
	}

	router.cfg.NodeEnv = "development"
	_, body = doJSON(t, router, "GET", "/api/inventory/recent-products?branchId=playa", nil)
	if body["error"] != "dial tcp: connection refused" {
		t.Errorf("expected raw error detail in development, got %v", body["error"])
	}
}

func TestSendAlert_NothingToSend(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{}, &models.AlertLog{})

	rec, body := doJSON(t, router, "POST", "/api/inventory/send-whatsapp-alert", map[string]interface{}{
		"alertDays": 7,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true || body["sent"] != false {
		t.Errorf("expected success with sent=false, got %v", body)
	}
}

func TestSendAlert_UnconfiguredChannelReportsErrorKind(t *testing.T) {
	router, gdb := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{}, &models.AlertLog{})

	gdb.Create(&models.ExtendedInventoryItem{
		BranchCode:     "playa",
		Barcode:        "111",
		Description:    "Yogurt",
		ExpirationDate: time.Now().AddDate(0, 0, 1),
		IsActive:       true,
	})

	rec, body := doJSON(t, router, "POST", "/api/inventory/send-whatsapp-alert", map[string]interface{}{
		"alertDays": 7,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false from null sender, got %v", body["success"])
	}
	if body["errorKind"] != notify.ErrKindNotConfigured {
		t.Errorf("expected errorKind %q, got %v", notify.ErrKindNotConfigured, body["errorKind"])
	}

	// The failed attempt still lands in the alert log
	var count int64
	gdb.Model(&models.AlertLog{}).Where("success = ?", false).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 failed alert log entry, got %d", count)
	}
}

func TestReportPDF_NotConfigured(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.ExtendedInventoryItem{})

	rec, body := doJSON(t, router, "GET", "/api/inventory/report/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 soft failure, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("expected success=false from null generator, got %v", body["success"])
	}
}

func TestBranches_RequireBearerToken(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.Branch{})

	req := httptest.NewRequest("GET", "/api/branches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBranchCRUD_EncryptsCredentials(t *testing.T) {
	router, gdb := newTestRouter(t, &fakeSource{}, &models.Branch{})

	rec, body := doJSON(t, router, "POST", "/api/branches", map[string]interface{}{
		"code":            "playa",
		"name":            "Playa Central",
		"catalogHost":     "10.0.0.5",
		"catalogUser":     "pos",
		"catalogPassword": "s3cret",
		"catalogDatabase": "pos_playa",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", rec.Code, body)
	}

	var branch models.Branch
	if err := gdb.Where("code = ?", "playa").First(&branch).Error; err != nil {
		t.Fatalf("branch not persisted: %v", err)
	}
	if branch.CatalogPassword == "s3cret" {
		t.Fatal("catalog password stored in plaintext")
	}
	decrypted, err := utils.DecryptCredential(branch.CatalogPassword, "test-encryption-key")
	if err != nil {
		t.Fatalf("failed to decrypt stored password: %v", err)
	}
	if decrypted != "s3cret" {
		t.Errorf("expected decrypted password s3cret, got %q", decrypted)
	}

	// The response must never leak the password
	data := body["data"].(map[string]interface{})
	if _, leaked := data["catalogPassword"]; leaked {
		t.Error("catalogPassword leaked in response")
	}

	rec, _ = doJSON(t, router, "DELETE", "/api/branches/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting unknown branch, got %d", rec.Code)
	}
}

func TestTicketLifecycle(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSource{}, &models.Ticket{})

	rec, body := doJSON(t, router, "POST", "/api/tickets", map[string]interface{}{
		"branchCode": "playa",
		"subject":    "Scanner broken",
		"priority":   "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	ref, _ := data["reference"].(string)
	if len(ref) != len("TCK-")+8 || ref[:4] != "TCK-" {
		t.Errorf("expected generated TCK- reference, got %q", ref)
	}
	if data["status"] != models.TicketStatusOpen {
		t.Errorf("expected open status, got %v", data["status"])
	}

	id := int(data["id"].(float64))
	path := "/api/tickets/" + strconv.Itoa(id)

	rec, _ = doJSON(t, router, "PUT", path, map[string]interface{}{"status": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", rec.Code)
	}

	rec, body = doJSON(t, router, "PUT", path, map[string]interface{}{"status": models.TicketStatusClosed})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating ticket, got %d", rec.Code)
	}
	if body["data"].(map[string]interface{})["status"] != models.TicketStatusClosed {
		t.Errorf("expected closed status after update")
	}

	rec, _ = doJSON(t, router, "DELETE", path, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 deleting ticket, got %d", rec.Code)
	}
	rec, _ = doJSON(t, router, "GET", path, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSalesSummary(t *testing.T) {
	source := &fakeSource{summary: &catalog.SalesSummary{
		BranchCode:   "playa",
		Transactions: 42,
		TotalAmount:  1234.5,
	}}
	router, _ := newTestRouter(t, source)

	rec, _ := doJSON(t, router, "GET", "/api/sales/summary", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without branchId, got %d", rec.Code)
	}

	rec, body := doJSON(t, router, "GET", "/api/sales/summary?branchId=playa", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["transactions"].(float64) != 42 {
		t.Errorf("expected 42 transactions, got %v", data["transactions"])
	}
}

func TestMonitorBranches_ReadsPersistedState(t *testing.T) {
	router, gdb := newTestRouter(t, &fakeSource{}, &models.Branch{}, &models.BranchMonitorState{})

	gdb.Create(&models.Branch{Code: "playa", Name: "Playa Central", Active: true, CatalogHost: "10.0.0.5"})
	gdb.Create(&models.Branch{Code: "puerto", Name: "Puerto Norte", Active: true, CatalogHost: "10.0.0.6"})
	gdb.Create(&models.BranchMonitorState{
		BranchCode:       "puerto",
		ErrorKind:        models.ErrorKindNetwork,
		ProblemStartedAt: time.Now().Add(-15 * time.Minute),
	})

	rec, body := doJSON(t, router, "GET", "/api/monitor/branches", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	summary := body["summary"].(map[string]interface{})
	if summary["healthy"].(float64) != 1 || summary["unhealthy"].(float64) != 1 {
		t.Fatalf("expected 1 healthy / 1 unhealthy, got %v", summary)
	}

	for _, raw := range body["data"].([]interface{}) {
		view := raw.(map[string]interface{})
		if view["branchCode"] == "puerto" {
			if view["healthy"] != false {
				t.Error("expected puerto unhealthy")
			}
			if view["errorKind"] != models.ErrorKindNetwork {
				t.Errorf("expected NETWORK kind, got %v", view["errorKind"])
			}
			if view["outageSeconds"].(float64) < 890 {
				t.Errorf("expected outage around 15 minutes, got %v", view["outageSeconds"])
			}
		}
	}
}
