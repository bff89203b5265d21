package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/loyaltyworks/loyalty-backend/pkg/config"
	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"

	"github.com/loyaltyworks/loyalty-backend/internal/customers"
)

type noopCustomerService struct{}

func (noopCustomerService) List(ctx context.Context) []models.Customer { return []models.Customer{} }
func (noopCustomerService) Search(ctx context.Context, query string) []models.Customer {
	return []models.Customer{}
}
func (noopCustomerService) PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}
func (noopCustomerService) Create(ctx context.Context, input customers.CreateCustomerInput) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (noopCustomerService) Update(ctx context.Context, id uuid.UUID, input customers.UpdateCustomerInput) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (noopCustomerService) AdjustPoints(ctx context.Context, id uuid.UUID, delta int) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (noopCustomerService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

type noopAuditService struct{}

func (noopAuditService) RecentLogs(ctx context.Context, limit int) []models.AuditLog {
	return []models.AuditLog{}
}
func (noopAuditService) LogsForCustomer(ctx context.Context, customerID uuid.UUID) []models.AuditLog {
	return []models.AuditLog{}
}
func (noopAuditService) LogsByAction(ctx context.Context, action enums.AuditAction, limit int) []models.AuditLog {
	return []models.AuditLog{}
}

func newTestRouter() http.Handler {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	return NewRouter(cfg, nil, nil, nil, nil, noopCustomerService{}, noopAuditService{})
}

func TestRouterWiring(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health live", http.MethodGet, "/health/live", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"list customers", http.MethodGet, "/api/v1/customers", http.StatusOK},
		{"phone check missing param", http.MethodGet, "/api/v1/customers/phone-check", http.StatusBadRequest},
		{"recent audit logs", http.MethodGet, "/api/v1/audit-logs", http.StatusOK},
		{"customer audit logs", http.MethodGet, "/api/v1/customers/" + uuid.NewString() + "/audit-logs", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/vouchers", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, rec.Code)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id header")
	}
}
