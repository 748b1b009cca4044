package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ws "github.com/lorrc/queue-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/queue-backend/internal/adapters/secondary/memory"
	"github.com/lorrc/queue-backend/internal/adapters/secondary/sms"
	"github.com/lorrc/queue-backend/internal/auth"
	"github.com/lorrc/queue-backend/internal/core/domain"
	"github.com/lorrc/queue-backend/internal/core/mocks"
	"github.com/lorrc/queue-backend/internal/core/services"
)

type apiFixture struct {
	server     *httptest.Server
	staffToken string
	adminToken string
	serviceID  string
}

// newAPIFixture wires the full router over the in-memory adapters, seeds one
// service, and issues staff and admin tokens.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ticketRepo := memory.NewTicketRepository()
	serviceRepo := memory.NewServiceRepository()
	userRepo := memory.NewUserRepository()

	qrGen := &mocks.MockQRGenerator{}
	qrGen.On("GeneratePNG", mock.Anything, mock.Anything).Return("qr-png", nil)

	hub := ws.NewHub(logger)
	go hub.Run()

	tokenManager := auth.NewTokenManager("router-test-secret", time.Hour)
	queueService := services.NewQueueService(ticketRepo, serviceRepo, hub,
		sms.NewLogNotifier(logger), logger, services.QueueConfig{})
	catalogService := services.NewCatalogService(serviceRepo, ticketRepo, qrGen,
		logger, "https://queue.example.com")
	authService := services.NewAuthService(userRepo, tokenManager, logger)

	ctx := context.Background()
	require.NoError(t, authService.EnsureAdmin(ctx, "admin", "admin-password"))
	staff, err := domain.NewUser("staff1", "staff-password", domain.RoleStaff)
	require.NoError(t, err)
	_, err = userRepo.Create(ctx, staff)
	require.NoError(t, err)

	staffToken, err := tokenManager.GenerateToken(staff)
	require.NoError(t, err)
	admin, err := userRepo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	adminToken, err := tokenManager.GenerateToken(admin)
	require.NoError(t, err)

	service, err := catalogService.CreateService(ctx, domain.ServiceParams{
		Name:                 "Front Desk",
		EstimatedServiceTime: 5,
	})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:         logger,
		TokenManager:   tokenManager,
		AllowedOrigins: []string{"*"},
		Queue:          NewQueueHandler(queueService, logger),
		Services:       NewServiceHandler(catalogService, logger),
		Auth:           NewAuthHandler(authService, logger),
		Health:         NewHealthHandler(nil),
		Hub:            hub,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiFixture{
		server:     server,
		staffToken: staffToken,
		adminToken: adminToken,
		serviceID:  service.ID.String(),
	}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestQueueFlow(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPost, "/api/v1/services/"+f.serviceID+"/queue", "", JoinQueueRequest{
		CustomerName: "Alice",
		Priority:     "normal",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["ticketNumber"])
	assert.Equal(t, "waiting", body["status"])
	assert.Equal(t, float64(1), body["position"])
	ticketID := body["id"].(string)

	t.Run("status endpoint recomputes position", func(t *testing.T) {
		resp, body := f.request(t, http.MethodGet, "/api/v1/tickets/"+ticketID, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["position"])
		assert.Equal(t, float64(0), data["estimatedWaitMinutes"])
	})

	t.Run("call next requires auth", func(t *testing.T) {
		resp, _ := f.request(t, http.MethodPost, "/api/v1/admin/services/"+f.serviceID+"/queue/next", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("staff calls and serves the ticket", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/admin/services/"+f.serviceID+"/queue/next", f.staffToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "called", data["status"])

		resp, body = f.request(t, http.MethodPatch, "/api/v1/admin/tickets/"+ticketID+"/status", f.staffToken,
			UpdateStatusRequest{Status: "serving"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data = body["data"].(map[string]any)
		assert.Equal(t, "serving", data["status"])

		resp, body = f.request(t, http.MethodPost, "/api/v1/admin/tickets/"+ticketID+"/complete", f.staffToken,
			UpdateStatusRequest{Notes: "done"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data = body["data"].(map[string]any)
		assert.Equal(t, "completed", data["status"])
		assert.Equal(t, "done", data["notes"])
	})

	t.Run("illegal transition surfaces as conflict", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPatch, "/api/v1/admin/tickets/"+ticketID+"/status", f.staffToken,
			UpdateStatusRequest{Status: "serving"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", body["code"])
	})

	t.Run("empty queue on call next", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/admin/services/"+f.serviceID+"/queue/next", f.staffToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "EMPTY_QUEUE", body["code"])
	})
}

func TestJoinValidation(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("bad priority", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/services/"+f.serviceID+"/queue", "",
			JoinQueueRequest{Priority: "vip"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("bad phone", func(t *testing.T) {
		resp, _ := f.request(t, http.MethodPost, "/api/v1/services/"+f.serviceID+"/queue", "",
			JoinQueueRequest{CustomerPhone: "not-a-phone"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown service", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/services/00000000-0000-0000-0000-000000000001/queue", "",
			JoinQueueRequest{})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "SERVICE_NOT_FOUND", body["code"])
	})
}

func TestAdminCatalogAccess(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("staff cannot create services", func(t *testing.T) {
		resp, _ := f.request(t, http.MethodPost, "/api/v1/admin/services", f.staffToken,
			CreateServiceRequest{Name: "New Desk"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin creates a service with a QR code", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/admin/services", f.adminToken,
			CreateServiceRequest{Name: "New Desk", EstimatedServiceTime: 3})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "qr-png", body["qrCode"])
	})

	t.Run("deactivation blocked by active tickets", func(t *testing.T) {
		resp, _ := f.request(t, http.MethodPost, "/api/v1/services/"+f.serviceID+"/queue", "",
			JoinQueueRequest{CustomerName: "Bob"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := f.request(t, http.MethodDelete, "/api/v1/admin/services/"+f.serviceID, f.adminToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "SERVICE_HAS_ACTIVE_TICKETS", body["code"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "admin", Password: "admin-password"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, "admin", data["role"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "admin", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})
}
