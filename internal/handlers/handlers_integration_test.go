package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"watchshop/internal/database"
	"watchshop/internal/handlers"
	"watchshop/internal/models"
	"watchshop/internal/repositories"
	"watchshop/internal/services"
)

const testJWTSecret = "test_jwt_secret"

type testEnv struct {
	app   *fiber.App
	store repositories.Store
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.Connect(database.DriverSQLite, "file:"+uuid.New().String()+"?mode=memory&cache=shared", logger)
	require.NoError(t, err)

	store := repositories.NewGORMStore(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, testJWTSecret, logger)
	require.NoError(t, authService.EnsureAdmin("admin", "admin@example.com", "adminpassword"))

	api := handlers.NewAPI(
		authService,
		services.NewCatalogService(store, logger),
		services.NewAssemblyService(store, logger),
		services.NewOrderService(store, nil, nil, logger),
		logger,
	)

	app := fiber.New()
	api.Register(app.Group("/api/v1"), authService, logger)
	return &testEnv{app: app, store: store}
}

// do sends a JSON request and decodes the JSON response into out when out is not nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	var loginResp map[string]string
	status := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &loginResp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func (e *testEnv) registerCustomer(t *testing.T, username string) string {
	t.Helper()
	status := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	return e.login(t, username, "password123")
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	var registerResp map[string]interface{}
	status := env.do(t, http.MethodPost, "/api/v1/auth/register", "", userToRegister, &registerResp)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	user := registerResp["user"].(map[string]interface{})
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "password")

	// Duplicate registration
	status = env.do(t, http.MethodPost, "/api/v1/auth/register", "", userToRegister, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Invalid registration
	var invalidResp map[string]interface{}
	status = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "ab"}, &invalidResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, invalidResp["errors"], "username")
	assert.Contains(t, invalidResp["errors"], "email")

	assert.NotEmpty(t, env.login(t, "testuser", "password123"))

	status = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEndpointsWithoutAuth(t *testing.T) {
	env := setupApp(t)

	for _, path := range []string{"/api/v1/watches", "/api/v1/orders", "/api/v1/custom-watches", "/api/v1/admin/orders"} {
		status := env.do(t, http.MethodGet, path, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := setupApp(t)
	customer := env.registerCustomer(t, "customer")

	status := env.do(t, http.MethodPost, "/api/v1/admin/watches", customer, map[string]interface{}{
		"name": "Forged", "price": "10.00", "stock": 1, "reference": "FORGED",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = env.do(t, http.MethodGet, "/api/v1/admin/orders", customer, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+uuid.New().String()+"/status", customer,
		map[string]string{"status": "CANCELLED"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin", "adminpassword")
	customer := env.registerCustomer(t, "browser")

	var watch models.Watch
	status := env.do(t, http.MethodPost, "/api/v1/admin/watches", admin, map[string]interface{}{
		"name":        "Seamaster",
		"description": "Diver",
		"price":       "100.00",
		"stock":       3,
		"reference":   "210.30.42",
	}, &watch)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, watch.ID)

	var invalid map[string]interface{}
	status = env.do(t, http.MethodPost, "/api/v1/admin/components", admin, map[string]interface{}{
		"name": "Gearbox", "type": "GEARBOX", "price": "5.00", "stock": 1,
	}, &invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, invalid["errors"], "type")

	var watches []models.Watch
	status = env.do(t, http.MethodGet, "/api/v1/watches", customer, nil, &watches)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, watches, 1)

	var updated models.Watch
	status = env.do(t, http.MethodPut, "/api/v1/admin/watches/"+watch.ID, admin, map[string]interface{}{
		"name":      "Seamaster 300",
		"price":     "120.00",
		"stock":     999,
		"reference": "210.30.42",
	}, &updated)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Seamaster 300", updated.Name)
	assert.Equal(t, 3, updated.Stock)

	var snapshot map[string]interface{}
	status = env.do(t, http.MethodGet, "/api/v1/admin/catalog/watch/"+watch.ID, admin, nil, &snapshot)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), snapshot["stock"])

	status = env.do(t, http.MethodGet, "/api/v1/admin/catalog/gadget/"+watch.ID, admin, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.do(t, http.MethodDelete, "/api/v1/admin/watches/"+watch.ID, admin, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status = env.do(t, http.MethodGet, "/api/v1/watches/"+watch.ID, customer, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateWatchDuplicateReference(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin", "adminpassword")

	watch := map[string]interface{}{
		"name": "Seamaster", "price": "100.00", "stock": 3, "reference": "DUP-1",
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/admin/watches", admin, watch, nil))

	var resp map[string]interface{}
	status := env.do(t, http.MethodPost, "/api/v1/admin/watches", admin, watch, &resp)
	assert.Equal(t, http.StatusConflict, status)
	assert.NotContains(t, resp["error"], "UNIQUE")

	var other models.Watch
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/admin/watches", admin, map[string]interface{}{
		"name": "Speedmaster", "price": "200.00", "stock": 1, "reference": "DUP-2",
	}, &other))
	status = env.do(t, http.MethodPut, "/api/v1/admin/watches/"+other.ID, admin, map[string]interface{}{
		"name": "Speedmaster", "price": "200.00", "reference": "DUP-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestOrderFlow(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin", "adminpassword")
	alice := env.registerCustomer(t, "alice")
	bob := env.registerCustomer(t, "bob")

	var watch models.Watch
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/admin/watches", admin, map[string]interface{}{
		"name": "Seamaster", "price": "100.00", "stock": 3, "reference": "SM-300",
	}, &watch))
	var dial, strap models.Component
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/admin/components", admin, map[string]interface{}{
		"name": "Blue Dial", "type": "DIAL", "price": "50.00", "stock": 2,
	}, &dial))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/admin/components", admin, map[string]interface{}{
		"name": "Leather Strap", "type": "STRAP", "price": "30.00", "stock": 2,
	}, &strap))

	// Assemble a custom watch.
	var customWatch models.CustomWatch
	status := env.do(t, http.MethodPost, "/api/v1/custom-watches", alice, map[string]interface{}{
		"name":          "Weekend",
		"component_ids": []string{dial.ID, strap.ID},
	}, &customWatch)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, decimal.NewFromInt(80).Equal(customWatch.TotalPrice))

	// Order two watches and the custom watch.
	var order models.Order
	status = env.do(t, http.MethodPost, "/api/v1/orders", alice, map[string]interface{}{
		"items": []map[string]interface{}{
			{"watch_id": watch.ID, "quantity": 2},
			{"custom_watch_id": customWatch.ID, "quantity": 1},
		},
	}, &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, decimal.NewFromInt(280).Equal(order.TotalAmount), "total was %s", order.TotalAmount)

	var stocked models.Watch
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/watches/"+watch.ID, alice, nil, &stocked))
	assert.Equal(t, 1, stocked.Stock)

	// Too many.
	var short map[string]interface{}
	status = env.do(t, http.MethodPost, "/api/v1/orders", alice, map[string]interface{}{
		"items": []map[string]interface{}{{"watch_id": watch.ID, "quantity": 2}},
	}, &short)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, short["error"], "insufficient stock")

	// Invalid line.
	status = env.do(t, http.MethodPost, "/api/v1/orders", alice, map[string]interface{}{
		"items": []map[string]interface{}{{"watch_id": watch.ID, "quantity": 0}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Bob can neither see Alice's order nor buy her custom watch.
	status = env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, bob, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = env.do(t, http.MethodPost, "/api/v1/orders", bob, map[string]interface{}{
		"items": []map[string]interface{}{{"custom_watch_id": customWatch.ID, "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var own []models.Order
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/orders", alice, nil, &own))
	assert.Len(t, own, 1)

	// Admin cancels, stock comes back.
	var cancelled models.Order
	status = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", admin,
		map[string]string{"status": "CANCELLED"}, &cancelled)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/watches/"+watch.ID, alice, nil, &stocked))
	assert.Equal(t, 3, stocked.Stock)

	status = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", admin,
		map[string]string{"status": "SHIPPED"}, nil)
	assert.Equal(t, http.StatusConflict, status)
	status = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", admin,
		map[string]string{"status": "LOST"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+uuid.New().String()+"/status", admin,
		map[string]string{"status": "SHIPPED"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var all []models.Order
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/admin/orders", admin, nil, &all))
	assert.Len(t, all, 1)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	logger := zap.NewNop()
	db, err := database.Connect(database.DriverSQLite, "file:"+uuid.New().String()+"?mode=memory&cache=shared", logger)
	require.NoError(t, err)
	store := repositories.NewGORMStore(db)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), testJWTSecret, logger)
	require.NoError(t, authService.EnsureAdmin("admin", "admin@example.com", "adminpassword"))

	api := handlers.NewAPI(
		authService,
		services.NewCatalogService(store, logger),
		services.NewAssemblyService(store, logger),
		services.NewOrderService(store, nil, &keyStore{keys: map[string]string{}}, logger),
		logger,
	)
	app := fiber.New()
	api.Register(app.Group("/api/v1"), authService, logger)
	env := &testEnv{app: app, store: store}

	watch := &models.Watch{Name: "Seamaster", Price: decimal.NewFromInt(100), Stock: 3, Reference: "SM-1"}
	require.NoError(t, store.Repos(context.Background()).Watches.Create(watch))
	token := env.login(t, "admin", "adminpassword")

	place := func() (int, models.Order) {
		body, _ := json.Marshal(map[string]interface{}{
			"items": []map[string]interface{}{{"watch_id": watch.ID, "quantity": 1}},
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(handlers.IdempotencyKeyHeader, "retry-1")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var order models.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
		return resp.StatusCode, order
	}

	status, first := place()
	assert.Equal(t, http.StatusCreated, status)
	status, second := place()
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.ID, second.ID)

	stored, err := store.Repos(context.Background()).Watches.GetByID(watch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)
}

// keyStore is an in-process services.IdempotencyStore.
type keyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func (s *keyStore) Claim(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = ""
	return true, nil
}

func (s *keyStore) Remember(ctx context.Context, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = orderID
	return nil
}

func (s *keyStore) Recall(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *keyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
