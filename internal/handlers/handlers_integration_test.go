package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"katalog/internal/cache"
	"katalog/internal/handlers"
	"katalog/internal/jobs"
	"katalog/internal/logging"
	"katalog/internal/mail"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/server"
	"katalog/internal/services"
	"katalog/internal/workers"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app      *fiber.App
	userRepo *repositories.GORMUserRepository
	products *repositories.GORMProductRepository
	broker   *jobs.MemoryBroker
	redis    *miniredis.Miniredis
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *models.Meta    `json:"meta"`
}

// setupApp builds the application on in-memory SQLite, miniredis and the
// in-memory job broker, with workers running.
func setupApp(t *testing.T, throttle middleware.ThrottleConfig) *testEnv {
	t.Helper()
	logger := logging.Discard()

	db, err := repositories.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	mr := miniredis.RunT(t)
	store := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { store.Close() })

	broker := jobs.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })
	policy := jobs.Policy{Attempts: 1, Backoff: 10 * time.Millisecond}
	producer := jobs.NewProducer(broker, policy)
	mailer := mail.NewLogMailer(logger)

	userRepo := repositories.NewGORMUserRepository(db)
	brandRepo := repositories.NewGORMBrandRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	variantRepo := repositories.NewGORMVariantRepository(db)

	runner := jobs.NewRunner(broker, policy, logger)
	workers.Register(runner,
		workers.NewBrandWorker(productRepo, store, logger),
		workers.NewCategoryWorker(productRepo, store, logger),
		workers.NewProductWorker(userRepo, mailer, 1000, logger),
	)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go runner.Run(ctx)

	svc := server.Services{
		Auth: services.NewAuthService(userRepo, store, mailer, services.AuthConfig{
			AccessSecret:  "test_jwt_secret",
			RefreshSecret: "test_jwt_refresh_secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
			BcryptCost:    4,
			ClientHost:    "http://localhost:3000",
		}, logger),
		Users:      services.NewUserService(userRepo, store, time.Minute, logger),
		Brands:     services.NewBrandService(brandRepo, store, time.Minute, producer, logger),
		Categories: services.NewCategoryService(categoryRepo, store, time.Minute, producer, logger),
		Products:   services.NewProductService(productRepo, brandRepo, categoryRepo, store, time.Minute, producer, logger),
		Variants:   services.NewVariantService(variantRepo, store, time.Minute, logger),
	}

	app := server.New(svc, server.Options{
		APIPrefix: "/api/v1",
		Throttle:  throttle,
		HealthChecks: map[string]handlers.HealthCheck{
			"cache": store.Ping,
		},
		Logger: logger,
	})

	return &testEnv{app: app, userRepo: userRepo, products: productRepo, broker: broker, redis: mr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeData[T any](t *testing.T, resp *http.Response) (T, envelope) {
	t.Helper()
	env := decode[envelope](t, resp)
	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data, env
}

// login registers, activates and logs in an account, returning its access
// token and refresh cookie.
func (e *testEnv) login(t *testing.T, username string, roles ...string) (string, *http.Cookie) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"roles":    roles,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	user, err := e.userRepo.GetByUsernameOrEmail(context.Background(), username, username)
	require.NoError(t, err)
	resp = e.do(t, http.MethodGet, "/api/v1/auth/activation?activationCode="+user.ActivationCode, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"identifier": username,
		"password":   "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	data, _ := decodeData[map[string]string](t, resp)
	require.NotEmpty(t, data["accessToken"])
	return data["accessToken"], cookie
}

func TestAuthFlow(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})

	register := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp := env.do(t, http.MethodPost, "/api/v1/auth/register", register, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user, body := decodeData[map[string]any](t, resp)
	assert.Equal(t, "User registered successfully", body.Message)
	assert.Equal(t, false, user["isActive"])
	assert.NotContains(t, user, "password")

	// Duplicate registration
	resp = env.do(t, http.MethodPost, "/api/v1/auth/register", register, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "User already exists", errBody.Message)

	// Inactive accounts cannot log in
	login := map[string]string{"identifier": "test@example.com", "password": "password123"}
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", login, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/auth/activation?activationCode=nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	stored, err := env.userRepo.GetByUsernameOrEmail(context.Background(), "testuser", "testuser")
	require.NoError(t, err)
	resp = env.do(t, http.MethodGet, "/api/v1/auth/activation?activationCode="+stored.ActivationCode, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Wrong password looks like an unknown user
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "testuser", "password": "wrong"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", login, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	tokens, body := decodeData[map[string]string](t, resp)
	assert.Equal(t, "User logged in successfully", body.Message)
	access := tokens["accessToken"]

	resp = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, access)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	me, _ := decodeData[map[string]any](t, resp)
	assert.Equal(t, "testuser", me["username"])
	assert.Equal(t, []any{"user"}, me["roles"])

	// Refresh rotates the token; the old cookie stops working
	resp = env.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rotated *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			rotated = c
		}
	}
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, "", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody = decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "Token not found", errBody.Message)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, "", rotated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, "", rotated)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestChangePassword(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})
	token, _ := env.login(t, "changer")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"password": "wrong", "newPassword": "newpassword123",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"password": "password123", "newPassword": "short",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"password": "password123", "newPassword": "newpassword123",
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"identifier": "changer", "password": "newpassword123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestErrorEnvelope(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})

	resp := env.do(t, http.MethodGet, "/api/v1/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusNotFound, errBody.StatusCode)
	assert.False(t, errBody.Status)
	assert.Nil(t, errBody.Data)
	assert.Equal(t, "Route not found", errBody.Message)
	assert.Equal(t, "/api/v1/nowhere", errBody.Path)
	_, err := time.Parse(time.RFC3339, errBody.Timestamp)
	assert.NoError(t, err)

	resp = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errBody = decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "Unauthorized", errBody.Error)
}

func TestListQueryValidation(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})

	for _, query := range []string{
		"page=0",
		"limit=0",
		"limit=101",
		"order=up",
		"sort=password",
		"page=abc",
	} {
		resp := env.do(t, http.MethodGet, "/api/v1/brands?"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		errBody := decode[handlers.ErrorResponse](t, resp)
		assert.Equal(t, "Validation Error", errBody.Error, query)
	}

	resp := env.do(t, http.MethodGet, "/api/v1/products?brandId=not-an-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/brands?page=1&limit=100&sort=name&order=asc", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestBrandEndpointsGuard(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})
	userToken, _ := env.login(t, "shopper")
	adminToken, _ := env.login(t, "boss", models.RoleAdmin)

	brand := map[string]string{"name": "Nike"}

	resp := env.do(t, http.MethodPost, "/api/v1/brands", brand, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/brands", brand, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	errBody := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "You do not have permission for this resource", errBody.Message)

	resp = env.do(t, http.MethodPost, "/api/v1/brands", map[string]string{"name": "ab"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody = decode[handlers.ErrorResponse](t, resp)
	assert.Contains(t, errBody.Message, "name")

	resp = env.do(t, http.MethodPost, "/api/v1/brands", brand, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created, body := decodeData[models.Brand](t, resp)
	assert.Equal(t, "Brand created successfully", body.Message)
	assert.Equal(t, "nike", created.Slug)

	resp = env.do(t, http.MethodPost, "/api/v1/brands", brand, adminToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/brands/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/brands/"+created.ID, map[string]string{"name": "Nike Sportswear"}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated, _ := decodeData[models.Brand](t, resp)
	assert.Equal(t, "nike-sportswear", updated.Slug)

	resp = env.do(t, http.MethodGet, "/api/v1/brands?search=sport", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list, body := decodeData[[]models.Brand](t, resp)
	require.Len(t, list, 1)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 1, body.Meta.Total)
	assert.Equal(t, 50, body.Meta.Limit)

	resp = env.do(t, http.MethodGet, "/api/v1/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/users?roles=admin&isActive=true", nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	users, _ := decodeData[[]models.User](t, resp)
	require.Len(t, users, 1)
	assert.Equal(t, "boss", users[0].Username)
}

func TestCatalogLifecycle(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})
	admin, _ := env.login(t, "admin", models.RoleAdmin)

	resp := env.do(t, http.MethodPost, "/api/v1/brands", map[string]string{"name": "Adidas"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	brand, _ := decodeData[models.Brand](t, resp)

	resp = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Shoes"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category, _ := decodeData[models.Category](t, resp)
	assert.Equal(t, "shoes", category.Slug)

	resp = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Shoes"}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	product := map[string]any{
		"name":        "Ultraboost",
		"description": "Running shoe",
		"brand":       brand.ID,
		"category":    []string{category.ID},
		"variants": []map[string]any{
			{"color": "black", "size": "42", "price": 180, "quantity": 3},
			{"color": "white", "size": "43", "price": 160, "quantity": 2},
		},
	}
	resp = env.do(t, http.MethodPost, "/api/v1/products", product, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created, _ := decodeData[models.Product](t, resp)
	assert.Equal(t, "ultraboost", created.Slug)

	missingBrand := map[string]any{
		"name": "Orphan", "description": "No brand", "brand": uuid.NewString(),
		"category": []string{}, "variants": []any{},
	}
	resp = env.do(t, http.MethodPost, "/api/v1/products", missingBrand, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/products?brandId="+brand.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := decodeData[[]models.ProductListItem](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].TotalQuantity)
	require.NotNil(t, items[0].MinPrice)
	assert.Equal(t, 160.0, *items[0].MinPrice)
	assert.Equal(t, 180.0, *items[0].MaxPrice)

	resp = env.do(t, http.MethodPost, "/api/v1/product-variants/"+created.ID, map[string]any{
		"color": "black", "size": "42", "price": 10, "quantity": 1,
	}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/product-variants/"+created.ID, map[string]any{
		"color": "red", "size": "44", "price": 200, "quantity": 4,
	}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	variant, _ := decodeData[models.ProductVariant](t, resp)

	// The product list was invalidated by the new variant
	resp = env.do(t, http.MethodGet, "/api/v1/products?brandId="+brand.ID, nil, "")
	items, _ = decodeData[[]models.ProductListItem](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].TotalQuantity)

	resp = env.do(t, http.MethodGet, "/api/v1/product-variants?search=red", nil, "")
	variants, _ := decodeData[[]models.ProductVariant](t, resp)
	require.Len(t, variants, 1)

	resp = env.do(t, http.MethodDelete, "/api/v1/product-variants/"+variant.ID, nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	full, _ := decodeData[models.Product](t, resp)
	require.NotNil(t, full.Brand)
	assert.Equal(t, "Adidas", full.Brand.Name)
	assert.Len(t, full.Categories, 1)
	assert.Len(t, full.Variants, 2)

	// Deleting the brand and category detaches them from the product in the background
	resp = env.do(t, http.MethodDelete, "/api/v1/brands/"+brand.ID, nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodDelete, "/api/v1/categories/"+category.ID, nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		p, err := env.products.GetByID(context.Background(), created.ID)
		return err == nil && p.BrandID == nil && len(p.CategoryIDs) == 0
	}, 2*time.Second, 20*time.Millisecond)

	resp = env.do(t, http.MethodDelete, "/api/v1/products/"+created.ID, nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Empty(t, env.broker.Failed(jobs.QueueProduct))
}

func TestHealthAndThrottle(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	errBody := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "Too many requests", errBody.Message)
}

func TestHealthReportsCacheOutage(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})
	env.redis.Close()

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestProductListPaging(t *testing.T) {
	env := setupApp(t, middleware.ThrottleConfig{})
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		name := fmt.Sprintf("P%02d", i)
		require.NoError(t, env.products.Create(ctx, &models.Product{
			Name:        name,
			Slug:        strings.ToLower(name),
			Description: "Seeded product " + name,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}, nil))
	}

	resp := env.do(t, http.MethodGet, "/api/v1/products?page=2&limit=10&sort=createdAt&order=desc", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, body := decodeData[[]models.ProductListItem](t, resp)

	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 10, body.Meta.Limit)
	assert.Equal(t, 25, body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasNext)
	assert.True(t, body.Meta.HasPrev)
	require.NotNil(t, body.Meta.NextPage)
	require.NotNil(t, body.Meta.PrevPage)
	assert.Equal(t, 3, *body.Meta.NextPage)
	assert.Equal(t, 1, *body.Meta.PrevPage)

	require.Len(t, items, 10)
	assert.Equal(t, "P15", items[0].Name)
	assert.Equal(t, "P06", items[9].Name)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt), "createdAt must descend at %d", i)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/products?page=3&limit=10&sort=createdAt&order=desc", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, body = decodeData[[]models.ProductListItem](t, resp)
	require.Len(t, items, 5)
	assert.Equal(t, "P05", items[0].Name)
	assert.False(t, body.Meta.HasNext)
	assert.Nil(t, body.Meta.NextPage)
}
