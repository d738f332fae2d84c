package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"productsapi/internal/handlers"
	"productsapi/internal/models"
	"productsapi/internal/repositories"
	"productsapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app backed by a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return newApp(repositories.NewGORMProductRepository(db))
}

func newApp(repo repositories.ProductRepository) *fiber.App {
	productService := services.NewProductService(repo, nil, nil)
	productHandler := handlers.NewProductHandler(productService, nil)

	app := fiber.New()
	productHandler.RegisterRoutes(app.Group("/api"))
	return app
}

type productResponse struct {
	Data models.Product `json:"data"`
}

type errorsResponse struct {
	Errors []models.FieldError `json:"errors"`
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64) models.Product {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created productResponse
	decode(t, resp, &created)
	return created.Data
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{"name": "Monitor", "price": 300})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]map[string]interface{}
	decode(t, resp, &raw)
	data := raw["data"]
	assert.Equal(t, 300.0, data["price"])
	assert.Equal(t, true, data["availability"])
	assert.Equal(t, "Monitor", data["name"])
	assert.NotZero(t, data["id"])
	assert.NotContains(t, data, "createdAt")
	assert.NotContains(t, data, "updatedAt")
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty name", map[string]interface{}{"name": "", "price": 300}},
		{"missing name", map[string]interface{}{"price": 300}},
		{"zero price", map[string]interface{}{"name": "Monitor", "price": 0}},
		{"negative price", map[string]interface{}{"name": "Monitor", "price": -10}},
		{"text price", map[string]interface{}{"name": "Monitor", "price": "Hola"}},
		{"empty body", map[string]interface{}{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/products", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorsResponse
			decode(t, resp, &body)
			assert.NotEmpty(t, body.Errors)
		})
	}

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{})
	var body errorsResponse
	decode(t, resp, &body)
	assert.Len(t, body.Errors, 4, "name plus the three price checks")
}

func TestGetProducts(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var empty struct {
		Data []models.Product `json:"data"`
	}
	decode(t, resp, &empty)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)

	for _, name := range []string{"Laptop", "Keyboard", "Mouse"} {
		createProduct(t, app, name, 25)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []map[string]interface{} `json:"data"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Data, 3)
	for i := 1; i < len(list.Data); i++ {
		assert.Greater(t, list.Data[i-1]["id"], list.Data[i]["id"])
	}
	assert.Equal(t, "Mouse", list.Data[0]["name"])
	assert.NotContains(t, list.Data[0], "createdAt")
}

func TestGetProductByID(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched productResponse
	decode(t, resp, &fetched)
	assert.Equal(t, created, fetched.Data)

	resp = doJSON(t, app, http.MethodGet, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var notFound models.ErrorResponse
	decode(t, resp, &notFound)
	assert.Equal(t, "Prodcuto no encontrado", notFound.Error)
}

func TestInvalidIDNeverReachesHandler(t *testing.T) {
	repo := new(countingRepository)
	app := newApp(repo)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			var body interface{}
			if method == http.MethodPut {
				body = map[string]interface{}{"name": "X", "price": 50, "availability": false}
			}
			resp := doJSON(t, app, method, "/api/products/abc", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errs errorsResponse
			decode(t, resp, &errs)
			require.Len(t, errs.Errors, 1)
			assert.Equal(t, "ID no valido", errs.Errors[0].Msg)
			assert.Equal(t, "id", errs.Errors[0].Path)
		})
	}
	assert.Zero(t, repo.calls)
}

func TestSignedAndPaddedIDs(t *testing.T) {
	repo := new(countingRepository)
	app := newApp(repo)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			var body interface{}
			if method == http.MethodPut {
				body = map[string]interface{}{"name": "X", "price": 50, "availability": false}
			}
			resp := doJSON(t, app, method, "/api/products/-1", body)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			var notFound models.ErrorResponse
			decode(t, resp, &notFound)
			assert.Equal(t, "Prodcuto no encontrado", notFound.Error)

			resp = doJSON(t, app, method, "/api/products/007", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var errs errorsResponse
			decode(t, resp, &errs)
			require.Len(t, errs.Errors, 1)
			assert.Equal(t, "ID no valido", errs.Errors[0].Msg)
		})
	}
	assert.Zero(t, repo.calls)
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)
	target := fmt.Sprintf("/api/products/%d", created.ID)

	resp := doJSON(t, app, http.MethodPut, target, map[string]interface{}{"name": "X", "price": 50, "availability": false})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated productResponse
	decode(t, resp, &updated)
	assert.Equal(t, created.ID, updated.Data.ID)
	assert.Equal(t, "X", updated.Data.Name)
	assert.Equal(t, 50.0, updated.Data.Price)
	assert.False(t, updated.Data.Availability)

	resp = doJSON(t, app, http.MethodGet, target, nil)
	var fetched productResponse
	decode(t, resp, &fetched)
	assert.Equal(t, updated.Data, fetched.Data)
}

func TestUpdateProductValidation(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)
	target := fmt.Sprintf("/api/products/%d", created.ID)

	resp := doJSON(t, app, http.MethodPut, target, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errs errorsResponse
	decode(t, resp, &errs)
	assert.Len(t, errs.Errors, 5)

	resp = doJSON(t, app, http.MethodPut, target, map[string]interface{}{"name": "X", "price": 0, "availability": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &errs)
	msgs := make([]string, 0, len(errs.Errors))
	for _, e := range errs.Errors {
		msgs = append(msgs, e.Msg)
	}
	assert.ElementsMatch(t, []string{"Precio no valido", "Valor para disponibilidad no valido"}, msgs)

	resp = doJSON(t, app, http.MethodPut, "/api/products/2000", map[string]interface{}{"name": "X", "price": 50, "availability": false})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateAvailabilityIsInvolution(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)
	target := fmt.Sprintf("/api/products/%d", created.ID)

	resp := doJSON(t, app, http.MethodPatch, target, map[string]interface{}{"availability": true, "name": "ignored"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var first productResponse
	decode(t, resp, &first)
	assert.Equal(t, !created.Availability, first.Data.Availability)
	assert.Equal(t, "Monitor", first.Data.Name, "body is ignored")

	resp = doJSON(t, app, http.MethodPatch, target, nil)
	var second productResponse
	decode(t, resp, &second)
	assert.Equal(t, created.Availability, second.Data.Availability)

	resp = doJSON(t, app, http.MethodPatch, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)
	target := fmt.Sprintf("/api/products/%d", created.ID)

	resp := doJSON(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted struct {
		Data string `json:"data"`
	}
	decode(t, resp, &deleted)
	assert.Equal(t, "Producto Eliminado", deleted.Data)

	resp = doJSON(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPersistenceErrorsAnswer500(t *testing.T) {
	app := newApp(failingRepository{})

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{"name": "Monitor", "price": 300})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.NotEmpty(t, body.Error)

	resp = doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

// countingRepository records how often it is reached.
type countingRepository struct {
	repositories.MemoryProductRepository
	calls int
}

func (r *countingRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	r.calls++
	return nil, repositories.ErrProductNotFound
}

func (r *countingRepository) Delete(ctx context.Context, id uint) error {
	r.calls++
	return repositories.ErrProductNotFound
}

// failingRepository simulates an unreachable database.
type failingRepository struct{}

var errDatabaseDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func (failingRepository) GetAll(context.Context) ([]models.Product, error) {
	return nil, errDatabaseDown
}

func (failingRepository) GetByID(context.Context, uint) (*models.Product, error) {
	return nil, errDatabaseDown
}

func (failingRepository) Create(context.Context, *models.Product) error {
	return errDatabaseDown
}

func (failingRepository) Update(context.Context, *models.Product) error {
	return errDatabaseDown
}

func (failingRepository) Delete(context.Context, uint) error {
	return errDatabaseDown
}
