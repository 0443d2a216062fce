package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/app"
	"storefront/internal/cache"
	"storefront/internal/services"
)

// setupApp builds the full application over a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, *app.Services) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	store := app.NewStoreFromDB(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	fiberApp, svc := app.New(app.Deps{
		Store:     store,
		Cache:     cache.NoopProductCache{},
		Events:    services.NoopPublisher{},
		JWTSecret: "test_jwt_secret",
		Log:       zap.NewNop(),
	})
	return fiberApp, svc
}

func do(t *testing.T, a *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, a, req, token)
}

func send(t *testing.T, a *fiber.App, req *http.Request, token string) (int, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out
}

func login(t *testing.T, a *fiber.App) string {
	t.Helper()
	status, _ := do(t, a, http.MethodPost, "/api/v1/admin/auth/register", "", map[string]string{
		"username": "admin",
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, a, http.MethodPost, "/api/v1/admin/auth/login", "", map[string]string{
		"username": "admin",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedOptions(t *testing.T, a *fiber.App, token string) map[string]string {
	t.Helper()
	ids := map[string]string{}
	for name, values := range map[string][]string{
		"Color":   {"Black", "White"},
		"Storage": {"128GB", "256GB"},
	} {
		status, body := do(t, a, http.MethodPost, "/api/v1/admin/options", token, map[string]any{"name": name, "values": values})
		require.Equal(t, http.StatusCreated, status)
		ids[name] = body["id"].(string)
	}
	return ids
}

func attr(option, value string) map[string]string {
	return map[string]string{"optionName": option, "value": value}
}

// createPhone creates product P: (Black,128GB,$10), (Black,256GB,$12), (White,128GB,$11).
func createPhone(t *testing.T, a *fiber.App, token string) map[string]any {
	t.Helper()
	status, body := do(t, a, http.MethodPost, "/api/v1/admin/products", token, map[string]any{
		"name":          "Phone X",
		"price":         10,
		"specification": `{"screen":"6.1in"}`,
		"variants": []map[string]any{
			{"attributes": []any{attr("Color", "Black"), attr("Storage", "128GB")}, "price": 10, "stock": 5},
			{"attributes": []any{attr("Color", "Black"), attr("Storage", "256GB")}, "price": "12", "stock": "3", "discount": 9},
			{"attributes": []any{attr("Color", "White"), attr("Storage", "128GB")}, "price": 11, "stock": 2},
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["product"].(map[string]any)
}

func variantIDs(product map[string]any) []string {
	var ids []string
	for _, v := range product["variants"].([]any) {
		ids = append(ids, v.(map[string]any)["id"].(string))
	}
	return ids
}

func TestAdminAuth(t *testing.T) {
	a, svc := setupApp(t)
	token := login(t, a)

	claims, err := svc.Auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	status, _ := do(t, a, http.MethodPost, "/api/v1/admin/auth/register", "", map[string]string{
		"username": "mallory", "email": "mallory@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodPost, "/api/v1/admin/auth/login", "", map[string]string{
		"username": "mallory", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodPost, "/api/v1/admin/auth/register", "", map[string]string{
		"username": "admin", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodPost, "/api/v1/admin/auth/register", token, map[string]string{
		"username": "admin", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := do(t, a, http.MethodPost, "/api/v1/admin/auth/register", token, map[string]string{
		"username": "x", "email": "bad", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	status, body = do(t, a, http.MethodPost, "/api/v1/admin/auth/register", token, map[string]string{
		"username": "editor", "email": "editor@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, body["admin"], "password")

	status, _ = do(t, a, http.MethodPost, "/api/v1/admin/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodGet, "/api/v1/admin/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodGet, "/api/v1/admin/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOptionEndpoints(t *testing.T) {
	a, _ := setupApp(t)
	token := login(t, a)
	ids := seedOptions(t, a, token)

	status, _ := do(t, a, http.MethodPost, "/api/v1/admin/options", token, map[string]any{"name": "Color", "values": []string{"Red"}})
	assert.Equal(t, http.StatusConflict, status)

	status, body := do(t, a, http.MethodPut, "/api/v1/admin/options/"+ids["Storage"], token, map[string]any{
		"name": "Storage", "values": []string{"128GB", "256GB", "512GB"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["values"], 3)

	status, _ = do(t, a, http.MethodDelete, "/api/v1/admin/options/"+ids["Storage"], token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, a, http.MethodGet, "/api/v1/admin/options/"+ids["Storage"], token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductAdminEndpoints(t *testing.T) {
	a, _ := setupApp(t)
	token := login(t, a)
	ids := seedOptions(t, a, token)
	product := createPhone(t, a, token)

	assert.Equal(t, "phone-x", product["slug"])
	assert.Equal(t, map[string]any{"screen": "6.1in"}, product["specification"])
	first := product["variants"].([]any)[0].(map[string]any)
	firstAttr := first["attributes"].([]any)[0].(map[string]any)
	assert.Equal(t, ids["Color"], firstAttr["optionId"])
	assert.Equal(t, "Color", firstAttr["optionName"])

	productID := product["id"].(string)
	vids := variantIDs(product)

	// price-only update through a urlencoded form keeps the attributes
	form := url.Values{}
	form.Set("variants[0][id]", vids[0])
	form.Set("variants[0][price]", "15")
	form.Set("variants[1][id]", vids[1])
	form.Set("variants[1][discount]", "")
	form.Set("variants[2][id]", vids[2])
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	status, body := send(t, a, req, token)
	require.Equal(t, http.StatusOK, status, body)

	updated := body["product"].(map[string]any)
	variants := updated["variants"].([]any)
	require.Len(t, variants, 3)
	v0 := variants[0].(map[string]any)
	assert.Equal(t, 15.0, v0["price"])
	assert.Equal(t, first["attributes"], v0["attributes"])
	assert.Nil(t, variants[1].(map[string]any)["discount"])

	// new variant through the form with option ids
	form = url.Values{}
	form.Set("variants[0][id]", vids[0])
	form.Set("variants[1][attributes][0][option]", ids["Color"])
	form.Set("variants[1][attributes][0][value]", "White")
	form.Set("variants[1][attributes][1][option]", ids["Storage"])
	form.Set("variants[1][attributes][1][value]", "256GB")
	form.Set("variants[1][price]", "13")
	req = httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	status, body = send(t, a, req, token)
	require.Equal(t, http.StatusUnprocessableEntity, status, body)
	assert.Equal(t, 1.0, body["variantIndex"])
	assert.Equal(t, "stock", body["field"])

	status, body = do(t, a, http.MethodGet, "/api/v1/admin/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["variants"], 3)

	// duplicate combination
	status, body = do(t, a, http.MethodPut, "/api/v1/admin/products/"+productID, token, map[string]any{
		"variants": []map[string]any{
			{"id": vids[0]},
			{"attributes": []any{attr("Storage", "128GB"), attr("Color", "Black")}, "price": 9, "stock": 1},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	// broken specification
	status, body = do(t, a, http.MethodPut, "/api/v1/admin/products/"+productID, token, map[string]any{
		"specification": "{screen: 6.1}",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid specification format. Expected a valid JSON string.", body["message"])

	// an explicit empty list in a form removes every variant
	form = url.Values{}
	form.Set("variants", "[]")
	req = httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	status, body = send(t, a, req, token)
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, body["product"].(map[string]any)["variants"])

	status, _ = do(t, a, http.MethodDelete, "/api/v1/admin/products/"+productID, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, a, http.MethodGet, "/api/v1/products/phone-x", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStorefrontEndpoints(t *testing.T) {
	a, _ := setupApp(t)
	token := login(t, a)
	seedOptions(t, a, token)
	product := createPhone(t, a, token)

	status, body := do(t, a, http.MethodGet, "/api/v1/products/phone-x", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Color", "Storage"}, body["optionOrder"])
	assert.Equal(t, "empty", body["state"])
	assert.True(t, body["hasVariants"].(bool))

	// Scenario A
	status, body = do(t, a, http.MethodPost, "/api/v1/products/phone-x/availability", "", map[string]any{
		"selection": map[string]string{"Color": "White"},
	})
	require.Equal(t, http.StatusOK, status)
	storage := body["options"].([]any)[1].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"value": "128GB", "available": true},
		map[string]any{"value": "256GB", "available": false},
	}, storage["values"])

	// Scenario B
	status, body = do(t, a, http.MethodPost, "/api/v1/products/phone-x/resolve", "", map[string]any{
		"selection": map[string]string{"Color": "Black", "Storage": "256GB"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 12.0, body["variant"].(map[string]any)["price"])
	price := body["displayPrice"].(map[string]any)
	assert.Equal(t, 9.0, price["offerPrice"])
	assert.Equal(t, 25.0, price["discountPercent"])

	// Scenario C
	status, body = do(t, a, http.MethodPost, "/api/v1/products/phone-x/choose", "", map[string]any{
		"selection": map[string]string{}, "option": "Storage", "value": "256GB",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = do(t, a, http.MethodPost, "/api/v1/products/phone-x/choose", "", map[string]any{
		"selection": map[string]string{"Color": "Black", "Storage": "256GB"}, "option": "Color", "value": "White",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"Color": "White"}, body["selection"])
	assert.Equal(t, "Please select all variant options", body["message"])

	status, body = do(t, a, http.MethodPost, "/api/v1/products/phone-x/resolve", "", map[string]any{
		"selection": map[string]string{"Color": "White", "Storage": "256GB"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["variant"])
	assert.Equal(t, "options unavailable", body["message"])

	productID := product["id"].(string)
	status, _ = do(t, a, http.MethodGet, "/api/v1/products/"+productID+"/order-details", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	vids := variantIDs(product)
	status, body = do(t, a, http.MethodGet, "/api/v1/products/"+productID+"/order-details?variantId="+vids[1], "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["variant"])
}

func TestCartEndpoints(t *testing.T) {
	a, _ := setupApp(t)
	token := login(t, a)
	seedOptions(t, a, token)
	product := createPhone(t, a, token)
	productID := product["id"].(string)
	vids := variantIDs(product)

	status, cart := do(t, a, http.MethodPost, "/api/v1/carts", "", map[string]any{
		"items": []map[string]any{{"productId": productID, "variantId": vids[0], "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, cart)
	assert.Equal(t, 20.0, cart["total"])
	cartID := cart["id"].(string)

	status, cart = do(t, a, http.MethodPost, "/api/v1/carts/"+cartID+"/items", "", map[string]any{
		"productId": productID,
		"selection": map[string]string{"Color": "Black", "Storage": "256GB"},
		"quantity":  1,
	})
	require.Equal(t, http.StatusOK, status, cart)
	assert.Equal(t, 29.0, cart["total"])

	status, body := do(t, a, http.MethodPost, "/api/v1/carts/"+cartID+"/items", "", map[string]any{
		"productId": productID, "variantId": vids[0], "quantity": 4,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = do(t, a, http.MethodPost, "/api/v1/carts/"+cartID+"/items", "", map[string]any{
		"productId": productID, "selection": map[string]string{"Color": "Black"}, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please select all variant options", body["message"])

	status, cart = do(t, a, http.MethodGet, "/api/v1/carts/"+cartID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, cart["items"], 2)

	status, _ = do(t, a, http.MethodGet, "/api/v1/carts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	a, _ := setupApp(t)

	status, body := do(t, a, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = do(t, a, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["raw"], "storefront_http_requests_total")
}
