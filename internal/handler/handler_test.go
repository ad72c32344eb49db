package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/handler/middleware"
	"github.com/keymint/keymint-api/internal/service"
	"github.com/keymint/keymint-api/internal/storage/jsonfile"
	"github.com/keymint/keymint-api/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminKey = "test-admin-key"

// newTestRouter wires the route layout of cmd/server against a file store
// in a temp dir: public claim route, admin routes behind the API key check.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	dir := t.TempDir()

	keyRepo := jsonfile.NewKeyRepository(filepath.Join(dir, "keys.json"), nil, logger)
	productRepo := jsonfile.NewProductRepository(filepath.Join(dir, "products.json"), nil, logger)

	productService := service.NewProductService(productRepo, logger)
	keyService := service.NewKeyService(keyRepo, productService, logger)
	claimService := service.NewClaimService(keyRepo, productService, logger)

	claimHandler := NewClaimHandler(claimService, logger)
	keyHandler := NewKeyHandler(keyService, logger)
	productHandler := NewProductHandler(productService, logger)
	healthHandler := NewHealthHandler(keyRepo, nil, logger)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(logger))

	router.GET("/healthz", healthHandler.Check)
	router.POST("/claim_key", claimHandler.Claim)

	admin := router.Group("")
	admin.Use(middleware.AdminKeyAuthMiddleware(util.HashAdminKey(testAdminKey), logger))
	{
		admin.POST("/create_key", keyHandler.Create)
		admin.POST("/delete_key", keyHandler.Delete)
		admin.POST("/reset_hwid", keyHandler.ResetHWID)
		admin.POST("/create_product", productHandler.Create)
		admin.POST("/delete_product", productHandler.Delete)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, path, apiKey string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed), "response body: %s", rec.Body.String())
	}
	return rec, parsed
}

func TestEndToEndKeyLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pro", body["product_id"])

	rec, body = doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "7d"})
	require.Equal(t, http.StatusOK, rec.Code)
	keyStr, _ := body["key"].(string)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`), keyStr)

	rec, body = doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, keyStr, body["key"])
	assert.Equal(t, "pro", body["product"])
	assert.NotEmpty(t, body["expires_at"])

	rec, _ = doJSON(t, router, "/delete_key", testAdminKey, gin.H{"key": keyStr})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid key", body["error"])
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/create_key", "/delete_key", "/reset_hwid", "/create_product", "/delete_product"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec, body := doJSON(t, router, path, "", gin.H{})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", body["error"])

			rec, _ = doJSON(t, router, path, "wrong-key", gin.H{})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestClaimDoesNotRequireAPIKey(t *testing.T) {
	router := newTestRouter(t)

	// Reaches the handler and fails on the payload, not on auth.
	rec, _ := doJSON(t, router, "/claim_key", "", gin.H{"key": "ZZZZ-ZZZZ-ZZZZ", "hwid": "h"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimHwidMismatchReturns403(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	_, body := doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "7d"})
	keyStr := body["key"].(string)

	rec, _ := doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "HWID mismatch", body["error"])
}

func TestClaimExpiredKeyReturns403(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	_, body := doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "0d"})
	keyStr := body["key"].(string)

	// A zero-length window expires the moment the first claim binds it.
	rec, _ := doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Key expired", body["error"])
}

func TestResetHWIDAllowsRebinding(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	_, body := doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "7d"})
	keyStr := body["key"].(string)

	rec, first := doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "/reset_hwid", testAdminKey, gin.H{"key": keyStr})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HWID reset", body["message"])

	rec, second := doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["expires_at"], second["expires_at"])
}

func TestDeleteProductLeavesKeysDangling(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	_, body := doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "7d"})
	keyStr := body["key"].(string)

	rec, _ := doJSON(t, router, "/delete_product", testAdminKey, gin.H{"name": "pro"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "/claim_key", "", gin.H{"key": keyStr, "hwid": "hwid-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unknown", body["product"])
}

func TestCreateKeyValidation(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})

	rec, body := doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "pro", "duration": "7x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid duration format", body["error"])

	rec, body = doJSON(t, router, "/create_key", testAdminKey, gin.H{"product_id": "ghost", "duration": "7d"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product ID", body["error"])

	rec, _ = doJSON(t, router, "/create_key", testAdminKey, gin.H{"duration": "7d"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateProductReturns400(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, "/create_product", testAdminKey, gin.H{"name": "pro"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product already exists", body["error"])
}

func TestDeleteMissingEntitiesReturn404(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, "/delete_key", testAdminKey, gin.H{"key": "ZZZZ-ZZZZ-ZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Key not found", body["error"])

	rec, body = doJSON(t, router, "/reset_hwid", testAdminKey, gin.H{"key": "ZZZZ-ZZZZ-ZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Key not found", body["error"])

	rec, body = doJSON(t, router, "/delete_product", testAdminKey, gin.H{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", body["error"])
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestClaimRequiresKeyAndHWID(t *testing.T) {
	router := newTestRouter(t)

	for _, payload := range []gin.H{{}, {"key": "AAAA-BBBB-CCCC"}, {"hwid": "h"}} {
		rec, body := doJSON(t, router, "/claim_key", "", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("payload %v", payload))
		assert.Equal(t, "Key and HWID are required", body["error"])
	}
}
