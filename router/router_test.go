package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundtrack/api"
	"fundtrack/config"
	"fundtrack/middleware"
	"fundtrack/repository"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(cfg *config.Config) *gin.Engine {
	store := repository.NewMemoryStore()
	locker := service.NewMemoryLocker()
	reconciler := service.NewReconciler(store, nil, nil)
	expenses := service.NewExpenseService(store, reconciler, locker, nil, nil)
	return SetupRouter(cfg, Handlers{
		Expense: api.NewExpenseHandler(expenses),
		Funds:   api.NewFundsHandler(service.NewFundsService(store, reconciler, locker, nil, nil)),
		Export:  api.NewExportHandler(expenses),
	})
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter(t *testing.T) {
	r := newTestRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode, RequestTimeout: time.Second}})

	w := serve(r, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = serve(r, "OPTIONS", "/expenses", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusOK, serve(r, "POST", "/funds/allocate", `{"owner":"alice","amount":100}`, "").Code)
	assert.Equal(t, http.StatusCreated, serve(r, "POST", "/expenses?owner=alice", `{"amount":10,"category":"food"}`, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/expenses?owner=alice", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/expenses/export/csv?owner=alice", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "PUT", "/funds/update", `{"owner":"alice","total_funds":50}`, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "POST", "/funds/reconcile", `{"owner":"alice"}`, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "DELETE", "/funds/alice", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/funds?owner=alice", "", "").Code)
}

func TestSetupRouterWithJWT(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{Enabled: true, Secret: "router-test-secret"},
	}
	middleware.InitJWT(cfg)
	r := newTestRouter(cfg)

	// 健康检查无需认证
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/health", "", "").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/funds?owner=alice", "", "").Code)

	token, err := middleware.GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/funds?owner=alice", "", token).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/funds", "", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/funds?owner=bob", "", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "DELETE", "/funds/bob", "", token).Code)
}
