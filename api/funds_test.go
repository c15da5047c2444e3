package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundtrack/config"
	"fundtrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundsHandler_Allocate(t *testing.T) {
	env := setupTestEnv(t)

	w, resp := env.do(t, "POST", "/funds/allocate", `{"owner":"Alice","amount":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = env.do(t, "POST", "/funds/allocate", `{"owner":"alice","amount":"30.5"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "分配成功", resp["message"])
	assert.Equal(t, "alice", data(t, resp)["owner"])
	assert.Equal(t, 80.5, data(t, resp)["total_funds"])
	assert.Equal(t, 80.5, data(t, resp)["balance"])

	for _, body := range []string{
		`{"owner":"alice","amount":-5}`,
		`{"owner":"alice","amount":0.004}`,
		`{"owner":"alice","amount":99999999999999}`,
	} {
		w, resp = env.do(t, "POST", "/funds/allocate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "InvalidAmount", data(t, resp)["error"], body)
	}
}

func TestFundsHandler_Update(t *testing.T) {
	env := setupTestEnv(t)

	w, resp := env.do(t, "PUT", "/funds/update", `{"owner":"alice","total_funds":40}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", data(t, resp)["error"])

	env.do(t, "POST", "/funds/allocate", `{"owner":"alice","amount":100}`)
	env.do(t, "POST", "/expenses?owner=alice", `{"amount":60,"category":"food"}`)

	w, resp = env.do(t, "PUT", "/funds/update", `{"owner":"alice","total_funds":40}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40.0, data(t, resp)["total_funds"])
	assert.Equal(t, 40.0, data(t, resp)["spent"])
	assert.Equal(t, 0.0, data(t, resp)["balance"])

	w, resp = env.do(t, "PUT", "/funds/update", `{"owner":"alice","total_funds":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidAmount", data(t, resp)["error"])
}

func TestFundsHandler_GetZero(t *testing.T) {
	env := setupTestEnv(t)

	w, resp := env.do(t, "GET", "/funds?owner=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, resp)
	assert.Equal(t, 0.0, d["total_funds"])
	assert.Nil(t, d["created_at"])

	owners, err := env.store.Funds().Owners(context.Background())
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestFundsHandler_ResetAndReconcile(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := env.do(t, "DELETE", "/funds/alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.do(t, "POST", "/funds/allocate", `{"owner":"alice","amount":100}`)
	env.do(t, "POST", "/expenses?owner=alice", `{"amount":25,"category":"food"}`)

	w, resp := env.do(t, "DELETE", "/funds/alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "已清零", resp["message"])

	_, resp = env.do(t, "GET", "/funds?owner=alice", "")
	assert.Equal(t, 0.0, data(t, resp)["total_funds"])
	assert.Equal(t, 0.0, data(t, resp)["spent"])

	// 绕过服务写入的流水由强制对账修复
	_, err := env.store.Ledger().Insert(context.Background(), &models.Expense{
		Owner: "bob", Amount: decimal.RequireFromString("12.34"), Category: "Food", OccurredOn: time.Now(),
	})
	require.NoError(t, err)
	env.do(t, "POST", "/funds/allocate", `{"owner":"bob","amount":10}`)

	w, resp = env.do(t, "POST", "/funds/reconcile", `{"owner":"bob"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10.0, data(t, resp)["spent"])
	assert.Equal(t, 0.0, data(t, resp)["balance"])
}

func TestDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{models.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
		{models.NewInsufficientFunds(decimal.RequireFromString("7.5")), http.StatusBadRequest, "InsufficientFunds"},
		{models.ErrNotFound, http.StatusNotFound, "NotFound"},
		{models.StoreError("find", errors.New("conn refused")), http.StatusServiceUnavailable, "StoreUnavailable"},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		DomainError(c, tc.err, "操作失败")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		if tc.code != "" {
			assert.Contains(t, w.Body.String(), `"error":"`+tc.code+`"`)
		}
	}

	// release 模式隐藏内部错误
	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "release"}}
	defer func() { config.GlobalConfig = nil }()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	DomainError(c, models.StoreError("find", errors.New("dial tcp 10.0.0.1:3306")), "操作失败")
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
	assert.Contains(t, w.Body.String(), "操作失败")
	assert.NotContains(t, w.Body.String(), `"available"`)
}
