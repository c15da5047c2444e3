package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundtrack/repository"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	locker := service.NewMemoryLocker()
	reconciler := service.NewReconciler(store, nil, nil)
	expenses := service.NewExpenseService(store, reconciler, locker, nil, nil)
	funds := service.NewFundsService(store, reconciler, locker, nil, nil)

	r := gin.New()
	r.POST("/funds/allocate", NewFundsHandler(funds).Allocate)
	r.POST("/expenses", NewExpenseHandler(expenses).Create)
	export := NewExportHandler(expenses)
	r.GET("/expenses/export/csv", export.ExportCSV)
	r.GET("/expenses/export/xlsx", export.ExportExcel)

	for _, req := range []struct{ path, body string }{
		{"/funds/allocate", `{"owner":"alice","amount":100}`},
		{"/expenses?owner=alice", `{"amount":12.5,"category":"food","date":"2024-01-15","description":"午餐"}`},
		{"/expenses?owner=alice", `{"amount":30,"category":"travel","date":"2024-02-01"}`},
	} {
		w := httptest.NewRecorder()
		hr := httptest.NewRequest("POST", req.path, bytes.NewBufferString(req.body))
		hr.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, hr)
		require.Less(t, w.Code, 300, w.Body.String())
	}
	return r
}

func TestExportHandler_ExportCSV(t *testing.T) {
	r := setupExportRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/expenses/export/csv?owner=alice&category=food", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	body := w.Body.String()
	assert.Contains(t, body, "金额")
	assert.Contains(t, body, "12.50")
	assert.Contains(t, body, "2024-01-15")
	assert.NotContains(t, body, "Travel")
	assert.Equal(t, "attachment; filename*=UTF-8''expenses_alice.csv", w.Header().Get("Content-Disposition"))
}

func TestAttachmentEncodesFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"expenses_alice.csv", "attachment; filename*=UTF-8''expenses_alice.csv"},
		{"expenses_alice@example.com.xlsx", "attachment; filename*=UTF-8''expenses_alice%40example.com.xlsx"},
		{"expenses_a b.csv", "attachment; filename*=UTF-8''expenses_a%20b.csv"},
		{"expenses_张三.csv", "attachment; filename*=UTF-8''expenses_%E5%BC%A0%E4%B8%89.csv"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, attachment(tt.filename), "attachment(%q)", tt.filename)
	}
}

func TestExportHandler_ExportCSV_InvalidDate(t *testing.T) {
	r := setupExportRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/expenses/export/csv?owner=alice&start=2024/01/01", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler_ExportExcel(t *testing.T) {
	r := setupExportRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/expenses/export/xlsx?owner=alice", nil))
	require.Equal(t, http.StatusOK, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("消费记录")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "金额", rows[0][1])
	assert.Equal(t, "Food", rows[1][2])
	assert.Equal(t, "余额 57.50", rows[3][3])
}
