package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"moneybook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportTransactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "date", "type", "category", "category_id", "amount", "notes", "wallet_id", "wallet_from_id", "wallet_to_id", "created_at", "updated_at", "deleted_at"})
}

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(exportTransactionRows().
			AddRow(1, 1, time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local), "expense", "餐饮", nil, 50000, "午餐", nil, nil, nil, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/export/csv", setUserID(1), NewExportHandler().ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_date=2025-01-01&end_date=2025-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	// BOM 开头，便于 Excel 识别编码
	assert.Equal(t, "\xEF\xBB\xBF", w.Body.String()[:3])
	assert.Contains(t, w.Body.String(), "金额")
	assert.Contains(t, w.Body.String(), "餐饮")
	assert.Contains(t, w.Body.String(), "50000")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_MissingParams(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/export/csv", setUserID(1), NewExportHandler().ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(exportTransactionRows().
			// 快照文本为空且无关联类别，导出时回落为未分类
			AddRow(2, 1, time.Date(2025, 1, 16, 0, 0, 0, 0, time.Local), "expense", "", nil, 30000, "", nil, nil, nil, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/export/json", setUserID(1), NewExportHandler().ExportJSON)

	req := httptest.NewRequest("GET", "/export/json?start_date=2025-01-01&end_date=2025-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"未分类"`)
	assert.Contains(t, w.Body.String(), `"date":"2025-01-16"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(exportTransactionRows().
			AddRow(1, 1, time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local), "income", "工资", nil, 500000, "", nil, nil, nil, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/export/excel", setUserID(1), NewExportHandler().ExportExcel)

	req := httptest.NewRequest("GET", "/export/excel?start_date=2025-01-01&end_date=2025-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions_2025-01-01_2025-01-31.xlsx")
	// xlsx 是 zip 容器
	assert.Equal(t, "PK", w.Body.String()[:2])
	require.NoError(t, mock.ExpectationsWereMet())
}
