package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 解析导出时间范围并查询交易（按日期倒序）
func exportRange(c *gin.Context) (string, string, []models.Transaction, bool) {
	userID := middleware.GetCurrentUserID(c)

	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return "", "", nil, false
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return "", "", nil, false
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return "", "", nil, false
	}

	var transactions []models.Transaction
	if err := database.DB.
		Preload("Wallet").Preload("WalletFrom").Preload("WalletTo").Preload("TransactionCategory").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return "", "", nil, false
	}

	return startStr, endStr, transactions, true
}

// exportWalletName 导出用的钱包列文案：普通交易为钱包名，互转为 "转出 -> 转入"
func exportWalletName(t *models.Transaction) string {
	if t.Type == models.TransactionTypeTransfer {
		from, to := "-", "-"
		if t.WalletFrom != nil {
			from = t.WalletFrom.Name
		}
		if t.WalletTo != nil {
			to = t.WalletTo.Name
		}
		return from + " -> " + to
	}
	if t.Wallet != nil {
		return t.Wallet.Name
	}
	return "-"
}

// ExportCSV 导出交易为 CSV
// @Summary 导出交易为 CSV
// @Description 根据日期范围导出当前用户的交易为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-01-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	startStr, endStr, transactions, ok := exportRange(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "日期", "类型", "类别", "金额", "钱包", "备注"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for i := range transactions {
		t := &transactions[i]
		row := []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Date.Format("2006-01-02"),
			t.Type,
			t.ResolvedCategory(),
			strconv.FormatInt(t.Amount, 10),
			exportWalletName(t),
			t.Notes,
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易为 JSON
// @Summary 导出交易为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-01-31)"
// @Success 200 {object} Response{data=[]TransactionView} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	_, _, transactions, ok := exportRange(c)
	if !ok {
		return
	}

	views := make([]TransactionView, 0, len(transactions))
	for i := range transactions {
		views = append(views, newTransactionView(&transactions[i]))
	}

	Success(c, views)
}

// ExportExcel 导出交易为 Excel
// @Summary 导出交易为 Excel
// @Description 根据日期范围导出当前用户的交易为 xlsx 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-01-31)"
// @Success 200 {file} file "xlsx 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	startStr, endStr, transactions, ok := exportRange(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "交易记录"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"ID", "日期", "类型", "类别", "金额", "钱包", "备注"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i := range transactions {
		t := &transactions[i]
		row := i + 2
		values := []interface{}{
			t.ID,
			t.Date.Format("2006-01-02"),
			t.Type,
			t.ResolvedCategory(),
			t.Amount,
			exportWalletName(t),
			t.Notes,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "F", 15)
	f.SetColWidth(sheetName, "G", "G", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
