package api

import (
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 首页看板处理器
type DashboardHandler struct {
	balanceService *service.WalletBalanceService
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{
		balanceService: service.NewWalletBalanceService(),
	}
}

// TypeStat 单一交易类型的月度合计
type TypeStat struct {
	Total int64 `json:"total"`
	Count int64 `json:"count"`
}

// DailyStat 单日收支合计（仅包含有交易的日期，不补零）
type DailyStat struct {
	Date    string `json:"date"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Net     int64  `json:"net"`
}

// CategoryStat 类别支出合计
type CategoryStat struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// DashboardResponse 看板响应
type DashboardResponse struct {
	YearMonth string `json:"year_month"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Summary   struct {
		Income  int64 `json:"income"`
		Expense int64 `json:"expense"`
		Net     int64 `json:"net"`
	} `json:"summary"`
	TransactionSummary   map[string]TypeStat     `json:"transaction_summary"`
	DailySummary         []DailyStat             `json:"daily_summary"`
	TopExpenseCategories []CategoryStat          `json:"top_expense_categories"`
	Wallets              []service.WalletSummary `json:"wallets"`
	RecentTransactions   []TransactionView       `json:"recent_transactions"`
}

// GetDashboard 获取月度看板
// @Summary 获取月度看板
// @Description 按自然月统计：各类型合计与笔数、逐日收支序列（仅含有交易的日期，升序）、
// @Description 支出 Top5 类别（类别名按 关联类别 > 文本快照 > 未分类 解析）、
// @Description 钱包余额视图与最近 5 笔交易。无交易的月份返回零合计与空序列
// @Tags 看板
// @Produce json
// @Security BearerAuth
// @Param year_month query string false "年月（格式：2025-01，默认当月）"
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// 月份窗口 [每月1日, 当月最后一日]，日期闭区间
	yearMonth := c.Query("year_month")
	var start time.Time
	if yearMonth == "" {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		yearMonth = start.Format("2006-01")
	} else {
		parsed, err := time.ParseInLocation("2006-01", yearMonth, time.Local)
		if err != nil {
			BadRequest(c, "year_month格式错误，应为：2025-01")
			return
		}
		start = time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.Local)
	}
	end := start.AddDate(0, 1, -1)

	var resp DashboardResponse
	resp.YearMonth = yearMonth
	resp.StartDate = start.Format("2006-01-02")
	resp.EndDate = end.Format("2006-01-02")

	// 各类型合计与笔数（单条 GROUP BY 查询）
	var typeRows []struct {
		Type  string
		Total int64
		Count int64
	}
	if err := database.DB.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Group("type").
		Scan(&typeRows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	resp.TransactionSummary = map[string]TypeStat{
		models.TransactionTypeIncome:   {},
		models.TransactionTypeExpense:  {},
		models.TransactionTypeTransfer: {},
	}
	for _, row := range typeRows {
		resp.TransactionSummary[row.Type] = TypeStat{Total: row.Total, Count: row.Count}
	}
	resp.Summary.Income = resp.TransactionSummary[models.TransactionTypeIncome].Total
	resp.Summary.Expense = resp.TransactionSummary[models.TransactionTypeExpense].Total
	resp.Summary.Net = resp.Summary.Income - resp.Summary.Expense

	// 逐日收支序列：只输出有交易的日期，升序
	var dailyRows []struct {
		Date         time.Time
		IncomeTotal  int64
		ExpenseTotal int64
	}
	if err := database.DB.Model(&models.Transaction{}).
		Select("date, "+
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income_total, "+
			"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense_total").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Group("date").
		Order("date").
		Scan(&dailyRows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	resp.DailySummary = make([]DailyStat, 0, len(dailyRows))
	for _, row := range dailyRows {
		resp.DailySummary = append(resp.DailySummary, DailyStat{
			Date:    row.Date.Format("2006-01-02"),
			Income:  row.IncomeTotal,
			Expense: row.ExpenseTotal,
			Net:     row.IncomeTotal - row.ExpenseTotal,
		})
	}

	// 支出 Top5 类别，类别名在查询里解析：关联类别 > 非空文本快照 > 未分类
	var topRows []CategoryStat
	if err := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(transaction_categories.name, NULLIF(transactions.category, ''), ?) AS name, "+
			"SUM(transactions.amount) AS total", models.CategoryUncategorized).
		Joins("LEFT JOIN transaction_categories ON transaction_categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.date BETWEEN ? AND ?",
			userID, models.TransactionTypeExpense, start, end).
		Group("name").
		Order("total DESC").
		Limit(5).
		Scan(&topRows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	resp.TopExpenseCategories = topRows
	if resp.TopExpenseCategories == nil {
		resp.TopExpenseCategories = []CategoryStat{}
	}

	// 钱包余额视图
	var wallets []models.Wallet
	if err := database.DB.Where("user_id = ?", userID).Order("name").Find(&wallets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	summaries, err := h.balanceService.Summarize(userID, wallets)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "余额计算失败"))
		return
	}
	resp.Wallets = summaries

	// 最近 5 笔交易
	var recent []models.Transaction
	if err := database.DB.
		Preload("Wallet").Preload("WalletFrom").Preload("WalletTo").Preload("TransactionCategory").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	resp.RecentTransactions = make([]TransactionView, 0, len(recent))
	for i := range recent {
		resp.RecentTransactions = append(resp.RecentTransactions, newTransactionView(&recent[i]))
	}

	Success(c, resp)
}
