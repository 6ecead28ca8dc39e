package api

import (
	"errors"
	"strconv"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// TransactionRequest 创建/更新交易请求
// 金额接受自由格式字符串，归一化（剔除非数字字符）后按整数校验
type TransactionRequest struct {
	Date         string `json:"date" binding:"required" example:"2025-01-15"`
	Type         string `json:"type" binding:"required" example:"expense"` // income/expense/transfer
	Amount       string `json:"amount" binding:"required" example:"50.000"`
	Notes        string `json:"notes"`
	CategoryID   *uint  `json:"category_id"`
	WalletID     *uint  `json:"wallet_id"`
	WalletFromID *uint  `json:"wallet_from_id"`
	WalletToID   *uint  `json:"wallet_to_id"`
}

// TransactionView 交易视图（类别名按 关联类别 > 文本快照 > 未分类 解析）
type TransactionView struct {
	ID             uint   `json:"id"`
	Date           string `json:"date"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	Amount         int64  `json:"amount"`
	Notes          string `json:"notes"`
	CategoryID     *uint  `json:"category_id"`
	WalletID       *uint  `json:"wallet_id"`
	WalletFromID   *uint  `json:"wallet_from_id"`
	WalletToID     *uint  `json:"wallet_to_id"`
	WalletName     string `json:"wallet_name,omitempty"`
	WalletFromName string `json:"wallet_from_name,omitempty"`
	WalletToName   string `json:"wallet_to_name,omitempty"`
}

func newTransactionView(t *models.Transaction) TransactionView {
	view := TransactionView{
		ID:           t.ID,
		Date:         t.Date.Format("2006-01-02"),
		Type:         t.Type,
		Category:     t.ResolvedCategory(),
		Amount:       t.Amount,
		Notes:        t.Notes,
		CategoryID:   t.CategoryID,
		WalletID:     t.WalletID,
		WalletFromID: t.WalletFromID,
		WalletToID:   t.WalletToID,
	}
	if t.Wallet != nil {
		view.WalletName = t.Wallet.Name
	}
	if t.WalletFrom != nil {
		view.WalletFromName = t.WalletFrom.Name
	}
	if t.WalletTo != nil {
		view.WalletToName = t.WalletTo.Name
	}
	return view
}

// resolveTransaction 按声明的类型校验请求并生成落库字段。
// 与类型无关的字段强制置空（transfer 置空 wallet_id/category_id，
// income/expense 置空 wallet_from_id/wallet_to_id），见数据不变量。
// 校验失败时不产生任何写入
func resolveTransaction(userID uint, req *TransactionRequest) (*models.Transaction, error) {
	if !models.IsValidTransactionType(req.Type) {
		return nil, errors.New("交易类型错误，可选值：income、expense、transfer")
	}

	amount, err := normalizeAmount(req.Amount)
	if err != nil {
		return nil, errors.New("金额格式错误: " + err.Error())
	}

	txDate, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, errors.New("日期格式错误，应为: 2006-01-02")
	}

	tx := &models.Transaction{
		UserID: userID,
		Date:   txDate,
		Type:   req.Type,
		Amount: amount,
		Notes:  req.Notes,
	}

	if req.Type == models.TransactionTypeTransfer {
		if req.WalletFromID == nil || req.WalletToID == nil {
			return nil, errors.New("互转需要同时指定转出和转入钱包")
		}
		if *req.WalletFromID == *req.WalletToID {
			return nil, errors.New("转出和转入钱包不能相同")
		}

		var count int64
		if err := database.DB.Model(&models.Wallet{}).
			Where("user_id = ? AND id IN ?", userID, []uint{*req.WalletFromID, *req.WalletToID}).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count != 2 {
			return nil, errors.New("转出或转入钱包不存在")
		}

		tx.WalletFromID = req.WalletFromID
		tx.WalletToID = req.WalletToID
		tx.Category = models.CategoryTransfer
		// wallet_id / category_id 保持 NULL
		return tx, nil
	}

	// income / expense
	if req.WalletID == nil {
		return nil, errors.New("请选择钱包")
	}
	if req.CategoryID == nil {
		return nil, errors.New("请选择交易类别")
	}

	var wallet models.Wallet
	if err := database.DB.Where("id = ? AND user_id = ?", *req.WalletID, userID).First(&wallet).Error; err != nil {
		return nil, errors.New("钱包不存在")
	}

	// 类别必须属于当前用户且类型与交易一致
	var category models.TransactionCategory
	if err := database.DB.Where("id = ? AND user_id = ? AND type = ?", *req.CategoryID, userID, req.Type).
		First(&category).Error; err != nil {
		return nil, errors.New("交易类别不存在或类型不匹配")
	}

	tx.WalletID = req.WalletID
	tx.CategoryID = req.CategoryID
	tx.Category = category.Name
	// wallet_from_id / wallet_to_id 保持 NULL
	return tx, nil
}

// Create 创建交易
// @Summary 创建交易
// @Description 创建收入/支出/互转交易。互转不关联类别，收入/支出必须关联钱包和同类型类别
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	tx, err := resolveTransaction(userID, &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := database.DB.Create(tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", tx)
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Type      string `form:"type" example:"expense"`
	WalletID  uint   `form:"wallet_id"`
	StartDate string `form:"start_date" example:"2025-01-01"`
	EndDate   string `form:"end_date" example:"2025-01-31"`
}

// List 获取交易列表
// @Summary 获取交易列表
// @Description 获取当前用户的交易列表，按日期倒序，支持分页和类型/钱包/日期范围筛选
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型筛选：income/expense/transfer"
// @Param wallet_id query int false "钱包筛选（含作为转出/转入方）"
// @Param start_date query string false "开始日期 (2025-01-01)"
// @Param end_date query string false "结束日期 (2025-01-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]TransactionView}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.WalletID != 0 {
		query = query.Where("(wallet_id = ? OR wallet_from_id = ? OR wallet_to_id = ?)",
			req.WalletID, req.WalletID, req.WalletID)
	}
	if req.StartDate != "" {
		if start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local); err == nil {
			query = query.Where("date >= ?", start)
		}
	}
	if req.EndDate != "" {
		if end, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local); err == nil {
			query = query.Where("date <= ?", end)
		}
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.
		Preload("Wallet").Preload("WalletFrom").Preload("WalletTo").Preload("TransactionCategory").
		Order("date DESC, id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	views := make([]TransactionView, 0, len(transactions))
	for i := range transactions {
		views = append(views, newTransactionView(&transactions[i]))
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     views,
	})
}

// Get 获取单条交易
// @Summary 获取交易详情
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=TransactionView} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.
		Preload("Wallet").Preload("WalletFrom").Preload("WalletTo").Preload("TransactionCategory").
		Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "交易不存在")
		return
	}

	Success(c, newTransactionView(&tx))
}

// Update 更新交易
// @Summary 更新交易
// @Description 按新的类型重新校验并落库，与类型无关的引用字段显式置空
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var existing models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		NotFound(c, "交易不存在")
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	tx, err := resolveTransaction(userID, &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	// map 更新以显式写入 NULL，保证类型切换后不残留旧引用
	updates := map[string]interface{}{
		"date":           tx.Date,
		"type":           tx.Type,
		"category":       tx.Category,
		"category_id":    tx.CategoryID,
		"amount":         tx.Amount,
		"notes":          tx.Notes,
		"wallet_id":      tx.WalletID,
		"wallet_from_id": tx.WalletFromID,
		"wallet_to_id":   tx.WalletToID,
	}

	if err := database.DB.Model(&existing).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&existing, existing.ID)
	SuccessWithMessage(c, "更新成功", existing)
}

// Delete 删除交易
// @Summary 删除交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "交易不存在")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
