package api

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"moneybook/config"
	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WalletHandler 钱包处理器
type WalletHandler struct {
	balanceService *service.WalletBalanceService
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler() *WalletHandler {
	return &WalletHandler{
		balanceService: service.NewWalletBalanceService(),
	}
}

// WalletForm 钱包表单（multipart，Logo 可选）
type WalletForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Type        string `form:"type" binding:"required"`
	Balance     string `form:"balance" binding:"required"` // 自由格式，如 "100.000"
	Description string `form:"description" binding:"omitempty,max=255"`
}

// 允许的 Logo 扩展名
var allowedLogoExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// saveLogo 保存上传的钱包 Logo，返回相对上传目录的存储路径
func saveLogo(c *gin.Context, file *multipart.FileHeader, userID uint) (string, error) {
	cfg := config.GetConfig()

	if file.Size > cfg.Upload.MaxSizeMB<<20 {
		return "", fmt.Errorf("Logo 文件不能超过 %dMB", cfg.Upload.MaxSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedLogoExts[ext] {
		return "", fmt.Errorf("Logo 仅支持 png/jpg/jpeg/webp 格式")
	}

	relPath := filepath.Join("wallet-logos", fmt.Sprintf("%d_%d%s", userID, time.Now().UnixNano(), ext))
	dst := filepath.Join(cfg.Upload.Dir, relPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	// URL 统一使用斜杠
	return filepath.ToSlash(relPath), nil
}

// removeLogo 删除旧 Logo 文件，文件不存在时静默忽略
func removeLogo(logoPath string) {
	if logoPath == "" {
		return
	}
	_ = os.Remove(filepath.Join(config.GetConfig().Upload.Dir, filepath.FromSlash(logoPath)))
}

// Create 创建钱包
// @Summary 创建钱包
// @Description 创建钱包（cash/bank/ewallet），基准余额接受自由格式数字，可上传 Logo
// @Tags 钱包
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "钱包名称"
// @Param type formData string true "类型：cash/bank/ewallet"
// @Param balance formData string true "基准余额（最小货币单位，如 100.000 归一化为 100000）"
// @Param description formData string false "描述"
// @Param logo formData file false "Logo 图片（png/jpg/jpeg/webp）"
// @Success 200 {object} Response{data=models.Wallet} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/wallets [post]
func (h *WalletHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var form WalletForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !models.IsValidWalletType(form.Type) {
		BadRequest(c, "钱包类型错误，可选值：cash、bank、ewallet")
		return
	}

	balance, err := normalizeAmount(form.Balance)
	if err != nil {
		BadRequest(c, "余额格式错误: "+err.Error())
		return
	}

	wallet := models.Wallet{
		UserID:      userID,
		Name:        strings.TrimSpace(form.Name),
		Type:        form.Type,
		Balance:     balance,
		Description: form.Description,
	}

	// Logo 可选
	if file, err := c.FormFile("logo"); err == nil {
		logoPath, err := saveLogo(c, file, userID)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		wallet.LogoPath = logoPath
	}

	if err := database.DB.Create(&wallet).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建钱包失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", wallet)
}

// List 获取钱包列表（含推导余额）
// @Summary 获取钱包列表
// @Description 返回当前用户全部钱包，按名称排序，含基准余额、推导出的当前余额与最近活动日期
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.WalletSummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/wallets [get]
func (h *WalletHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

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

	Success(c, summaries)
}

// Get 获取单个钱包详情（含推导余额）
// @Summary 获取钱包详情
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response{data=service.WalletSummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [get]
func (h *WalletHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var wallet models.Wallet
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error; err != nil {
		NotFound(c, "钱包不存在")
		return
	}

	summaries, err := h.balanceService.Summarize(userID, []models.Wallet{wallet})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "余额计算失败"))
		return
	}

	Success(c, summaries[0])
}

// Update 更新钱包
// @Summary 更新钱包
// @Description 更新钱包信息，上传新 Logo 时替换并删除旧文件
// @Tags 钱包
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Param name formData string true "钱包名称"
// @Param type formData string true "类型：cash/bank/ewallet"
// @Param balance formData string true "基准余额"
// @Param description formData string false "描述"
// @Param logo formData file false "Logo 图片"
// @Success 200 {object} Response{data=models.Wallet} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var wallet models.Wallet
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error; err != nil {
		NotFound(c, "钱包不存在")
		return
	}

	var form WalletForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !models.IsValidWalletType(form.Type) {
		BadRequest(c, "钱包类型错误，可选值：cash、bank、ewallet")
		return
	}

	balance, err := normalizeAmount(form.Balance)
	if err != nil {
		BadRequest(c, "余额格式错误: "+err.Error())
		return
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(form.Name),
		"type":        form.Type,
		"balance":     balance,
		"description": form.Description,
	}

	// 新 Logo 替换旧文件
	oldLogo := ""
	if file, err := c.FormFile("logo"); err == nil {
		logoPath, err := saveLogo(c, file, userID)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		oldLogo = wallet.LogoPath
		updates["logo_path"] = logoPath
	}

	if err := database.DB.Model(&wallet).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	removeLogo(oldLogo)

	database.DB.First(&wallet, wallet.ID)
	SuccessWithMessage(c, "更新成功", wallet)
}

// Delete 删除钱包
// @Summary 删除钱包
// @Description 删除钱包并将关联交易的钱包引用置空（不级联删除交易），同时清理 Logo 文件
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var wallet models.Wallet
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error; err != nil {
		NotFound(c, "钱包不存在")
		return
	}

	// 引用置空与删除放在同一事务，避免出现半删状态
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND wallet_id = ?", userID, wallet.ID).
			Update("wallet_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND wallet_from_id = ?", userID, wallet.ID).
			Update("wallet_from_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND wallet_to_id = ?", userID, wallet.ID).
			Update("wallet_to_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&wallet).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	removeLogo(wallet.LogoPath)
	SuccessWithMessage(c, "删除成功", nil)
}
