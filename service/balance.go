package service

import (
	"time"

	"moneybook/config"
	"moneybook/database"
	"moneybook/models"
)

// WalletSummary 钱包余额视图：基准余额 + 流水推导出的当前余额与最近活动日期
type WalletSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	Balance        int64  `json:"balance"`         // 基准余额
	CurrentBalance int64  `json:"current_balance"` // 基准余额 + 流水净变动
	LogoURL        string `json:"logo_url"`
	UpdatedAt      string `json:"updated_at"`    // YYYY-MM-DD
	LastActivity   string `json:"last_activity"` // 最近一笔流水日期，无流水时取 updated_at
}

// WalletBalanceService 钱包余额推导
// 当前余额不落库，每次都从交易流水重放计算
type WalletBalanceService struct{}

// NewWalletBalanceService 创建余额推导服务
func NewWalletBalanceService() *WalletBalanceService {
	return &WalletBalanceService{}
}

// Summarize 计算一组钱包的余额视图
// 一次性取出用户全部流水再在内存中折叠，避免按钱包逐个查询的 N+1；
// 输出顺序与传入钱包顺序一致
func (s *WalletBalanceService) Summarize(userID uint, wallets []models.Wallet) ([]WalletSummary, error) {
	var transactions []models.Transaction
	if err := database.DB.Model(&models.Transaction{}).
		Select("id", "type", "amount", "date", "wallet_id", "wallet_from_id", "wallet_to_id").
		Where("user_id = ?", userID).
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	changes, lastActivity := foldTransactions(transactions)

	summaries := make([]WalletSummary, 0, len(wallets))
	for _, wallet := range wallets {
		current := wallet.Balance + changes[wallet.ID]

		activity := wallet.UpdatedAt
		if t, ok := lastActivity[wallet.ID]; ok {
			activity = t
		}

		summaries = append(summaries, WalletSummary{
			ID:             wallet.ID,
			Name:           wallet.Name,
			Type:           wallet.Type,
			Description:    wallet.Description,
			Balance:        wallet.Balance,
			CurrentBalance: current,
			LogoURL:        ResolveLogoURL(wallet.LogoPath),
			UpdatedAt:      wallet.UpdatedAt.Format("2006-01-02"),
			LastActivity:   activity.Format("2006-01-02"),
		})
	}

	return summaries, nil
}

// foldTransactions 单次遍历流水，累计每个钱包的净变动与最近活动日期
func foldTransactions(transactions []models.Transaction) (map[uint]int64, map[uint]time.Time) {
	changes := make(map[uint]int64)
	lastActivity := make(map[uint]time.Time)

	for i := range transactions {
		tx := &transactions[i]
		switch tx.Type {
		case models.TransactionTypeIncome:
			applyChange(changes, tx.WalletID, tx.Amount)
			touchActivity(lastActivity, tx.WalletID, tx.Date)
		case models.TransactionTypeExpense:
			applyChange(changes, tx.WalletID, -tx.Amount)
			touchActivity(lastActivity, tx.WalletID, tx.Date)
		case models.TransactionTypeTransfer:
			applyChange(changes, tx.WalletFromID, -tx.Amount)
			touchActivity(lastActivity, tx.WalletFromID, tx.Date)
			applyChange(changes, tx.WalletToID, tx.Amount)
			touchActivity(lastActivity, tx.WalletToID, tx.Date)
		}
	}

	return changes, lastActivity
}

// applyChange 累加钱包净变动，钱包引用为空时跳过该侧
func applyChange(changes map[uint]int64, walletID *uint, delta int64) {
	if walletID == nil {
		return
	}
	changes[*walletID] += delta
}

// touchActivity 仅在更晚的日期出现时推进活动日期
func touchActivity(activity map[uint]time.Time, walletID *uint, date time.Time) {
	if walletID == nil || date.IsZero() {
		return
	}
	current, ok := activity[*walletID]
	if !ok || date.After(current) {
		activity[*walletID] = date
	}
}

// ResolveLogoURL 将存储路径解析为可访问的 URL，空路径返回空串
func ResolveLogoURL(logoPath string) string {
	if logoPath == "" {
		return ""
	}
	base := ""
	if config.GlobalConfig != nil {
		base = config.GlobalConfig.Server.BaseURL
	}
	return base + "/uploads/" + logoPath
}
