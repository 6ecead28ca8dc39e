package models

import (
	"time"

	"gorm.io/gorm"
)

// 钱包类型常量
const (
	WalletTypeCash    = "cash"    // 现金
	WalletTypeBank    = "bank"    // 银行账户
	WalletTypeEWallet = "ewallet" // 电子钱包
)

// Wallet 钱包模型
// Balance 为开户基准余额（最小货币单位），当前余额由交易流水推导，不落库
type Wallet struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Type        string         `json:"type" gorm:"size:20;not null;index"` // cash/bank/ewallet
	Balance     int64          `json:"balance" gorm:"not null;default:0"`  // 基准余额（分）
	Description string         `json:"description" gorm:"size:255"`
	LogoPath    string         `json:"logo_path" gorm:"size:255"` // 相对上传目录的存储路径
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Wallet) TableName() string {
	return "wallets"
}

// IsValidWalletType 校验钱包类型
func IsValidWalletType(t string) bool {
	switch t {
	case WalletTypeCash, WalletTypeBank, WalletTypeEWallet:
		return true
	}
	return false
}
