package models

import (
	"time"

	"gorm.io/gorm"
)

// 交易类型常量
const (
	TransactionTypeIncome   = "income"   // 收入
	TransactionTypeExpense  = "expense"  // 支出
	TransactionTypeTransfer = "transfer" // 钱包互转
)

// CategoryUncategorized 无类别交易的兜底名称
const CategoryUncategorized = "未分类"

// CategoryTransfer 互转交易的类别快照
const CategoryTransfer = "钱包互转"

// Transaction 交易模型
// 金额为非负整数（最小货币单位）。字段约束随类型变化：
//   - income/expense: WalletID、CategoryID 必填，WalletFromID/WalletToID 为 NULL
//   - transfer: WalletFromID、WalletToID 必填且不同，WalletID/CategoryID 为 NULL
//
// Category 保存创建时的类别名称快照（历史遗留的自由文本类别也存于此），
// 读取时优先取关联类别名，其次取快照，最后落到“未分类”
type Transaction struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	Date         time.Time      `json:"date" gorm:"type:date;not null;index"`
	Type         string         `json:"type" gorm:"size:20;not null;index"` // income/expense/transfer
	Category     string         `json:"category" gorm:"size:100"`
	CategoryID   *uint          `json:"category_id" gorm:"index"`
	Amount       int64          `json:"amount" gorm:"not null"` // 金额（分），非负
	Notes        string         `json:"notes" gorm:"type:text"`
	WalletID     *uint          `json:"wallet_id" gorm:"index"`
	WalletFromID *uint          `json:"wallet_from_id" gorm:"index"`
	WalletToID   *uint          `json:"wallet_to_id" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	User                User                 `json:"-" gorm:"foreignKey:UserID"`
	Wallet              *Wallet              `json:"-" gorm:"foreignKey:WalletID"`
	WalletFrom          *Wallet              `json:"-" gorm:"foreignKey:WalletFromID"`
	WalletTo            *Wallet              `json:"-" gorm:"foreignKey:WalletToID"`
	TransactionCategory *TransactionCategory `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionType 校验交易类型
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// ResolvedCategory 解析类别名称：关联类别 > 文本快照 > 未分类
func (t *Transaction) ResolvedCategory() string {
	if t.TransactionCategory != nil && t.TransactionCategory.Name != "" {
		return t.TransactionCategory.Name
	}
	if t.Category != "" {
		return t.Category
	}
	return CategoryUncategorized
}
