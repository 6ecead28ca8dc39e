package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionCategory 交易类别（用户自行维护，区分收入/支出）
type TransactionCategory struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Type        string         `json:"type" gorm:"size:20;not null;index"` // income/expense
	Description string         `json:"description" gorm:"size:255"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (TransactionCategory) TableName() string {
	return "transaction_categories"
}

// IsValidCategoryType 校验类别类型（类别只有收入/支出两种，互转无类别）
func IsValidCategoryType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}
