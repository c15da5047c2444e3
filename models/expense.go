package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense 消费记录模型
type Expense struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	Owner       string          `json:"owner" gorm:"size:100;index;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category    string          `json:"category" gorm:"size:50;not null"`
	OccurredOn  time.Time       `json:"occurred_on" gorm:"index;not null"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// ExpensePatch 消费记录的部分更新，nil 字段保持不变
type ExpensePatch struct {
	Amount      *decimal.Decimal
	Category    *string
	OccurredOn  *time.Time
	Description *string
	UpdatedAt   time.Time
}

// Apply 把补丁应用到记录上（内存存储与测试使用）
func (p ExpensePatch) Apply(e *Expense) {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.OccurredOn != nil {
		e.OccurredOn = *p.OccurredOn
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	e.UpdatedAt = p.UpdatedAt
}

// Columns 返回 gorm Updates 使用的列映射
func (p ExpensePatch) Columns() map[string]interface{} {
	updates := map[string]interface{}{"updated_at": p.UpdatedAt}
	if p.Amount != nil {
		updates["amount"] = *p.Amount
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.OccurredOn != nil {
		updates["occurred_on"] = *p.OccurredOn
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	return updates
}

// ExpenseFilter 消费记录查询条件
// Start/End 为闭区间；Category 大小写不敏感的精确匹配
type ExpenseFilter struct {
	Start    *time.Time
	End      *time.Time
	Category string
}

// Match 判断记录是否满足筛选条件
func (f ExpenseFilter) Match(e Expense) bool {
	if f.Start != nil && e.OccurredOn.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.OccurredOn.After(*f.End) {
		return false
	}
	if f.Category != "" && !equalFold(e.Category, f.Category) {
		return false
	}
	return true
}

// ExpenseView 列表接口返回的消费记录
type ExpenseView struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON 金额以 JSON 数字输出
func (v ExpenseView) MarshalJSON() ([]byte, error) {
	type view ExpenseView
	return json.Marshal(struct {
		view
		Amount json.Number `json:"amount"`
	}{view(v), AmountNumber(v.Amount)})
}

// View 转换为接口返回结构
func (e Expense) View() ExpenseView {
	return ExpenseView{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.OccurredOn.Format(DateLayout),
		OccurredAt:  e.OccurredOn,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
