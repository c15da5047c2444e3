package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FundsSummary 用户资金汇总，每个用户一条
// Spent 与 Balance 为派生字段，只允许对账流程写入
type FundsSummary struct {
	ID             uint            `json:"-" gorm:"primaryKey"`
	Owner          string          `json:"owner" gorm:"size:100;uniqueIndex;not null"`
	TotalAllocated decimal.Decimal `json:"total_funds" gorm:"type:decimal(12,2);not null;default:0"`
	Spent          decimal.Decimal `json:"spent" gorm:"type:decimal(12,2);not null;default:0"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (FundsSummary) TableName() string {
	return "funds"
}

// FundsView 资金汇总视图；没有持久化记录时时间字段为 null
type FundsView struct {
	Owner          string          `json:"owner"`
	TotalAllocated decimal.Decimal `json:"total_funds"`
	Spent          decimal.Decimal `json:"spent"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      *time.Time      `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at"`
}

// MarshalJSON 金额以 JSON 数字输出
func (v FundsView) MarshalJSON() ([]byte, error) {
	type view FundsView
	return json.Marshal(struct {
		view
		TotalAllocated json.Number `json:"total_funds"`
		Spent          json.Number `json:"spent"`
		Balance        json.Number `json:"balance"`
	}{view(v), AmountNumber(v.TotalAllocated), AmountNumber(v.Spent), AmountNumber(v.Balance)})
}

// AmountNumber 把金额转为 JSON 数字
func AmountNumber(amount decimal.Decimal) json.Number {
	return json.Number(amount.String())
}

// ZeroFunds 返回未分配资金用户的零值视图
func ZeroFunds(owner string) FundsView {
	return FundsView{
		Owner:          owner,
		TotalAllocated: decimal.Zero,
		Spent:          decimal.Zero,
		Balance:        decimal.Zero,
	}
}

// View 转换为视图
func (f FundsSummary) View() FundsView {
	created, updated := f.CreatedAt, f.UpdatedAt
	return FundsView{
		Owner:          f.Owner,
		TotalAllocated: f.TotalAllocated,
		Spent:          f.Spent,
		Balance:        f.Balance,
		CreatedAt:      &created,
		UpdatedAt:      &updated,
	}
}

// Clamp 按分配总额截断花费：spent = min(raw, total)，balance = total - spent
func Clamp(raw, total decimal.Decimal) (spent, balance decimal.Decimal) {
	if total.IsNegative() {
		total = decimal.Zero
	}
	spent = decimal.Min(raw, total)
	if spent.IsNegative() {
		spent = decimal.Zero
	}
	return spent, total.Sub(spent)
}
