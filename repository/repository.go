// Package repository 消费流水与资金汇总的持久化
package repository

import (
	"context"
	"time"

	"fundtrack/models"

	"github.com/shopspring/decimal"
)

// LedgerStore 消费流水存储，所有操作都以 owner 限定范围
type LedgerStore interface {
	Insert(ctx context.Context, expense *models.Expense) (string, error)
	Find(ctx context.Context, owner string, filter models.ExpenseFilter) ([]models.Expense, error)
	FindOne(ctx context.Context, id, owner string) (*models.Expense, error)
	Update(ctx context.Context, id, owner string, patch models.ExpensePatch) (bool, error)
	Delete(ctx context.Context, id, owner string) (bool, error)
	SumAmount(ctx context.Context, owner, excludeID string) (decimal.Decimal, error)
}

// FundsLedger 资金汇总存储，每个 owner 一条记录
type FundsLedger interface {
	Get(ctx context.Context, owner string) (*models.FundsSummary, error)
	Ensure(ctx context.Context, owner string, at time.Time) (*models.FundsSummary, error)
	UpsertAllocation(ctx context.Context, owner string, delta decimal.Decimal, at time.Time) error
	SetTotal(ctx context.Context, owner string, total decimal.Decimal, at time.Time) error
	WriteDerived(ctx context.Context, owner string, spent, balance decimal.Decimal, at time.Time) error
	Reset(ctx context.Context, owner string, at time.Time) error
	Owners(ctx context.Context) ([]string, error)
}

// Store 持有底层连接，进程启动时创建、退出时 Close
type Store interface {
	Ledger() LedgerStore
	Funds() FundsLedger
	// Atomic 在一个事务中执行 fn，fn 返回错误时回滚
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Close() error
}
