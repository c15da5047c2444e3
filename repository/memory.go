package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"fundtrack/models"

	"github.com/shopspring/decimal"
)

// MemoryStore 进程内存储，用于本地运行和测试
// 不提供事务回滚；并发写由服务层的 owner 锁串行化
type MemoryStore struct {
	mu       sync.RWMutex
	expenses []models.Expense
	funds    map[string]*models.FundsSummary
	nextID   uint
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{funds: make(map[string]*models.FundsSummary)}
}

func (s *MemoryStore) Ledger() LedgerStore { return (*memoryLedger)(s) }

func (s *MemoryStore) Funds() FundsLedger { return (*memoryFunds)(s) }

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return models.StoreError("transaction", err)
	}
	return fn(s)
}

func (s *MemoryStore) Close() error { return nil }

type memoryLedger MemoryStore

func (l *memoryLedger) Insert(_ context.Context, expense *models.Expense) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expense.ID == "" {
		expense.ID = models.NewExpenseID()
	}
	l.expenses = append(l.expenses, *expense)
	return expense.ID, nil
}

func (l *memoryLedger) Find(_ context.Context, owner string, filter models.ExpenseFilter) ([]models.Expense, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Expense
	for _, e := range l.expenses {
		if e.Owner == owner && filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memoryLedger) FindOne(_ context.Context, id, owner string) (*models.Expense, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.index(id, owner); i >= 0 {
		e := l.expenses[i]
		return &e, nil
	}
	return nil, models.ErrNotFound
}

func (l *memoryLedger) Update(_ context.Context, id, owner string, patch models.ExpensePatch) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id, owner)
	if i < 0 {
		return false, nil
	}
	patch.Apply(&l.expenses[i])
	return true, nil
}

func (l *memoryLedger) Delete(_ context.Context, id, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id, owner)
	if i < 0 {
		return false, nil
	}
	l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
	return true, nil
}

func (l *memoryLedger) SumAmount(_ context.Context, owner, excludeID string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, e := range l.expenses {
		if e.Owner == owner && e.ID != excludeID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (l *memoryLedger) index(id, owner string) int {
	for i, e := range l.expenses {
		if e.ID == id && e.Owner == owner {
			return i
		}
	}
	return -1
}

type memoryFunds MemoryStore

func (f *memoryFunds) Get(_ context.Context, owner string) (*models.FundsSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fs, ok := f.funds[owner]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *fs
	return &out, nil
}

func (f *memoryFunds) Ensure(_ context.Context, owner string, at time.Time) (*models.FundsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs := f.getOrCreate(owner, at)
	out := *fs
	return &out, nil
}

func (f *memoryFunds) UpsertAllocation(_ context.Context, owner string, delta decimal.Decimal, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs := f.getOrCreate(owner, at)
	fs.TotalAllocated = fs.TotalAllocated.Add(delta)
	fs.UpdatedAt = at
	return nil
}

func (f *memoryFunds) SetTotal(_ context.Context, owner string, total decimal.Decimal, at time.Time) error {
	return f.update(owner, func(fs *models.FundsSummary) {
		fs.TotalAllocated = total
		fs.UpdatedAt = at
	})
}

func (f *memoryFunds) WriteDerived(_ context.Context, owner string, spent, balance decimal.Decimal, at time.Time) error {
	return f.update(owner, func(fs *models.FundsSummary) {
		fs.Spent = spent
		fs.Balance = balance
		fs.UpdatedAt = at
	})
}

func (f *memoryFunds) Reset(_ context.Context, owner string, at time.Time) error {
	return f.update(owner, func(fs *models.FundsSummary) {
		fs.TotalAllocated = decimal.Zero
		fs.Spent = decimal.Zero
		fs.Balance = decimal.Zero
		fs.UpdatedAt = at
	})
}

func (f *memoryFunds) Owners(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	owners := make([]string, 0, len(f.funds))
	for owner := range f.funds {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}

func (f *memoryFunds) update(owner string, apply func(fs *models.FundsSummary)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs, ok := f.funds[owner]
	if !ok {
		return models.ErrNotFound
	}
	apply(fs)
	return nil
}

// getOrCreate 调用方需持有写锁
func (f *memoryFunds) getOrCreate(owner string, at time.Time) *models.FundsSummary {
	if fs, ok := f.funds[owner]; ok {
		return fs
	}
	f.nextID++
	fs := &models.FundsSummary{
		ID:             f.nextID,
		Owner:          owner,
		TotalAllocated: decimal.Zero,
		Spent:          decimal.Zero,
		Balance:        decimal.Zero,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	f.funds[owner] = fs
	return fs
}
