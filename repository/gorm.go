package repository

import (
	"context"
	"errors"
	"time"

	"fundtrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm 的存储实现（MySQL）
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 包装已打开的 gorm 连接
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ledger() LedgerStore {
	return &gormLedger{db: s.db}
}

func (s *GormStore) Funds() FundsLedger {
	return &gormFunds{db: s.db}
}

// Atomic 事务内执行；业务错误原样返回，事务本身的失败包装为 StoreUnavailable
func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&GormStore{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return models.StoreError("transaction", err)
}

// Close 关闭连接池
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormLedger struct {
	db *gorm.DB
}

func (l *gormLedger) Insert(ctx context.Context, expense *models.Expense) (string, error) {
	if expense.ID == "" {
		expense.ID = models.NewExpenseID()
	}
	if err := l.db.WithContext(ctx).Create(expense).Error; err != nil {
		return "", models.StoreError("insert expense", err)
	}
	return expense.ID, nil
}

func (l *gormLedger) Find(ctx context.Context, owner string, filter models.ExpenseFilter) ([]models.Expense, error) {
	query := l.db.WithContext(ctx).Where("owner = ?", owner)
	if filter.Start != nil {
		query = query.Where("occurred_on >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("occurred_on <= ?", *filter.End)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	var expenses []models.Expense
	if err := query.Order("created_at ASC").Find(&expenses).Error; err != nil {
		return nil, models.StoreError("find expenses", err)
	}
	return expenses, nil
}

func (l *gormLedger) FindOne(ctx context.Context, id, owner string) (*models.Expense, error) {
	var expense models.Expense
	err := l.db.WithContext(ctx).Where("id = ? AND owner = ?", id, owner).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.StoreError("find expense", err)
	}
	return &expense, nil
}

func (l *gormLedger) Update(ctx context.Context, id, owner string, patch models.ExpensePatch) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.Expense{}).
		Where("id = ? AND owner = ?", id, owner).
		Updates(patch.Columns())
	if res.Error != nil {
		return false, models.StoreError("update expense", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// MySQL 在值未变化时 RowsAffected 为 0，需再确认记录是否存在
	return l.exists(ctx, id, owner)
}

func (l *gormLedger) Delete(ctx context.Context, id, owner string) (bool, error) {
	res := l.db.WithContext(ctx).Where("id = ? AND owner = ?", id, owner).Delete(&models.Expense{})
	if res.Error != nil {
		return false, models.StoreError("delete expense", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *gormLedger) SumAmount(ctx context.Context, owner, excludeID string) (decimal.Decimal, error) {
	query := l.db.WithContext(ctx).Model(&models.Expense{}).Where("owner = ?", owner)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var total decimal.Decimal
	if err := query.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, models.StoreError("sum expenses", err)
	}
	return total, nil
}

func (l *gormLedger) exists(ctx context.Context, id, owner string) (bool, error) {
	var n int64
	if err := l.db.WithContext(ctx).Model(&models.Expense{}).
		Where("id = ? AND owner = ?", id, owner).Count(&n).Error; err != nil {
		return false, models.StoreError("count expense", err)
	}
	return n > 0, nil
}

type gormFunds struct {
	db *gorm.DB
}

func (f *gormFunds) Get(ctx context.Context, owner string) (*models.FundsSummary, error) {
	var fs models.FundsSummary
	err := f.db.WithContext(ctx).Where("owner = ?", owner).First(&fs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.StoreError("get funds", err)
	}
	return &fs, nil
}

// Ensure 读取并锁定汇总行（SELECT ... FOR UPDATE），不存在时创建零值记录
func (f *gormFunds) Ensure(ctx context.Context, owner string, at time.Time) (*models.FundsSummary, error) {
	db := f.db.WithContext(ctx)
	var fs models.FundsSummary
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("owner = ?", owner).First(&fs).Error
	if err == nil {
		return &fs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.StoreError("lock funds", err)
	}

	fs = models.FundsSummary{
		Owner:          owner,
		TotalAllocated: decimal.Zero,
		Spent:          decimal.Zero,
		Balance:        decimal.Zero,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	// 并发创建时唯一索引冲突，忽略后重新读取
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fs).Error; err != nil {
		return nil, models.StoreError("create funds", err)
	}
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("owner = ?", owner).First(&fs).Error; err != nil {
		return nil, models.StoreError("lock funds", err)
	}
	return &fs, nil
}

// UpsertAllocation 不存在则以 delta 作为初始总额，否则累加
func (f *gormFunds) UpsertAllocation(ctx context.Context, owner string, delta decimal.Decimal, at time.Time) error {
	fs := models.FundsSummary{
		Owner:          owner,
		TotalAllocated: delta,
		Spent:          decimal.Zero,
		Balance:        decimal.Zero,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	err := f.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_allocated": gorm.Expr("total_allocated + ?", delta),
			"updated_at":      at,
		}),
	}).Create(&fs).Error
	return models.StoreError("allocate funds", err)
}

func (f *gormFunds) SetTotal(ctx context.Context, owner string, total decimal.Decimal, at time.Time) error {
	return f.update(ctx, owner, "set total funds", map[string]interface{}{
		"total_allocated": total,
		"updated_at":      at,
	})
}

func (f *gormFunds) WriteDerived(ctx context.Context, owner string, spent, balance decimal.Decimal, at time.Time) error {
	return f.update(ctx, owner, "write derived funds", map[string]interface{}{
		"spent":      spent,
		"balance":    balance,
		"updated_at": at,
	})
}

func (f *gormFunds) Reset(ctx context.Context, owner string, at time.Time) error {
	return f.update(ctx, owner, "reset funds", map[string]interface{}{
		"total_allocated": decimal.Zero,
		"spent":           decimal.Zero,
		"balance":         decimal.Zero,
		"updated_at":      at,
	})
}

func (f *gormFunds) Owners(ctx context.Context) ([]string, error) {
	var owners []string
	if err := f.db.WithContext(ctx).Model(&models.FundsSummary{}).Order("owner ASC").Pluck("owner", &owners).Error; err != nil {
		return nil, models.StoreError("list owners", err)
	}
	return owners, nil
}

// update 按 owner 更新，记录不存在返回 ErrNotFound
func (f *gormFunds) update(ctx context.Context, owner, op string, updates map[string]interface{}) error {
	res := f.db.WithContext(ctx).Model(&models.FundsSummary{}).Where("owner = ?", owner).Updates(updates)
	if res.Error != nil {
		return models.StoreError(op, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := f.db.WithContext(ctx).Model(&models.FundsSummary{}).Where("owner = ?", owner).Count(&n).Error; err != nil {
		return models.StoreError(op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
