package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fundtrack/models"
	"fundtrack/repository"

	"github.com/shopspring/decimal"
)

// NewExpense 创建消费记录的输入
type NewExpense struct {
	Amount      decimal.Decimal
	Category    string
	Date        string // 为空时取当前时间
	Description string
}

// ExpenseUpdate 部分更新，nil 字段不修改
type ExpenseUpdate struct {
	Amount      *decimal.Decimal
	Category    *string
	Date        *string
	Description *string
}

// ListQuery 列表筛选
type ListQuery struct {
	Start    string
	End      string
	Category string
}

// ExpenseList 消费列表与当前资金汇总
type ExpenseList struct {
	Expenses []models.ExpenseView `json:"expenses"`
	Funds    models.FundsView     `json:"funds"`
}

// ExpenseService 消费记录的增删改查，写入前校验资金，写入后对账
type ExpenseService struct {
	store      repository.Store
	reconciler *Reconciler
	locker     Locker
	notifier   Notifier
	now        func() time.Time
	log        *slog.Logger
}

// NewExpenseService 创建消费记录服务
func NewExpenseService(store repository.Store, reconciler *Reconciler, locker Locker, notifier Notifier, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &ExpenseService{
		store:      store,
		reconciler: reconciler,
		locker:     locker,
		notifier:   notifier,
		now:        time.Now,
		log:        logger.With("component", "expense"),
	}
}

// Create 校验金额与余额后写入消费记录，返回新记录 ID
// 对账失败时记录已保存，返回 ID 和 ErrReconcileFailed
func (s *ExpenseService) Create(ctx context.Context, owner string, in NewExpense) (string, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return "", err
	}
	if err := models.PositiveAmount(in.Amount); err != nil {
		return "", err
	}
	category, err := models.NormalizeCategory(in.Category)
	if err != nil {
		return "", err
	}
	occurredOn := s.now()
	if strings.TrimSpace(in.Date) != "" {
		if occurredOn, err = models.ParseDate(in.Date); err != nil {
			return "", err
		}
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return "", err
	}
	defer unlock()

	var id string
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		fs, err := tx.Funds().Get(ctx, owner)
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNoFundsAllocated
		}
		if err != nil {
			return err
		}
		if !fs.TotalAllocated.IsPositive() {
			return models.ErrNoFundsAllocated
		}

		current, err := tx.Ledger().SumAmount(ctx, owner, "")
		if err != nil {
			return err
		}
		available := fs.TotalAllocated.Sub(current)
		if in.Amount.GreaterThan(available) {
			return models.NewInsufficientFunds(available)
		}

		now := s.now()
		id, err = tx.Ledger().Insert(ctx, &models.Expense{
			Owner:       owner,
			Amount:      in.Amount,
			Category:    category,
			OccurredOn:  occurredOn,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "expense created", "owner", owner, "id", id, "amount", in.Amount.String())
	return id, s.reconcile(ctx, owner)
}

// Update 部分更新消费记录；修改金额时排除本条后重新校验余额
func (s *ExpenseService) Update(ctx context.Context, id, owner string, in ExpenseUpdate) (*models.Expense, error) {
	id, err := models.ValidateExpenseID(id)
	if err != nil {
		return nil, err
	}
	owner, err = models.NormalizeOwner(owner)
	if err != nil {
		return nil, err
	}

	patch := models.ExpensePatch{Amount: in.Amount, Description: in.Description}
	if in.Amount != nil {
		if err := models.PositiveAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Category != nil {
		category, err := models.NormalizeCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		patch.Category = &category
	}
	if in.Date != nil {
		occurredOn, err := models.ParseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		patch.OccurredOn = &occurredOn
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *models.Expense
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := tx.Ledger().FindOne(ctx, id, owner); err != nil {
			return err
		}

		if patch.Amount != nil {
			total := decimal.Zero
			fs, err := tx.Funds().Get(ctx, owner)
			switch {
			case err == nil:
				total = fs.TotalAllocated
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
			others, err := tx.Ledger().SumAmount(ctx, owner, id)
			if err != nil {
				return err
			}
			if others.Add(*patch.Amount).GreaterThan(total) {
				return models.NewInsufficientFunds(total.Sub(others))
			}
		}

		patch.UpdatedAt = s.now()
		matched, err := tx.Ledger().Update(ctx, id, owner, patch)
		if err != nil {
			return err
		}
		// 校验与写入之间记录被并发删除
		if !matched {
			return models.ErrNotFound
		}
		updated, err = tx.Ledger().FindOne(ctx, id, owner)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "expense updated", "owner", owner, "id", id)
	return updated, s.reconcile(ctx, owner)
}

// Delete 删除消费记录并对账
func (s *ExpenseService) Delete(ctx context.Context, id, owner string) error {
	id, err := models.ValidateExpenseID(id)
	if err != nil {
		return err
	}
	owner, err = models.NormalizeOwner(owner)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return err
	}
	defer unlock()

	matched, err := s.store.Ledger().Delete(ctx, id, owner)
	if err != nil {
		return err
	}
	if !matched {
		return models.ErrNotFound
	}

	s.log.InfoContext(ctx, "expense deleted", "owner", owner, "id", id)
	return s.reconcile(ctx, owner)
}

// List 按条件查询消费记录，附带实时计算的资金汇总
func (s *ExpenseService) List(ctx context.Context, owner string, q ListQuery) (*ExpenseList, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return nil, err
	}
	start, end, err := models.ParseDateRange(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.Ledger().Find(ctx, owner, models.ExpenseFilter{
		Start:    start,
		End:      end,
		Category: strings.TrimSpace(q.Category),
	})
	if err != nil {
		return nil, err
	}
	funds, err := s.reconciler.Compute(ctx, owner)
	if err != nil {
		return nil, err
	}

	views := make([]models.ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, e.View())
	}
	return &ExpenseList{Expenses: views, Funds: funds}, nil
}

// reconcile 变更已提交后对账；失败不回滚变更
func (s *ExpenseService) reconcile(ctx context.Context, owner string) error {
	if _, err := s.reconciler.Reconcile(ctx, owner); err != nil {
		s.notifier.ReconcileFailed(ctx, owner, err)
		return fmt.Errorf("%w: %w", models.ErrReconcileFailed, err)
	}
	return nil
}
