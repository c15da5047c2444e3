package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fundtrack/models"
	"fundtrack/repository"

	"github.com/shopspring/decimal"
)

// Reconciler 从消费流水重新计算 spent/balance 并写回资金汇总
// 派生字段只允许经由这里写入
type Reconciler struct {
	store    repository.Store
	notifier Notifier
	now      func() time.Time
	log      *slog.Logger
}

// NewReconciler 创建对账器
func NewReconciler(store repository.Store, notifier Notifier, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Reconciler{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		log:      logger.With("component", "reconciler"),
	}
}

// Reconcile 在一个事务内：读取（必要时创建）汇总 → 汇总流水 → 截断 → 写回
// 连续调用且流水无变化时结果相同
func (r *Reconciler) Reconcile(ctx context.Context, owner string) (models.FundsView, error) {
	var (
		view       models.FundsView
		raw        decimal.Decimal
		wasClamped bool
	)
	err := r.store.Atomic(ctx, func(tx repository.Store) error {
		now := r.now()
		fs, err := tx.Funds().Ensure(ctx, owner, now)
		if err != nil {
			return err
		}
		raw, err = tx.Ledger().SumAmount(ctx, owner, "")
		if err != nil {
			return err
		}
		// 上次对账已截断：余额为 0 且流水仍多于已记花费
		wasClamped = fs.Balance.IsZero() && raw.GreaterThan(fs.Spent)
		spent, balance := models.Clamp(raw, fs.TotalAllocated)
		if err := tx.Funds().WriteDerived(ctx, owner, spent, balance, now); err != nil {
			return err
		}
		fs.Spent, fs.Balance, fs.UpdatedAt = spent, balance, now
		view = fs.View()
		return nil
	})
	if err != nil {
		return models.FundsView{}, err
	}

	// 只在进入截断状态时提醒，持续超额期间的后续对账不重复发送
	if raw.GreaterThan(view.TotalAllocated) && !wasClamped {
		r.notifier.OverspendClamped(ctx, owner, raw, view.TotalAllocated)
	}
	r.log.DebugContext(ctx, "reconciled", "owner", owner,
		"total_allocated", view.TotalAllocated.String(), "spent", view.Spent.String(), "balance", view.Balance.String())
	return view, nil
}

// Compute 与 Reconcile 计算方式相同但不写入，没有汇总记录时按分配额 0 计算
func (r *Reconciler) Compute(ctx context.Context, owner string) (models.FundsView, error) {
	view := models.ZeroFunds(owner)
	fs, err := r.store.Funds().Get(ctx, owner)
	switch {
	case err == nil:
		view = fs.View()
	case !errors.Is(err, models.ErrNotFound):
		return models.FundsView{}, err
	}

	raw, err := r.store.Ledger().SumAmount(ctx, owner, "")
	if err != nil {
		return models.FundsView{}, err
	}
	view.Spent, view.Balance = models.Clamp(raw, view.TotalAllocated)
	return view, nil
}
