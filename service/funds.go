package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fundtrack/models"
	"fundtrack/repository"

	"github.com/shopspring/decimal"
)

// FundsService 资金分配：追加、重设总额、查询、清零，以及运维强制对账
type FundsService struct {
	store      repository.Store
	reconciler *Reconciler
	locker     Locker
	notifier   Notifier
	now        func() time.Time
	log        *slog.Logger
}

// NewFundsService 创建资金服务
func NewFundsService(store repository.Store, reconciler *Reconciler, locker Locker, notifier Notifier, logger *slog.Logger) *FundsService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &FundsService{
		store:      store,
		reconciler: reconciler,
		locker:     locker,
		notifier:   notifier,
		now:        time.Now,
		log:        logger.With("component", "funds"),
	}
}

// Allocate 追加分配金额，没有记录时以该金额创建
func (s *FundsService) Allocate(ctx context.Context, owner string, amount decimal.Decimal) (models.FundsView, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return models.FundsView{}, err
	}
	if err := models.PositiveAmount(amount); err != nil {
		return models.FundsView{}, err
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return models.FundsView{}, err
	}
	defer unlock()

	// 累加后的总额同样不能超出列范围
	current, err := s.store.Funds().Get(ctx, owner)
	switch {
	case err == nil:
		if err := models.StorableAmount(current.TotalAllocated.Add(amount)); err != nil {
			return models.FundsView{}, err
		}
	case !errors.Is(err, models.ErrNotFound):
		return models.FundsView{}, err
	}

	if err := s.store.Funds().UpsertAllocation(ctx, owner, amount, s.now()); err != nil {
		return models.FundsView{}, err
	}
	s.log.InfoContext(ctx, "funds allocated", "owner", owner, "amount", amount.String())
	return s.reconcile(ctx, owner)
}

// SetTotal 直接覆盖分配总额（非累加），已有花费超出时由对账截断
func (s *FundsService) SetTotal(ctx context.Context, owner string, total decimal.Decimal) (models.FundsView, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return models.FundsView{}, err
	}
	if err := models.NonNegativeAmount(total); err != nil {
		return models.FundsView{}, err
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return models.FundsView{}, err
	}
	defer unlock()

	if err := s.store.Funds().SetTotal(ctx, owner, total, s.now()); err != nil {
		return models.FundsView{}, err
	}
	s.log.InfoContext(ctx, "funds total set", "owner", owner, "total", total.String())
	return s.reconcile(ctx, owner)
}

// Get 返回已持久化的汇总；不存在时返回零值视图，不会创建记录
func (s *FundsService) Get(ctx context.Context, owner string) (models.FundsView, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return models.FundsView{}, err
	}
	fs, err := s.store.Funds().Get(ctx, owner)
	if errors.Is(err, models.ErrNotFound) {
		return models.ZeroFunds(owner), nil
	}
	if err != nil {
		return models.FundsView{}, err
	}
	return fs.View(), nil
}

// Reset 把总额、花费、余额全部清零
func (s *FundsService) Reset(ctx context.Context, owner string) error {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.Funds().Reset(ctx, owner, s.now()); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "funds reset", "owner", owner)
	return nil
}

// Reconcile 运维修复入口：强制对账单个用户
func (s *FundsService) Reconcile(ctx context.Context, owner string) (models.FundsView, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return models.FundsView{}, err
	}

	unlock, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return models.FundsView{}, err
	}
	defer unlock()

	return s.reconciler.Reconcile(ctx, owner)
}

// ReconcileAll 对所有有资金记录的用户逐个对账，返回成功数量与汇总错误
func (s *FundsService) ReconcileAll(ctx context.Context) (int, error) {
	owners, err := s.store.Funds().Owners(ctx)
	if err != nil {
		return 0, err
	}
	var (
		done int
		errs []error
	)
	for _, owner := range owners {
		if _, err := s.Reconcile(ctx, owner); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
			continue
		}
		done++
	}
	s.log.InfoContext(ctx, "reconciled all owners", "owners", len(owners), "ok", done)
	return done, errors.Join(errs...)
}

// reconcile 变更已提交后对账；失败时返回当前持久化视图和 ErrReconcileFailed
func (s *FundsService) reconcile(ctx context.Context, owner string) (models.FundsView, error) {
	view, err := s.reconciler.Reconcile(ctx, owner)
	if err == nil {
		return view, nil
	}
	s.notifier.ReconcileFailed(ctx, owner, err)
	if fs, getErr := s.store.Funds().Get(ctx, owner); getErr == nil {
		view = fs.View()
	}
	return view, fmt.Errorf("%w: %w", models.ErrReconcileFailed, err)
}
