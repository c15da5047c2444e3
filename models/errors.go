package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 业务错误分类，调用方使用 errors.Is 判断
var (
	ErrInvalidAmount     = errors.New("InvalidAmount")
	ErrInvalidDate       = errors.New("InvalidDate")
	ErrInvalidExpenseID  = errors.New("InvalidExpenseId")
	ErrInvalidID         = errors.New("InvalidId")
	ErrInvalidCategory   = errors.New("InvalidCategory")
	ErrNotFound          = errors.New("NotFound")
	ErrNoFundsAllocated  = errors.New("NoFundsAllocated")
	ErrInsufficientFunds = errors.New("InsufficientFunds")
	ErrStoreUnavailable  = errors.New("StoreUnavailable")
	ErrReconcileFailed   = errors.New("ReconcileFailed")
)

// InsufficientFundsError 余额不足，携带当时可用金额
type InsufficientFundsError struct {
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: available %s", ErrInsufficientFunds, e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// NewInsufficientFunds 构造余额不足错误，可用金额最小为 0
func NewInsufficientFunds(available decimal.Decimal) error {
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &InsufficientFundsError{Available: available}
}

// StoreError 把底层存储错误包装为 StoreUnavailable
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// ErrorCode 返回错误对应的分类名称，非业务错误返回空字符串
func ErrorCode(err error) string {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrInvalidDate,
		ErrInvalidExpenseID,
		ErrInvalidID,
		ErrInvalidCategory,
		ErrNotFound,
		ErrNoFundsAllocated,
		ErrInsufficientFunds,
		ErrStoreUnavailable,
		ErrReconcileFailed,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ""
}
