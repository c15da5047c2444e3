package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout 日期格式（筛选参数、列表输出）
const DateLayout = "2006-01-02"

// dateLayouts 消费时间允许的输入格式，按顺序尝试
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// NormalizeOwner 用户标识去空格并转小写，空值返回 ErrInvalidID
func NormalizeOwner(owner string) (string, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return "", ErrInvalidID
	}
	return owner, nil
}

// NormalizeCategory 类别去空格，首字母大写，其余小写
func NormalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ErrInvalidCategory
	}
	first, size := utf8.DecodeRuneInString(category)
	return string(unicode.ToUpper(first)) + strings.ToLower(category[size:]), nil
}

// ParseAmount 解析金额文本（允许两端带引号的 JSON 字符串），不校验正负
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// MaxAmount decimal(12,2) 列能存下的最大金额
var MaxAmount = decimal.RequireFromString("9999999999.99")

// StorableAmount 校验金额不超过两位小数且不超出列范围
func StorableAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) || amount.Abs().GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// PositiveAmount 校验金额大于 0 且可以原样存储
func PositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return StorableAmount(amount)
}

// NonNegativeAmount 校验金额不小于 0 且可以原样存储
func NonNegativeAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return StorableAmount(amount)
}

// ParseDate 解析消费时间，失败返回 ErrInvalidDate
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseDateRange 解析筛选日期，结束日期包含当天
func ParseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.ParseInLocation(DateLayout, start, time.Local)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		from = &t
	}
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.ParseInLocation(DateLayout, end, time.Local)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to, nil
}

// ValidateExpenseID 校验消费记录 ID 格式
func ValidateExpenseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrInvalidExpenseID
	}
	return parsed.String(), nil
}

// NewExpenseID 生成消费记录 ID
func NewExpenseID() string {
	return uuid.NewString()
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
