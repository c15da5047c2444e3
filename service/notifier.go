package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"fundtrack/config"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// Notifier 资金一致性告警：对账截断超支、对账失败
type Notifier interface {
	OverspendClamped(ctx context.Context, owner string, raw, allocated decimal.Decimal)
	ReconcileFailed(ctx context.Context, owner string, err error)
}

// LogNotifier 仅写日志
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{log: logger.With("component", "notifier")}
}

func (n *LogNotifier) OverspendClamped(ctx context.Context, owner string, raw, allocated decimal.Decimal) {
	n.log.WarnContext(ctx, "spent clamped to allocation",
		"owner", owner, "ledger_total", raw.String(), "total_allocated", allocated.String())
}

func (n *LogNotifier) ReconcileFailed(ctx context.Context, owner string, err error) {
	n.log.ErrorContext(ctx, "reconciliation failed", "owner", owner, "error", err)
}

// MailNotifier 在写日志的同时给运维邮箱发送告警邮件
type MailNotifier struct {
	*LogNotifier
	cfg  *config.EmailConfig
	send func(m *gomail.Message) error
}

// NewMailNotifier 创建邮件告警；邮件未启用或未配置收件人时退化为日志告警
func NewMailNotifier(cfg *config.EmailConfig, logger *slog.Logger) Notifier {
	base := NewLogNotifier(logger)
	if cfg == nil || !cfg.Enabled || cfg.AlertTo == "" {
		return base
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &MailNotifier{LogNotifier: base, cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

func (n *MailNotifier) OverspendClamped(ctx context.Context, owner string, raw, allocated decimal.Decimal) {
	n.LogNotifier.OverspendClamped(ctx, owner, raw, allocated)
	n.deliver(ctx, "【资金账本】支出超过分配额度", overspendBody(owner, raw, allocated))
}

func (n *MailNotifier) ReconcileFailed(ctx context.Context, owner string, err error) {
	n.LogNotifier.ReconcileFailed(ctx, owner, err)
	n.deliver(ctx, "【资金账本】对账失败", reconcileFailedBody(owner, err))
}

// deliver 异步发送，失败只记日志，不影响请求
func (n *MailNotifier) deliver(ctx context.Context, subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.cfg.Username, n.cfg.From))
	m.SetHeader("To", n.cfg.AlertTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	go func() {
		if err := n.send(m); err != nil {
			n.log.Error("发送告警邮件失败", "subject", subject, "error", err)
		}
	}()
}

func overspendBody(owner string, raw, allocated decimal.Decimal) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>⚠️ 支出超过分配额度</h2>
    <p>用户 <strong>%s</strong> 的流水合计 <strong>%s</strong> 超过分配总额 <strong>%s</strong>。</p>
    <p>已按分配总额截断 spent，余额记为 0。历史消费记录未做任何修改。</p>
    <p style="color: #666;">资金账本</p>
</body>
</html>
`, html.EscapeString(owner), raw.StringFixed(2), allocated.StringFixed(2))
}

func reconcileFailedBody(owner string, err error) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>❌ 对账失败</h2>
    <p>用户 <strong>%s</strong> 的资金汇总未能更新：</p>
    <pre>%s</pre>
    <p>变更已提交，派生字段可能过期。请执行 <code>fundtrack -reconcile %s</code> 或调用 POST /funds/reconcile 修复。</p>
    <p style="color: #666;">资金账本</p>
</body>
</html>
`, html.EscapeString(owner), html.EscapeString(err.Error()), html.EscapeString(owner))
}
