package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundtrack/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestOverspendBody(t *testing.T) {
	body := overspendBody("<alice>", d("80"), d("50.5"))
	assert.Contains(t, body, "&lt;alice&gt;")
	assert.Contains(t, body, "80.00")
	assert.Contains(t, body, "50.50")
	assert.Contains(t, body, "截断")
}

func TestReconcileFailedBody(t *testing.T) {
	body := reconcileFailedBody("bob", errors.New("store unavailable: <timeout>"))
	assert.Contains(t, body, "bob")
	assert.Contains(t, body, "&lt;timeout&gt;")
	assert.Contains(t, body, "fundtrack -reconcile bob")
}

func TestNewMailNotifierFallsBackToLog(t *testing.T) {
	_, ok := NewMailNotifier(nil, nil).(*LogNotifier)
	assert.True(t, ok)

	_, ok = NewMailNotifier(&config.EmailConfig{Enabled: false, AlertTo: "ops@example.com"}, nil).(*LogNotifier)
	assert.True(t, ok)

	_, ok = NewMailNotifier(&config.EmailConfig{Enabled: true}, nil).(*LogNotifier)
	assert.True(t, ok, "没有收件人时不发邮件")

	_, ok = NewMailNotifier(&config.EmailConfig{Enabled: true, AlertTo: "ops@example.com"}, nil).(*MailNotifier)
	assert.True(t, ok)
}

func TestMailNotifierDelivers(t *testing.T) {
	sent := make(chan *gomail.Message, 1)
	n := NewMailNotifier(&config.EmailConfig{
		Enabled:  true,
		Username: "noreply@example.com",
		From:     "资金账本",
		AlertTo:  "ops@example.com",
	}, nil).(*MailNotifier)
	n.send = func(m *gomail.Message) error {
		sent <- m
		return nil
	}

	n.ReconcileFailed(context.Background(), "alice", errors.New("boom"))

	select {
	case m := <-sent:
		require.NotNil(t, m)
		assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
		assert.Equal(t, []string{"【资金账本】对账失败"}, m.GetHeader("Subject"))
	case <-time.After(time.Second):
		t.Fatal("alert mail not sent")
	}
}
