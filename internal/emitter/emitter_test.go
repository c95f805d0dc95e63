package emitter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paycapture/internal/classification"
	"github.com/Veraticus/paycapture/internal/config"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/notification"
)

func TestResolveNote(t *testing.T) {
	tests := []struct {
		name  string
		label string
		note  string
		want  string
	}{
		{name: "keeps note", label: "Alipay", note: "lunch", want: "lunch"},
		{name: "empty note", label: "Alipay", note: "", want: "Alipay-detected"},
		{name: "empty note and label", label: "", note: "", want: "-detected"},
		{name: "whitespace note is kept", label: "WeChat", note: " ", want: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveNote(tt.label, tt.note))
		})
	}
}

func TestEmitter_Emit(t *testing.T) {
	now := time.UnixMilli(1_700_000_123_456)
	c := model.Classification{
		Amount: decimal.RequireFromString("23.5"),
		Note:   "支付成功 ¥23.50",
	}

	event := New().Emit("com.tencent.mm", "WeChat", c, now)

	assert.True(t, now.Equal(event.OccurredAt))
	assert.True(t, decimal.RequireFromString("23.50").Equal(event.Amount))
	assert.Equal(t, "com.tencent.mm", event.SourceID)
	assert.Equal(t, "WeChat", event.SourceLabel)
	assert.Equal(t, model.CaptureSourceAuto, event.Source)
	assert.Equal(t, "支付成功 ¥23.50", event.Note)
	assert.Equal(t, DefaultTitle, event.Title)
	assert.Equal(t, "WeChat ￥23.50, tap to record", event.Summary)
	assert.Equal(t, "WeChat ￥23.50, tap to record\n支付成功 ¥23.50", event.Detail)
	assert.Equal(t, int(now.UnixMilli()&0xfffffff), event.RequestCode)
}

func TestEmitter_EmitEmptyNote(t *testing.T) {
	c := model.Classification{Amount: decimal.NewFromInt(5)}

	event := New().Emit("com.eg.android.AlipayGphone", "Alipay", c, time.Now())

	assert.Equal(t, "Alipay-detected", event.Note)
	assert.Equal(t, "Alipay ￥5.00, tap to record\nAlipay-detected", event.Detail)
}

func TestFromConfig(t *testing.T) {
	e := FromConfig(config.PresentationConfig{
		Title:          "Spent money",
		TapText:        "tap to log",
		CurrencyPrefix: "$",
	})
	event := e.Emit("bank", "Bank", model.Classification{Amount: decimal.RequireFromString("12.3"), Note: "coffee"}, time.Now())

	assert.Equal(t, "Spent money", event.Title)
	assert.Equal(t, "Bank $12.30, tap to log", event.Summary)

	defaults := FromConfig(config.PresentationConfig{})
	assert.Equal(t, New(), defaults)
}

func TestRequestCode(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want int
	}{
		{name: "zero", ms: 0, want: 0},
		{name: "below mask", ms: 0x0abcdef, want: 0x0abcdef},
		{name: "high bits dropped", ms: 0x7_1234567, want: 0x1234567},
		{name: "current epoch", ms: 1_700_000_000_000, want: int(int64(1_700_000_000_000) & 0xfffffff)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := RequestCode(time.UnixMilli(tt.ms))
			assert.Equal(t, tt.want, code)
			assert.GreaterOrEqual(t, code, 0)
			assert.LessOrEqual(t, code, RequestCodeMask)
		})
	}
}

// An Alipay notification from end to end through the core stages.
func TestEmit_AlipayNotification(t *testing.T) {
	classifier, err := classification.NewPaymentClassifier(classification.DefaultOptions())
	require.NoError(t, err)

	content := notification.Normalize("Alipay", "支付成功 ￥88.00", "")
	assert.Equal(t, "Alipay 支付成功 ￥88.00", content)

	c, err := classifier.Classify(config.AlipaySourceID, content)
	require.NoError(t, err)

	event := New().Emit(config.AlipaySourceID, "Alipay", *c, time.Now())
	assert.Equal(t, "Alipay ￥88.00, tap to record", event.Summary)
	assert.Equal(t, "Alipay 支付成功 ￥88.00", event.Note)
	assert.Equal(t, model.CaptureSourceAuto, event.Source)
}
