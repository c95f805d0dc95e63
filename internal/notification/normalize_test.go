package notification

import (
	"testing"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		text    string
		bigText string
		want    string
	}{
		{
			name:    "all fields present",
			title:   "支付宝",
			text:    "支付成功",
			bigText: "¥88.00 超市购物",
			want:    "支付宝 支付成功 ¥88.00 超市购物",
		},
		{
			name: "all fields absent",
			want: "",
		},
		{
			name:  "only title",
			title: "Payment",
			want:  "Payment",
		},
		{
			name:    "only big text",
			bigText: "消费 12元",
			want:    "消费 12元",
		},
		{
			name:    "empty middle field keeps both separators",
			title:   "a",
			bigText: "b",
			want:    "a  b",
		},
		{
			name:  "non-breaking spaces become spaces",
			title: "支付\u00a0成功",
			text:  "¥\u00a05.00",
			want:  "支付 成功 ¥ 5.00",
		},
		{
			name:    "leading and trailing non-breaking spaces are trimmed",
			title:   "\u00a0\u00a0付款",
			bigText: "3元\u00a0",
			want:    "付款  3元",
		},
		{
			name:  "whitespace only",
			title: "   ",
			text:  "\u00a0",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.title, tt.text, tt.bigText))
		})
	}
}

func TestContent(t *testing.T) {
	n := model.RawNotification{
		SourceID: "com.tencent.mm",
		Title:    "微信支付",
		Text:     "已付款",
		BigText:  "￥10.50",
	}

	assert.Equal(t, "微信支付 已付款 ￥10.50", Content(n))
}
