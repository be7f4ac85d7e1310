package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrices(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCurrent  *float64
		wantOld      *float64
		wantDiscount *float64
	}{
		{
			name:         "current old and discount",
			text:         "45.90 грн -20% 57.00 грн",
			wantCurrent:  floatPtr(45.90),
			wantOld:      floatPtr(57.00),
			wantDiscount: floatPtr(20),
		},
		{
			name:        "single price",
			text:        "Молоко 38,50 грн",
			wantCurrent: floatPtr(38.50),
		},
		{
			name:        "comma decimal separator",
			text:        "129,99 грн",
			wantCurrent: floatPtr(129.99),
		},
		{
			name: "no currency marker",
			text: "Молоко Простоквашино 2л",
		},
		{
			name: "out of range value ignored",
			text: "0 грн",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, old, discount := ParsePrices(tt.text)
			assertFloatPtr(t, tt.wantCurrent, current)
			assertFloatPtr(t, tt.wantOld, old)
			assertFloatPtr(t, tt.wantDiscount, discount)
		})
	}
}

func TestExtractFatPct(t *testing.T) {
	assert.Equal(t, "2.5%", ExtractFatPct("Молоко 2,5% 900 мл"))
	assert.Equal(t, "73%", ExtractFatPct("Масло 73% 180 г"))
	assert.Equal(t, "", ExtractFatPct("Яйця курячі 10 шт"))
}

func floatPtr(v float64) *float64 {
	return &v
}

func assertFloatPtr(t *testing.T, want, got *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.InDelta(t, *want, *got, 1e-9)
}
