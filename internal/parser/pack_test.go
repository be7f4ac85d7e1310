package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silpodev/silpo-scraper/internal/models"
)

func TestExtractPack(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		wantQty  float64
		wantUnit string
		none     bool
	}{
		{
			name:     "liters normalized to milliliters",
			title:    "Молоко Простоквашино ультрапастеризоване 2л",
			wantQty:  2000,
			wantUnit: "мл",
		},
		{
			name:     "fractional liters with comma",
			title:    "Кефір Ферма 2,5% 0,9 л",
			wantQty:  900,
			wantUnit: "мл",
		},
		{
			name:     "kilograms normalized to grams",
			title:    "Сир твердий Звенигора 1кг",
			wantQty:  1000,
			wantUnit: "г",
		},
		{
			name:     "pieces",
			title:    "Яйця курячі С1 10 шт",
			wantQty:  10,
			wantUnit: "шт",
		},
		{
			name:     "grams",
			title:    "Масло солодковершкове 73% 180 г",
			wantQty:  180,
			wantUnit: "г",
		},
		{
			name:     "milliliters",
			title:    "Йогурт питний полуниця 290мл",
			wantQty:  290,
			wantUnit: "мл",
		},
		{
			name:  "no pack phrase",
			title: "Сметана домашня",
			none:  true,
		},
		{
			name:  "empty title",
			title: "",
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := ExtractPack(tt.title)
			if tt.none {
				assert.True(t, pack.IsZero())
				return
			}
			require.NotNil(t, pack.Qty)
			require.NotNil(t, pack.Unit)
			assert.Equal(t, tt.wantQty, *pack.Qty)
			assert.Equal(t, tt.wantUnit, *pack.Unit)
		})
	}
}

func TestExtractPackPriority(t *testing.T) {
	// Piece count outranks the volume phrase when both are present.
	pack := ExtractPack("Сирок глазурований 36 г 4 шт")
	require.NotNil(t, pack.Unit)
	assert.Equal(t, "шт", *pack.Unit)
	assert.Equal(t, 4.0, *pack.Qty)
}

func TestComputePricePerUnit(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		pack  models.Pack
		want  *float64
	}{
		{
			name:  "per kilogram equivalent",
			price: 30,
			pack:  models.Pack{Qty: models.Float(500), Unit: models.String("г")},
			want:  models.Float(60),
		},
		{
			name:  "per liter equivalent",
			price: 45,
			pack:  models.Pack{Qty: models.Float(900), Unit: models.String("мл")},
			want:  models.Float(50),
		},
		{
			name:  "per piece",
			price: 12,
			pack:  models.Pack{Qty: models.Float(10), Unit: models.String("шт")},
			want:  models.Float(1.2),
		},
		{
			name:  "missing quantity",
			price: 12,
			pack:  models.Pack{},
			want:  nil,
		},
		{
			name:  "zero quantity",
			price: 12,
			pack:  models.Pack{Qty: models.Float(0), Unit: models.String("г")},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePricePerUnit(tt.price, tt.pack)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}
