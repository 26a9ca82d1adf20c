package extenso

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReais(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "zero reais"},
		{"1", "um real"},
		{"2", "dois reais"},
		{"7", "sete reais"},
		{"10", "dez reais"},
		{"15", "quinze reais"},
		{"19", "dezenove reais"},
		{"20", "vinte reais"},
		{"21.50", "vinte e um reais e 50 centavos"},
		{"99", "noventa e nove reais"},
		{"100", "cem reais"},
		{"101", "cento e um reais"},
		{"115", "cento e quinze reais"},
		{"150", "cento e cinquenta reais"},
		{"200", "duzentos reais"},
		{"999.99", "novecentos e noventa e nove reais e 99 centavos"},
		{"0.05", "5 centavos"},
		{"0.5", "50 centavos"},
		{"1.25", "um real e 25 centavos"},
	}
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Reais(amount))
		})
	}
}

func TestFromFloatRoundsCents(t *testing.T) {
	assert.Equal(t, "vinte e um reais e 50 centavos", FromFloat(21.50))
	assert.Equal(t, "trinta e três reais e 33 centavos", FromFloat(33.333))
}

func TestOutOfRangeDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = Reais(decimal.NewFromInt(1500))
		_ = Reais(decimal.NewFromInt(-3))
	})
	assert.Equal(t, " reais", Reais(decimal.NewFromInt(1500)))
	assert.Equal(t, " e cinquenta reais", Reais(decimal.NewFromInt(1250)))
	assert.False(t, InRange(decimal.NewFromInt(1500)))
	assert.False(t, InRange(decimal.NewFromInt(1000)))
	assert.False(t, InRange(decimal.NewFromInt(-1)))
	assert.True(t, InRange(decimal.RequireFromString("999.99")))
}
