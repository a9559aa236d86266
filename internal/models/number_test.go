package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		missing bool
	}{
		{"plain integer", "1000", 1000, false},
		{"thousands separators", "1,234,567", 1234567, false},
		{"decimal with separators", "1,234.56", 1234.56, false},
		{"percent suffix", "12.5%", 12.5, false},
		{"surrounding whitespace", "  42  ", 42, false},
		{"negative", "-3.5", -3.5, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"garbage", "n/a", 0, true},
		{"mixed garbage", "12abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ParseNumber(tt.input)
			if tt.missing {
				assert.True(t, n.IsMissing())
				return
			}
			f, ok := n.Float64()
			assert.True(t, ok)
			assert.InDelta(t, tt.want, f, 1e-9)
		})
	}
}

func TestNumberArithmeticPropagatesMissing(t *testing.T) {
	missing := MissingNumber()
	ten := N(10)

	assert.True(t, ten.Add(missing).IsMissing())
	assert.True(t, missing.Add(ten).IsMissing())
	assert.True(t, ten.Sub(missing).IsMissing())
	assert.True(t, ten.Mul(missing).IsMissing())
	assert.True(t, ten.Div(missing).IsMissing())
	assert.True(t, missing.Div(ten).IsMissing())
}

func TestNumberDivByZeroIsMissing(t *testing.T) {
	q := N(100).Div(N(0))
	assert.True(t, q.IsMissing(), "division by zero must yield missing, not panic")
}

func TestReturnPct(t *testing.T) {
	pct := ReturnPct(N(650000), N(810000))
	f, ok := pct.Float64()
	assert.True(t, ok)
	assert.InDelta(t, 24.6153846, f, 0.0001)
}

func TestReturnPctZeroPurchaseIsMissing(t *testing.T) {
	assert.True(t, ReturnPct(N(0), N(500)).IsMissing())
	assert.True(t, ReturnPct(MissingNumber(), N(500)).IsMissing())
}

func TestNumberOrZero(t *testing.T) {
	assert.True(t, MissingNumber().OrZero().IsZero())
	assert.Equal(t, "42", N(42).OrZero().String())
}

func TestNumberJSON(t *testing.T) {
	b, err := N(12.5).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "12.5", string(b))

	b, err = MissingNumber().MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "null", string(b))

	var n Number
	assert.NoError(t, n.UnmarshalJSON([]byte("null")))
	assert.True(t, n.IsMissing())
	assert.NoError(t, n.UnmarshalJSON([]byte(`"1,000"`)))
	f, _ := n.Float64()
	assert.InDelta(t, 1000, f, 1e-9)
}
