package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minjaelee/finboard/internal/models"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    models.Number
		expected string
	}{
		{"grouped", models.N(1234567), "1,234,567"},
		{"rounds to integer", models.N(1234567.89), "1,234,568"},
		{"small", models.N(42), "42"},
		{"zero", models.N(0), "0"},
		{"negative", models.N(-1234567), "-1,234,567"},
		{"missing", models.MissingNumber(), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatNumber2(t *testing.T) {
	assert.Equal(t, "1,300.50", FormatNumber2(models.N(1300.5)))
	assert.Equal(t, "0.00", FormatNumber2(models.N(0)))
	assert.Equal(t, "-12,345.68", FormatNumber2(models.N(-12345.678)))
	assert.Equal(t, "-", FormatNumber2(models.MissingNumber()))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "0.025000000", FormatQty(models.N(0.025)))
	assert.Equal(t, "1,500.000000000", FormatQty(models.N(1500)))
	assert.Equal(t, "-", FormatQty(models.MissingNumber()))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "-3.46%", FormatPercent(models.N(-3.456)))
	assert.Equal(t, "24.62%", FormatPercent(models.N(24.6153846)))
	assert.Equal(t, "0.00%", FormatPercent(models.N(0)))
	assert.Equal(t, "-", FormatPercent(models.MissingNumber()))
}
