package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"addition", "2 + 2", 4},
		{"precedence", "2 + 3 * 4", 14},
		{"parentheses", "(2 + 3) * 4", 20},
		{"power", "10^2", 100},
		{"power right assoc", "2^3^2", 512},
		{"unary minus", "-5 + 3", -2},
		{"unary before power", "-2^2", -4},
		{"float division", "7 / 2", 3.5},
		{"floor division", "7 // 2", 3},
		{"nested", "((1 + 2) * (3 + 4))", 21},
		{"decimals", "0.1 + 0.2", 0.30000000000000004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"letters rejected", "2 + x"},
		{"function call rejected", "abs(2)"},
		{"modulo outside charset", "7 % 2"},
		{"division by zero", "1 / 0"},
		{"floor division by zero", "1 // 0"},
		{"unbalanced paren", "(1 + 2"},
		{"trailing operator", "1 +"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestCalculatorInvoke(t *testing.T) {
	calc := NewCalculator()
	ctx := context.Background()

	t.Run("valid expression", func(t *testing.T) {
		out, err := calc.Invoke(ctx, "15 * 23")
		require.NoError(t, err)
		assert.Equal(t, "Result: 345", out)
	})

	t.Run("fractional result", func(t *testing.T) {
		out, err := calc.Invoke(ctx, "7 / 2")
		require.NoError(t, err)
		assert.Equal(t, "Result: 3.5", out)
	})

	t.Run("bad input yields error string, not error", func(t *testing.T) {
		out, err := calc.Invoke(ctx, "rm -rf /")
		require.NoError(t, err)
		assert.Contains(t, out, "Error:")
	})
}
