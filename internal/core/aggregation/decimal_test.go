package aggregation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestExtractDecimal(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]any
		field string
		want  decimal.Decimal
		found bool
	}{
		{
			name:  "empty field name",
			data:  map[string]any{"value": 1},
			field: "",
			want:  decimal.Zero,
		},
		{
			name:  "missing field",
			data:  map[string]any{"value": 1},
			field: "missing",
			want:  decimal.Zero,
		},
		{
			name:  "float64",
			data:  map[string]any{"value": 12.5},
			field: "value",
			want:  decimal.RequireFromString("12.5"),
			found: true,
		},
		{
			name:  "float32",
			data:  map[string]any{"value": float32(7.25)},
			field: "value",
			want:  decimal.RequireFromString("7.25"),
			found: true,
		},
		{
			name:  "int",
			data:  map[string]any{"value": 7},
			field: "value",
			want:  decimal.NewFromInt(7),
			found: true,
		},
		{
			name:  "int32",
			data:  map[string]any{"value": int32(8)},
			field: "value",
			want:  decimal.NewFromInt(8),
			found: true,
		},
		{
			name:  "int64",
			data:  map[string]any{"value": int64(9)},
			field: "value",
			want:  decimal.NewFromInt(9),
			found: true,
		},
		{
			name:  "valid decimal string",
			data:  map[string]any{"value": "42.125"},
			field: "value",
			want:  decimal.RequireFromString("42.125"),
			found: true,
		},
		{
			name:  "invalid string returns zero",
			data:  map[string]any{"value": "not-a-number"},
			field: "value",
			want:  decimal.Zero,
		},
		{
			name:  "unsupported type returns zero",
			data:  map[string]any{"value": true},
			field: "value",
			want:  decimal.Zero,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractDecimal(tc.data, tc.field)
			require.Equal(t, tc.found, found)
			require.True(t, tc.want.Equal(got), "want=%s got=%s", tc.want.String(), got.String())
		})
	}
}

func TestMean(t *testing.T) {
	var m mean
	require.True(t, m.Empty())
	require.Equal(t, 0.0, m.Rounded(2))

	m.AddFloat(0.1)
	m.AddFloat(0.2)
	m.AddFloat(0.2)
	require.True(t, decimal.RequireFromString("0.5").Equal(m.sum))
	require.Equal(t, 0.17, m.Rounded(2))
	require.Equal(t, 0.1667, m.Rounded(4))
}

func TestPercent(t *testing.T) {
	require.Equal(t, 0.0, percent(3, 0))
	require.Equal(t, 50.0, percent(1, 2))
	require.Equal(t, 33.33, percent(1, 3))
	require.Equal(t, 200.0, percent(4, 2))
}
