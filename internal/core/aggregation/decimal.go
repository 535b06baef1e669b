package aggregation

import "github.com/shopspring/decimal"

// ExtractDecimal pulls a numeric value from event metadata by key.
// Returns decimal.Zero and false if the key is missing, empty, or not a recognized numeric type.
// JSON numbers unmarshal to float64 in Go; that's the common path.
func ExtractDecimal(data map[string]any, key string) (decimal.Decimal, bool) {
	if key == "" {
		return decimal.Zero, false
	}
	v, ok := data[key]
	if !ok {
		return decimal.Zero, false
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat(float64(val)), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// mean is a composite sum+count accumulator with exact arithmetic.
type mean struct {
	sum decimal.Decimal
	n   int64
}

func (m *mean) Add(v decimal.Decimal) {
	m.sum = m.sum.Add(v)
	m.n++
}

func (m *mean) AddFloat(f float64) {
	m.Add(decimal.NewFromFloat(f))
}

func (m *mean) Empty() bool {
	return m.n == 0
}

// Value returns the exact mean, or zero without samples.
func (m *mean) Value() decimal.Decimal {
	if m.n == 0 {
		return decimal.Zero
	}
	return m.sum.Div(decimal.NewFromInt(m.n))
}

// Rounded returns the mean rounded half away from zero to places.
func (m *mean) Rounded(places int32) float64 {
	return toFloat(m.Value(), places)
}

func toFloat(d decimal.Decimal, places int32) float64 {
	f, _ := d.Round(places).Float64()
	return f
}

// percent returns part/whole*100 rounded to two places; zero when whole is zero.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return toFloat(decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(whole))), 2)
}
