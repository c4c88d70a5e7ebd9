package chconv

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

var (
	maxScaledDecimal = decimal.NewFromInt(math.MaxInt64)
	minScaledDecimal = decimal.NewFromInt(math.MinInt64)
)

// buildDecimal64 定点小数。
// 接受 decimal.Decimal、十进制字符串、已缩放好的整数、或浮点数（按 10^scale 缩放后截断）。
// 缩放结果超出 int64 的值直接报错，绝不回绕或静默截断。
func buildDecimal64(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]int64, 0, len(values))
	for i, v := range values {
		scaled, ok := scaleDecimal(v, t.Scale)
		if !ok {
			return nil, cherr.NewInvalidValue(i, t.String(), v)
		}
		data = append(data, scaled)
	}
	col := chcol.NewNumeric[int64](t)
	col.Append(data...)
	return col, nil
}

func scaleDecimal(v any, scale int) (int64, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case decimal.Decimal:
		d = n
	case string:
		var err error
		d, err = decimal.NewFromString(n)
		if err != nil {
			return 0, false
		}
	case float32:
		d = decimal.NewFromFloat32(n)
	case float64:
		d = decimal.NewFromFloat(n)
	default:
		// 整数输入视为已经按 scale 缩放好
		return asInt64(v)
	}

	scaled := d.Shift(int32(scale)).Truncate(0)
	if scaled.Cmp(maxScaledDecimal) > 0 || scaled.Cmp(minScaledDecimal) < 0 {
		return 0, false
	}
	return scaled.IntPart(), true
}

func extractDecimal64(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[int64])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	scale := int32(col.Type().Scale)
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = decimal.New(c.At(i), -scale)
	}
	return out, nil
}
