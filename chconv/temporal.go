package chconv

import (
	"math"
	"time"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

const secondsPerDay = 86400

// buildDate 接受 time.Time（取值所在时区的日历日）或已换算好的距纪元天数
func buildDate(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]uint16, 0, len(values))
	for i, v := range values {
		if tt, ok := v.(time.Time); ok {
			sec := tt.Unix() + int64(secondsOfDayOffset(tt))
			days := sec / secondsPerDay
			if days < 0 || days > math.MaxUint16 {
				return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
			}
			data = append(data, uint16(days))
			continue
		}
		days, ok := asUint64(v)
		if !ok || days > math.MaxUint16 {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, uint16(days))
	}
	col := chcol.NewNumeric[uint16](t)
	col.Append(data...)
	return col, nil
}

// secondsOfDayOffset 本地历法日与 UTC 时间戳之间的偏移秒数。
// Date 只关心日历日，按值所在时区的日历日换算。
func secondsOfDayOffset(tt time.Time) int {
	_, offset := tt.Zone()
	return offset
}

func extractDate(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[uint16])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = time.Unix(int64(c.At(i))*secondsPerDay, 0).UTC()
	}
	return out, nil
}

// buildDateTime 接受 time.Time 或秒级时间戳
func buildDateTime(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]uint32, 0, len(values))
	for i, v := range values {
		if tt, ok := v.(time.Time); ok {
			sec := tt.Unix()
			if sec < 0 || sec > math.MaxUint32 {
				return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
			}
			data = append(data, uint32(sec))
			continue
		}
		sec, ok := asUint64(v)
		if !ok || sec > math.MaxUint32 {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, uint32(sec))
	}
	col := chcol.NewNumeric[uint32](t)
	col.Append(data...)
	return col, nil
}

func extractDateTime(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[uint32])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = time.Unix(int64(c.At(i)), 0).UTC()
	}
	return out, nil
}

// buildDateTime64 接受 time.Time（按精度缩放成刻度）或已换算好的刻度数。
// 精度 p 下一秒等于 10^p 个刻度。
// 缩放后超出 int64 的时间直接报错，绝不回绕成错误的时间戳。
func buildDateTime64(t chtype.Type, values []any) (chcol.Column, error) {
	scale := pow10[t.Precision]
	nanoScale := pow10[9-t.Precision]
	maxSec := (math.MaxInt64 - pow10[9]) / scale
	minSec := math.MinInt64 / scale

	data := make([]int64, 0, len(values))
	for i, v := range values {
		if tt, ok := v.(time.Time); ok {
			sec := tt.Unix()
			if sec > maxSec || sec < minSec {
				return nil, cherr.NewInvalidValue(i, t.String(), v)
			}
			ticks := sec*scale + int64(tt.Nanosecond())/nanoScale
			data = append(data, ticks)
			continue
		}
		ticks, ok := asInt64(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, ticks)
	}
	col := chcol.NewNumeric[int64](t)
	col.Append(data...)
	return col, nil
}

func extractDateTime64(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[int64])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	scale := pow10[col.Type().Precision]
	nanoScale := pow10[9-col.Type().Precision]
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		// 拆成秒和刻度余数再还原，余数乘 nanoScale 不会越过 int64
		ticks := c.At(i)
		out[i] = time.Unix(ticks/scale, ticks%scale*nanoScale).UTC()
	}
	return out, nil
}
