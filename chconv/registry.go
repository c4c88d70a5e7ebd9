package chconv

import (
	"math"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

type buildFunc func(t chtype.Type, values []any) (chcol.Column, error)

type extractFunc func(col chcol.Column) ([]any, error)

// scalarCodec 一种标量类型的编解码实现
type scalarCodec struct {
	build   buildFunc
	extract extractFunc
}

// Registry 标量编解码表。
//
// 显式构造、按引用传给 Builder/Extractor，不做包级注册。
// 新增标量类型只需要在这里登记编解码函数，复合类型的递归逻辑不用动。
type Registry struct {
	codecs map[chtype.Kind]scalarCodec
}

// NewRegistry 创建包含全部内置标量类型的编解码表
func NewRegistry() *Registry {
	r := &Registry{codecs: map[chtype.Kind]scalarCodec{}}

	r.codecs[chtype.KindUInt8] = scalarCodec{build: buildUint[uint8](math.MaxUint8), extract: extractNumeric[uint8]}
	r.codecs[chtype.KindUInt16] = scalarCodec{build: buildUint[uint16](math.MaxUint16), extract: extractNumeric[uint16]}
	r.codecs[chtype.KindUInt32] = scalarCodec{build: buildUint[uint32](math.MaxUint32), extract: extractNumeric[uint32]}
	r.codecs[chtype.KindUInt64] = scalarCodec{build: buildUint[uint64](math.MaxUint64), extract: extractNumeric[uint64]}
	r.codecs[chtype.KindInt8] = scalarCodec{build: buildInt[int8](math.MinInt8, math.MaxInt8), extract: extractNumeric[int8]}
	r.codecs[chtype.KindInt16] = scalarCodec{build: buildInt[int16](math.MinInt16, math.MaxInt16), extract: extractNumeric[int16]}
	r.codecs[chtype.KindInt32] = scalarCodec{build: buildInt[int32](math.MinInt32, math.MaxInt32), extract: extractNumeric[int32]}
	r.codecs[chtype.KindInt64] = scalarCodec{build: buildInt[int64](math.MinInt64, math.MaxInt64), extract: extractNumeric[int64]}
	r.codecs[chtype.KindFloat32] = scalarCodec{build: buildFloat[float32], extract: extractNumeric[float32]}
	r.codecs[chtype.KindFloat64] = scalarCodec{build: buildFloat[float64], extract: extractNumeric[float64]}
	r.codecs[chtype.KindBool] = scalarCodec{build: buildBool, extract: extractBool}
	r.codecs[chtype.KindString] = scalarCodec{build: buildString, extract: extractString}
	r.codecs[chtype.KindDate] = scalarCodec{build: buildDate, extract: extractDate}
	r.codecs[chtype.KindDateTime] = scalarCodec{build: buildDateTime, extract: extractDateTime}
	r.codecs[chtype.KindDateTime64] = scalarCodec{build: buildDateTime64, extract: extractDateTime64}
	r.codecs[chtype.KindDecimal64] = scalarCodec{build: buildDecimal64, extract: extractDecimal64}
	r.codecs[chtype.KindUUID] = scalarCodec{build: buildUUID, extract: extractUUID}
	r.codecs[chtype.KindEnum8] = scalarCodec{build: buildEnum8, extract: extractEnum8}
	r.codecs[chtype.KindEnum16] = scalarCodec{build: buildEnum16, extract: extractEnum16}

	return r
}

// Register 登记或覆盖一种标量类型的编解码函数
func (r *Registry) Register(kind chtype.Kind, build buildFunc, extract extractFunc) {
	r.codecs[kind] = scalarCodec{build: build, extract: extract}
}

func (r *Registry) lookup(kind chtype.Kind) (scalarCodec, bool) {
	codec, ok := r.codecs[kind]
	return codec, ok
}

type uintValue interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type intValue interface {
	~int8 | ~int16 | ~int32 | ~int64
}

type floatValue interface {
	~float32 | ~float64
}

func buildUint[T uintValue](max uint64) buildFunc {
	return func(t chtype.Type, values []any) (chcol.Column, error) {
		data := make([]T, 0, len(values))
		for i, v := range values {
			u, ok := asUint64(v)
			if !ok || u > max {
				return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
			}
			data = append(data, T(u))
		}
		col := chcol.NewNumeric[T](t)
		col.Append(data...)
		return col, nil
	}
}

func buildInt[T intValue](min int64, max int64) buildFunc {
	return func(t chtype.Type, values []any) (chcol.Column, error) {
		data := make([]T, 0, len(values))
		for i, v := range values {
			n, ok := asInt64(v)
			if !ok || n < min || n > max {
				return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
			}
			data = append(data, T(n))
		}
		col := chcol.NewNumeric[T](t)
		col.Append(data...)
		return col, nil
	}
}

func buildFloat[T floatValue](t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]T, 0, len(values))
	for i, v := range values {
		f, ok := asFloat64(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, T(f))
	}
	col := chcol.NewNumeric[T](t)
	col.Append(data...)
	return col, nil
}

func buildBool(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]uint8, 0, len(values))
	for i, v := range values {
		b, ok := v.(bool)
		if !ok {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		if b {
			data = append(data, 1)
		} else {
			data = append(data, 0)
		}
	}
	col := chcol.NewNumeric[uint8](t)
	col.Append(data...)
	return col, nil
}

func buildString(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]string, 0, len(values))
	for i, v := range values {
		s, ok := asString(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, s)
	}
	col := chcol.NewString(t)
	col.Append(data...)
	return col, nil
}

func extractNumeric[T chcol.Value](col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[T])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = c.At(i)
	}
	return out, nil
}

func extractBool(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[uint8])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = c.At(i) != 0
	}
	return out, nil
}

func extractString(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.String)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = c.At(i)
	}
	return out, nil
}

func buildEnum8(t chtype.Type, values []any) (chcol.Column, error) {
	data, err := enumValues(t, values, math.MinInt8, math.MaxInt8)
	if err != nil {
		return nil, err
	}
	col := chcol.NewNumeric[int8](t)
	for _, n := range data {
		col.Append(int8(n))
	}
	return col, nil
}

func buildEnum16(t chtype.Type, values []any) (chcol.Column, error) {
	data, err := enumValues(t, values, math.MinInt16, math.MaxInt16)
	if err != nil {
		return nil, err
	}
	col := chcol.NewNumeric[int16](t)
	for _, n := range data {
		col.Append(int16(n))
	}
	return col, nil
}

// enumValues 枚举输入既接受成员名也接受底层整数值。
// 名字必须在映射表里，整数只校验宽度范围。
func enumValues(t chtype.Type, values []any, min int64, max int64) ([]int64, error) {
	byName := make(map[string]int64, len(t.Members))
	for _, m := range t.Members {
		byName[m.Name] = m.Value
	}

	data := make([]int64, 0, len(values))
	for i, v := range values {
		if name, ok := v.(string); ok {
			n, ok := byName[name]
			if !ok {
				return nil, cherr.NewUnknownEnumMember(i, name)
			}
			data = append(data, n)
			continue
		}
		n, ok := asInt64(v)
		if !ok || n < min || n > max {
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
		data = append(data, n)
	}
	return data, nil
}

func extractEnum8(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[int8])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	byValue := enumNames(col.Type())
	for i := 0; i < c.Len(); i++ {
		name, ok := byValue[int64(c.At(i))]
		if !ok {
			return nil, cherr.New(cherr.KindProtocol, "unknown enum value %d at row %d", c.At(i), i)
		}
		out[i] = name
	}
	return out, nil
}

func extractEnum16(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Numeric[int16])
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	byValue := enumNames(col.Type())
	for i := 0; i < c.Len(); i++ {
		name, ok := byValue[int64(c.At(i))]
		if !ok {
			return nil, cherr.New(cherr.KindProtocol, "unknown enum value %d at row %d", c.At(i), i)
		}
		out[i] = name
	}
	return out, nil
}

func enumNames(t chtype.Type) map[int64]string {
	byValue := make(map[int64]string, len(t.Members))
	for _, m := range t.Members {
		byValue[m.Value] = m.Name
	}
	return byValue
}
