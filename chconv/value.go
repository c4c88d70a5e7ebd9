package chconv

import (
	"math"
	"reflect"
)

// AsList 把动态值当作有序列表展开。
// []any 直接返回，其他切片和数组通过反射逐个装箱。
func AsList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		// []byte 是字符串值，不当作列表
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// pair 一对键值，Map 列按对处理以保证键值按位置配对
type pair struct {
	key   any
	value any
}

// asPairs 把动态值当作键值集合展开。
// 键值在同一次遍历里成对取出，而不是先取键再回查值。
func asPairs(v any) ([]pair, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		out := make([]pair, 0, len(m))
		for k, val := range m {
			out = append(out, pair{key: k, value: val})
		}
		return out, true
	}
	if m, ok := v.(map[any]any); ok {
		out := make([]pair, 0, len(m))
		for k, val := range m {
			out = append(out, pair{key: k, value: val})
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, pair{key: iter.Key().Interface(), value: iter.Value().Interface()})
	}
	return out, true
}

// asUint64 把动态值转成 uint64，负数和非整数一律失败
func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int16:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

// asInt64 把动态值转成 int64。
// 超出 int64 范围的 uint64 直接失败而不是回绕，宁可报错也不静默截断。
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// asFloat64 把动态值转成 float64，浮点列同时接受整数输入
func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	if n, ok := asUint64(v); ok {
		return float64(n), true
	}
	return 0, false
}

// asString 把动态值转成字符串，接受 string 和 []byte
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// pow10 10 的 0 到 18 次幂
var pow10 = [19]int64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000, 100000000000000000,
	1000000000000000000,
}
