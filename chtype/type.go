package chtype

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind 列类型种类，取值与 ClickHouse 的类型名保持一致
type Kind string

const (
	KindUInt8   Kind = "UInt8"
	KindUInt16  Kind = "UInt16"
	KindUInt32  Kind = "UInt32"
	KindUInt64  Kind = "UInt64"
	KindInt8    Kind = "Int8"
	KindInt16   Kind = "Int16"
	KindInt32   Kind = "Int32"
	KindInt64   Kind = "Int64"
	KindFloat32 Kind = "Float32"
	KindFloat64 Kind = "Float64"
	KindBool    Kind = "Bool"
	KindString  Kind = "String"
	KindDate    Kind = "Date"

	// KindDateTime 秒级时间戳
	KindDateTime Kind = "DateTime"

	// KindDateTime64 亚秒级时间戳，Precision 表示小数位数
	KindDateTime64 Kind = "DateTime64"

	// KindDecimal64 定点小数，Scale 表示小数位数
	KindDecimal64 Kind = "Decimal64"

	KindUUID Kind = "UUID"

	KindNullable       Kind = "Nullable"
	KindArray          Kind = "Array"
	KindTuple          Kind = "Tuple"
	KindMap            Kind = "Map"
	KindLowCardinality Kind = "LowCardinality"
	KindEnum8          Kind = "Enum8"
	KindEnum16         Kind = "Enum16"
)

// EnumMember 枚举成员，名字到整数值的映射项
type EnumMember struct {
	Name  string
	Value int64
}

// Type 递归的列类型描述。值类型，构造后不再修改。
//
// 标量类型只有 Kind 有效；DateTime64 额外携带 Precision，Decimal64 额外携带 Scale；
// Nullable/Array/LowCardinality 有一个子类型，Map 有两个（键和值），Tuple 有任意多个；
// Enum8/Enum16 携带成员映射表。
type Type struct {
	Kind      Kind
	Elems     []Type
	Precision int
	Scale     int
	Members   []EnumMember
}

func UInt8() Type   { return Type{Kind: KindUInt8} }
func UInt16() Type  { return Type{Kind: KindUInt16} }
func UInt32() Type  { return Type{Kind: KindUInt32} }
func UInt64() Type  { return Type{Kind: KindUInt64} }
func Int8() Type    { return Type{Kind: KindInt8} }
func Int16() Type   { return Type{Kind: KindInt16} }
func Int32() Type   { return Type{Kind: KindInt32} }
func Int64() Type   { return Type{Kind: KindInt64} }
func Float32() Type { return Type{Kind: KindFloat32} }
func Float64() Type { return Type{Kind: KindFloat64} }
func Bool() Type    { return Type{Kind: KindBool} }
func String() Type  { return Type{Kind: KindString} }
func Date() Type    { return Type{Kind: KindDate} }

func DateTime() Type { return Type{Kind: KindDateTime} }

func DateTime64(precision int) Type {
	return Type{Kind: KindDateTime64, Precision: precision}
}

func Decimal64(scale int) Type {
	return Type{Kind: KindDecimal64, Scale: scale}
}

func UUID() Type { return Type{Kind: KindUUID} }

func Nullable(inner Type) Type {
	return Type{Kind: KindNullable, Elems: []Type{inner}}
}

func Array(elem Type) Type {
	return Type{Kind: KindArray, Elems: []Type{elem}}
}

func Tuple(elems ...Type) Type {
	return Type{Kind: KindTuple, Elems: elems}
}

func Map(key Type, value Type) Type {
	return Type{Kind: KindMap, Elems: []Type{key, value}}
}

func LowCardinality(inner Type) Type {
	return Type{Kind: KindLowCardinality, Elems: []Type{inner}}
}

func Enum8(members []EnumMember) Type {
	return Type{Kind: KindEnum8, Members: members}
}

func Enum16(members []EnumMember) Type {
	return Type{Kind: KindEnum16, Members: members}
}

// scalarKinds 所有标量类型
var scalarKinds = map[Kind]bool{
	KindUInt8:   true,
	KindUInt16:  true,
	KindUInt32:  true,
	KindUInt64:  true,
	KindInt8:    true,
	KindInt16:   true,
	KindInt32:   true,
	KindInt64:   true,
	KindFloat32: true,
	KindFloat64: true,
	KindBool:    true,
	KindString:  true,
	KindDate:    true,

	KindDateTime:   true,
	KindDateTime64: true,
	KindDecimal64:  true,
	KindUUID:       true,
}

// IsScalar 判断是否为标量类型（含 Date/DateTime/Decimal/UUID）
func (t Type) IsScalar() bool {
	return scalarKinds[t.Kind]
}

// IsEnum 判断是否为枚举类型
func (t Type) IsEnum() bool {
	return t.Kind == KindEnum8 || t.Kind == KindEnum16
}

// Elem 返回第 i 个子类型
func (t Type) Elem(i int) Type {
	return t.Elems[i]
}

// String 渲染为 ClickHouse 的规范类型串，与 CreateColumnByType 的语法完全一致。
// 例如 Array(Nullable(String))、Map(String, UInt64)、Enum8('a' = 1, 'b' = 2)。
func (t Type) String() string {
	var sb strings.Builder
	t.render(&sb)
	return sb.String()
}

func (t Type) render(sb *strings.Builder) {
	switch t.Kind {
	case KindDateTime64:
		fmt.Fprintf(sb, "DateTime64(%d)", t.Precision)
	case KindDecimal64:
		fmt.Fprintf(sb, "Decimal64(%d)", t.Scale)
	case KindNullable, KindArray, KindLowCardinality:
		sb.WriteString(string(t.Kind))
		sb.WriteByte('(')
		if len(t.Elems) == 1 {
			t.Elems[0].render(sb)
		}
		sb.WriteByte(')')
	case KindTuple, KindMap:
		sb.WriteString(string(t.Kind))
		sb.WriteByte('(')
		for i, e := range t.Elems {
			if i != 0 {
				sb.WriteString(", ")
			}
			e.render(sb)
		}
		sb.WriteByte(')')
	case KindEnum8, KindEnum16:
		sb.WriteString(string(t.Kind))
		sb.WriteByte('(')
		for i, m := range t.Members {
			if i != 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "'%s' = %d", escapeEnumName(m.Name), m.Value)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(string(t.Kind))
	}
}

func escapeEnumName(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, `'`, `\'`)
}

// Equal 结构化相等比较
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Precision != other.Precision || t.Scale != other.Scale {
		return false
	}
	if len(t.Elems) != len(other.Elems) || len(t.Members) != len(other.Members) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equal(other.Elems[i]) {
			return false
		}
	}
	for i := range t.Members {
		if t.Members[i] != other.Members[i] {
			return false
		}
	}
	return true
}

// Validate 校验类型描述是否合法，递归检查所有子类型。
//
// 数据库侧的约束在这里提前拦截：Nullable 不允许再包 Nullable/Array/Tuple/Map/LowCardinality，
// Map 的键必须是非空的标量或枚举，LowCardinality 只允许包标量或 Nullable(标量)。
func (t Type) Validate() error {
	switch {
	case t.IsScalar():
		if t.Kind == KindDateTime64 && (t.Precision < 0 || t.Precision > 9) {
			return errors.Errorf("invalid DateTime64 precision %d, expect 0 to 9", t.Precision)
		}
		if t.Kind == KindDecimal64 && (t.Scale < 0 || t.Scale > 18) {
			return errors.Errorf("invalid Decimal64 scale %d, expect 0 to 18", t.Scale)
		}
		return nil
	case t.IsEnum():
		return t.validateEnum()
	}

	switch t.Kind {
	case KindNullable:
		if len(t.Elems) != 1 {
			return errors.Errorf("Nullable expects 1 element type, got %d", len(t.Elems))
		}
		inner := t.Elems[0]
		if !inner.IsScalar() && !inner.IsEnum() {
			return errors.Errorf("Nullable cannot wrap %s", inner.Kind)
		}
		return inner.Validate()
	case KindArray, KindLowCardinality:
		if len(t.Elems) != 1 {
			return errors.Errorf("%s expects 1 element type, got %d", t.Kind, len(t.Elems))
		}
		inner := t.Elems[0]
		if t.Kind == KindLowCardinality {
			unwrapped := inner
			if unwrapped.Kind == KindNullable && len(unwrapped.Elems) == 1 {
				unwrapped = unwrapped.Elems[0]
			}
			if !unwrapped.IsScalar() && !unwrapped.IsEnum() {
				return errors.Errorf("LowCardinality cannot wrap %s", inner.Kind)
			}
		}
		return inner.Validate()
	case KindTuple:
		if len(t.Elems) == 0 {
			return errors.New("Tuple expects at least 1 element type")
		}
		for _, e := range t.Elems {
			if err := e.Validate(); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if len(t.Elems) != 2 {
			return errors.Errorf("Map expects 2 element types, got %d", len(t.Elems))
		}
		key := t.Elems[0]
		if !key.IsScalar() && !key.IsEnum() && key.Kind != KindLowCardinality {
			return errors.Errorf("Map key cannot be %s", key.Kind)
		}
		if err := key.Validate(); err != nil {
			return err
		}
		return t.Elems[1].Validate()
	}

	return errors.Errorf("unknown type kind %q", t.Kind)
}

func (t Type) validateEnum() error {
	if len(t.Members) == 0 {
		return errors.Errorf("%s expects at least 1 member", t.Kind)
	}

	lo, hi := int64(-128), int64(127)
	if t.Kind == KindEnum16 {
		lo, hi = -32768, 32767
	}

	names := make(map[string]bool, len(t.Members))
	values := make(map[int64]bool, len(t.Members))
	for _, m := range t.Members {
		if m.Name == "" {
			return errors.Errorf("%s member name cannot be empty", t.Kind)
		}
		if names[m.Name] {
			return errors.Errorf("%s duplicate member name %q", t.Kind, m.Name)
		}
		if values[m.Value] {
			return errors.Errorf("%s duplicate member value %d", t.Kind, m.Value)
		}
		if m.Value < lo || m.Value > hi {
			return errors.Errorf("%s member %q value %d out of range [%d, %d]", t.Kind, m.Name, m.Value, lo, hi)
		}
		names[m.Name] = true
		values[m.Value] = true
	}
	return nil
}
