package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Column 类型化的列式缓冲，持有某一列在多行上的全部值。
//
// 列通过批量追加操作增量构建，附着到 Block 之后不再修改。
// Slice 返回底层数据上的零拷贝视图，数组行、可空单行的递归解码都依赖它。
type Column interface {
	// Type 列的类型描述
	Type() chtype.Type

	// Len 行数
	Len() int

	// Slice 返回 [begin, begin+length) 的零拷贝视图
	Slice(begin int, length int) (Column, error)

	// AppendColumn 追加一个同类型列的全部行
	AppendColumn(other Column) error
}

// New 按类型描述创建一个空列，复合类型递归创建
func New(t chtype.Type) (Column, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid column type %q", t.String())
	}
	return newColumn(t)
}

func newColumn(t chtype.Type) (Column, error) {
	switch t.Kind {
	case chtype.KindUInt8, chtype.KindBool:
		return NewNumeric[uint8](t), nil
	case chtype.KindUInt16, chtype.KindDate:
		return NewNumeric[uint16](t), nil
	case chtype.KindUInt32, chtype.KindDateTime:
		return NewNumeric[uint32](t), nil
	case chtype.KindUInt64:
		return NewNumeric[uint64](t), nil
	case chtype.KindInt8, chtype.KindEnum8:
		return NewNumeric[int8](t), nil
	case chtype.KindInt16, chtype.KindEnum16:
		return NewNumeric[int16](t), nil
	case chtype.KindInt32:
		return NewNumeric[int32](t), nil
	case chtype.KindInt64, chtype.KindDateTime64, chtype.KindDecimal64:
		return NewNumeric[int64](t), nil
	case chtype.KindFloat32:
		return NewNumeric[float32](t), nil
	case chtype.KindFloat64:
		return NewNumeric[float64](t), nil
	case chtype.KindString:
		return NewString(t), nil
	case chtype.KindUUID:
		return NewUUID(t), nil
	case chtype.KindNullable:
		return NewNullable(t)
	case chtype.KindArray:
		return NewArray(t)
	case chtype.KindTuple:
		return NewTuple(t)
	case chtype.KindMap:
		return NewMap(t)
	case chtype.KindLowCardinality:
		return NewLowCardinality(t)
	}
	return nil, errors.Errorf("unknown type kind %q", t.Kind)
}

// checkSlice 切片边界检查
func checkSlice(begin int, length int, size int) error {
	if begin < 0 || length < 0 || begin+length > size {
		return errors.Errorf("slice [%d, %d) out of range, column size %d", begin, begin+length, size)
	}
	return nil
}

// keyer 能为单行生成字典键的列，LowCardinality 去重用
type keyer interface {
	key(i int) string
}
