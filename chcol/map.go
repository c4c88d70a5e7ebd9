package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Map 键值映射列。
// 线上格式与 Array(Tuple(K, V)) 完全相同，这里直接包一个数组列。
type Map struct {
	typ  chtype.Type
	data *Array
}

// WireType Map(K, V) 的线上等价类型 Array(Tuple(K, V))
func WireType(typ chtype.Type) chtype.Type {
	return chtype.Array(chtype.Tuple(typ.Elem(0), typ.Elem(1)))
}

func NewMap(typ chtype.Type) (*Map, error) {
	if typ.Kind != chtype.KindMap {
		return nil, errors.Errorf("expect Map type, got %q", typ.String())
	}
	data, err := NewArray(WireType(typ))
	if err != nil {
		return nil, err
	}
	return &Map{typ: typ, data: data}, nil
}

// NewMapFromArray 由已构建好的 Array(Tuple(K, V)) 列组装映射列
func NewMapFromArray(typ chtype.Type, data *Array) (*Map, error) {
	if typ.Kind != chtype.KindMap {
		return nil, errors.Errorf("expect Map type, got %q", typ.String())
	}
	if !data.Type().Equal(WireType(typ)) {
		return nil, errors.Errorf("wire type mismatch: expect %q, got %q",
			WireType(typ).String(), data.Type().String())
	}
	return &Map{typ: typ, data: data}, nil
}

func (c *Map) Type() chtype.Type {
	return c.typ
}

func (c *Map) Len() int {
	return c.data.Len()
}

// Data 底层的 Array(Tuple(K, V)) 列
func (c *Map) Data() *Array {
	return c.data
}

// Row 第 i 行的键值对，返回底层数组行的 Tuple(K, V) 切片
func (c *Map) Row(i int) (Column, error) {
	return c.data.Row(i)
}

func (c *Map) Slice(begin int, length int) (Column, error) {
	data, err := c.data.Slice(begin, length)
	if err != nil {
		return nil, err
	}
	return &Map{typ: c.typ, data: data.(*Array)}, nil
}

func (c *Map) AppendColumn(other Column) error {
	o, ok := other.(*Map)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	return c.data.AppendColumn(o.data)
}
