package chcol

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Value 数值列允许的底层存储类型。
// Bool 存为 uint8，Date 存为距纪元天数（uint16），DateTime 存为秒级时间戳（uint32），
// DateTime64 和 Decimal64 存为已缩放的 int64，枚举存为 int8/int16。
type Value interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Numeric 定宽数值列
type Numeric[T Value] struct {
	typ  chtype.Type
	data []T
}

func NewNumeric[T Value](typ chtype.Type) *Numeric[T] {
	return &Numeric[T]{typ: typ}
}

func (c *Numeric[T]) Type() chtype.Type {
	return c.typ
}

func (c *Numeric[T]) Len() int {
	return len(c.data)
}

// At 第 i 行的值
func (c *Numeric[T]) At(i int) T {
	return c.data[i]
}

// Data 底层数据
func (c *Numeric[T]) Data() []T {
	return c.data
}

// Append 批量追加，一次调用对应一整列输入
func (c *Numeric[T]) Append(values ...T) {
	c.data = append(c.data, values...)
}

func (c *Numeric[T]) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.data)); err != nil {
		return nil, err
	}
	return &Numeric[T]{typ: c.typ, data: c.data[begin : begin+length]}, nil
}

func (c *Numeric[T]) AppendColumn(other Column) error {
	o, ok := other.(*Numeric[T])
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	c.data = append(c.data, o.data...)
	return nil
}

func (c *Numeric[T]) key(i int) string {
	return fmt.Sprintf("%v", c.data[i])
}
