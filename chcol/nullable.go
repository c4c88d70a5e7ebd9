package chcol

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Nullable 可空列。
//
// 底层是一个载荷列加一段空位图：nulls[i] 为 1 表示第 i 行为空。
// 空行在载荷列中占一个占位值，占位值只为满足载荷列的类型约束，永远不会被读出。
type Nullable struct {
	typ     chtype.Type
	payload Column
	nulls   []uint8
}

func NewNullable(typ chtype.Type) (*Nullable, error) {
	if typ.Kind != chtype.KindNullable {
		return nil, errors.Errorf("expect Nullable type, got %q", typ.String())
	}
	payload, err := New(typ.Elem(0))
	if err != nil {
		return nil, err
	}
	return &Nullable{typ: typ, payload: payload}, nil
}

func (c *Nullable) Type() chtype.Type {
	return c.typ
}

func (c *Nullable) Len() int {
	return len(c.nulls)
}

// IsNull 第 i 行是否为空
func (c *Nullable) IsNull(i int) bool {
	return c.nulls[i] == 1
}

// Payload 载荷列
func (c *Nullable) Payload() Column {
	return c.payload
}

// Nulls 空位图，1 为空，0 为有值
func (c *Nullable) Nulls() []uint8 {
	return c.nulls
}

// AppendPayload 追加一批行，payload 与 nulls 必须等长
func (c *Nullable) AppendPayload(payload Column, nulls []uint8) error {
	if payload.Len() != len(nulls) {
		return errors.Errorf("payload size %d does not match null bitmap size %d", payload.Len(), len(nulls))
	}
	if err := c.payload.AppendColumn(payload); err != nil {
		return err
	}
	c.nulls = append(c.nulls, nulls...)
	return nil
}

func (c *Nullable) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.nulls)); err != nil {
		return nil, err
	}
	payload, err := c.payload.Slice(begin, length)
	if err != nil {
		return nil, err
	}
	return &Nullable{typ: c.typ, payload: payload, nulls: c.nulls[begin : begin+length]}, nil
}

func (c *Nullable) AppendColumn(other Column) error {
	o, ok := other.(*Nullable)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	return c.AppendPayload(o.payload, o.nulls)
}

func (c *Nullable) key(i int) string {
	if c.nulls[i] == 1 {
		return "\x00null"
	}
	k, ok := c.payload.(keyer)
	if !ok {
		// Validate 限制了 Nullable 只能包标量，载荷列必然实现 keyer；
		// 万一约束放宽，退化为逐行独立，宁可不去重也不把不同行混成一个字典项
		return fmt.Sprintf("\x00row:%d", i)
	}
	return "v:" + k.key(i)
}
