package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// String 变长字符串列
type String struct {
	typ  chtype.Type
	data []string
}

func NewString(typ chtype.Type) *String {
	return &String{typ: typ}
}

func (c *String) Type() chtype.Type {
	return c.typ
}

func (c *String) Len() int {
	return len(c.data)
}

func (c *String) At(i int) string {
	return c.data[i]
}

func (c *String) Data() []string {
	return c.data
}

func (c *String) Append(values ...string) {
	c.data = append(c.data, values...)
}

func (c *String) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.data)); err != nil {
		return nil, err
	}
	return &String{typ: c.typ, data: c.data[begin : begin+length]}, nil
}

func (c *String) AppendColumn(other Column) error {
	o, ok := other.(*String)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	c.data = append(c.data, o.data...)
	return nil
}

func (c *String) key(i int) string {
	return c.data[i]
}
