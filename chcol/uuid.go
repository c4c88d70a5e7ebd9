package chcol

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// UUID 128 位 UUID 列
type UUID struct {
	typ  chtype.Type
	data []uuid.UUID
}

func NewUUID(typ chtype.Type) *UUID {
	return &UUID{typ: typ}
}

func (c *UUID) Type() chtype.Type {
	return c.typ
}

func (c *UUID) Len() int {
	return len(c.data)
}

func (c *UUID) At(i int) uuid.UUID {
	return c.data[i]
}

func (c *UUID) Data() []uuid.UUID {
	return c.data
}

func (c *UUID) Append(values ...uuid.UUID) {
	c.data = append(c.data, values...)
}

func (c *UUID) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.data)); err != nil {
		return nil, err
	}
	return &UUID{typ: c.typ, data: c.data[begin : begin+length]}, nil
}

func (c *UUID) AppendColumn(other Column) error {
	o, ok := other.(*UUID)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	c.data = append(c.data, o.data...)
	return nil
}

func (c *UUID) key(i int) string {
	return c.data[i].String()
}
