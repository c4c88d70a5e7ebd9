package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Tuple 固定元数的异构元组列，按成员各自存一列
type Tuple struct {
	typ     chtype.Type
	members []Column
}

func NewTuple(typ chtype.Type) (*Tuple, error) {
	if typ.Kind != chtype.KindTuple {
		return nil, errors.Errorf("expect Tuple type, got %q", typ.String())
	}
	members := make([]Column, 0, len(typ.Elems))
	for _, e := range typ.Elems {
		m, err := New(e)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return &Tuple{typ: typ, members: members}, nil
}

// NewTupleOf 由已构建好的成员列组装元组列，成员个数、类型、行数都必须匹配
func NewTupleOf(typ chtype.Type, members []Column) (*Tuple, error) {
	if typ.Kind != chtype.KindTuple {
		return nil, errors.Errorf("expect Tuple type, got %q", typ.String())
	}
	if len(members) != len(typ.Elems) {
		return nil, errors.Errorf("member count mismatch: expect %d, got %d", len(typ.Elems), len(members))
	}
	for i, m := range members {
		if !m.Type().Equal(typ.Elems[i]) {
			return nil, errors.Errorf("member %d type mismatch: expect %q, got %q",
				i, typ.Elems[i].String(), m.Type().String())
		}
		if m.Len() != members[0].Len() {
			return nil, errors.Errorf("member columns must have the same size, member 0 has %d rows, member %d has %d",
				members[0].Len(), i, m.Len())
		}
	}
	return &Tuple{typ: typ, members: members}, nil
}

func (c *Tuple) Type() chtype.Type {
	return c.typ
}

func (c *Tuple) Len() int {
	if len(c.members) == 0 {
		return 0
	}
	return c.members[0].Len()
}

// Arity 元组元数
func (c *Tuple) Arity() int {
	return len(c.members)
}

// Member 第 i 个成员列
func (c *Tuple) Member(i int) Column {
	return c.members[i]
}

func (c *Tuple) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, c.Len()); err != nil {
		return nil, err
	}
	members := make([]Column, 0, len(c.members))
	for _, m := range c.members {
		s, err := m.Slice(begin, length)
		if err != nil {
			return nil, err
		}
		members = append(members, s)
	}
	return &Tuple{typ: c.typ, members: members}, nil
}

func (c *Tuple) AppendColumn(other Column) error {
	o, ok := other.(*Tuple)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	for i, m := range c.members {
		if err := m.AppendColumn(o.members[i]); err != nil {
			return err
		}
	}
	return nil
}
