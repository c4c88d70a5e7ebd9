package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// LowCardinality 字典编码列。
//
// 去重后的值存在字典列里，每一行只存一个字典下标。
// 对值模型完全透明：追加和读取都以内层类型的值为单位。
type LowCardinality struct {
	typ     chtype.Type
	dict    Column
	indices []uint32
	keys    map[string]uint32
}

func NewLowCardinality(typ chtype.Type) (*LowCardinality, error) {
	if typ.Kind != chtype.KindLowCardinality {
		return nil, errors.Errorf("expect LowCardinality type, got %q", typ.String())
	}
	dict, err := New(typ.Elem(0))
	if err != nil {
		return nil, err
	}
	if _, ok := dict.(keyer); !ok {
		return nil, errors.Errorf("LowCardinality cannot build dictionary keys for %q", typ.Elem(0).String())
	}
	return &LowCardinality{typ: typ, dict: dict, keys: map[string]uint32{}}, nil
}

func (c *LowCardinality) Type() chtype.Type {
	return c.typ
}

func (c *LowCardinality) Len() int {
	return len(c.indices)
}

// Dict 字典列
func (c *LowCardinality) Dict() Column {
	return c.dict
}

// Indices 每行对应的字典下标
func (c *LowCardinality) Indices() []uint32 {
	return c.indices
}

// AppendSource 追加一个内层类型的源列，逐行去重进字典
func (c *LowCardinality) AppendSource(source Column) error {
	if !source.Type().Equal(c.typ.Elem(0)) {
		return errors.Errorf("cannot append source column of type %q to %q",
			source.Type().String(), c.typ.String())
	}
	k, ok := source.(keyer)
	if !ok {
		return errors.Errorf("source column %q does not support dictionary keys", source.Type().String())
	}

	for i := 0; i < source.Len(); i++ {
		key := k.key(i)
		idx, ok := c.keys[key]
		if !ok {
			row, err := source.Slice(i, 1)
			if err != nil {
				return err
			}
			if err := c.dict.AppendColumn(row); err != nil {
				return err
			}
			idx = uint32(c.dict.Len() - 1)
			c.keys[key] = idx
		}
		c.indices = append(c.indices, idx)
	}
	return nil
}

// Materialize 按下标展开成内层类型的普通列
func (c *LowCardinality) Materialize() (Column, error) {
	out, err := New(c.typ.Elem(0))
	if err != nil {
		return nil, err
	}
	for _, idx := range c.indices {
		row, err := c.dict.Slice(int(idx), 1)
		if err != nil {
			return nil, err
		}
		if err := out.AppendColumn(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *LowCardinality) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.indices)); err != nil {
		return nil, err
	}
	// 视图共享字典，下标子切片即可
	return &LowCardinality{
		typ:     c.typ,
		dict:    c.dict,
		indices: c.indices[begin : begin+length],
		keys:    c.keys,
	}, nil
}

func (c *LowCardinality) AppendColumn(other Column) error {
	o, ok := other.(*LowCardinality)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	source, err := o.Materialize()
	if err != nil {
		return err
	}
	return c.AppendSource(source)
}
