package chcol

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chtype"
)

// Array 变长数组列。
//
// 底层是一个拍平的嵌套列加一段累积偏移量：offsets[i] 是第 0 到 i 行的元素总数，
// 第 i 行对应嵌套列上 [offsets[i-1], offsets[i]) 的切片。
// 嵌套列本身也是 Column，Array(Array(...)) 的任意嵌套由此自然成立。
type Array struct {
	typ     chtype.Type
	nested  Column
	offsets []uint64
}

func NewArray(typ chtype.Type) (*Array, error) {
	if typ.Kind != chtype.KindArray {
		return nil, errors.Errorf("expect Array type, got %q", typ.String())
	}
	nested, err := New(typ.Elem(0))
	if err != nil {
		return nil, err
	}
	return &Array{typ: typ, nested: nested}, nil
}

func (c *Array) Type() chtype.Type {
	return c.typ
}

func (c *Array) Len() int {
	return len(c.offsets)
}

// Nested 拍平的嵌套列
func (c *Array) Nested() Column {
	return c.nested
}

// Offsets 累积偏移量
func (c *Array) Offsets() []uint64 {
	return c.offsets
}

// Row 第 i 行的数组，返回嵌套列上的零拷贝切片
func (c *Array) Row(i int) (Column, error) {
	if i < 0 || i >= len(c.offsets) {
		return nil, errors.Errorf("row %d out of range, column size %d", i, len(c.offsets))
	}
	begin := uint64(0)
	if i > 0 {
		begin = c.offsets[i-1]
	}
	return c.nested.Slice(int(begin), int(c.offsets[i]-begin))
}

// AppendSlices 追加一批行：nested 是这批行拍平后的元素列，offsets 是批内累积偏移。
//
// 偏移量必须单调非减，且最后一个值恰好等于 nested 的行数，否则说明上游
// 记账出错，这里直接拒绝而不是截断数据。
func (c *Array) AppendSlices(nested Column, offsets []uint64) error {
	if !nested.Type().Equal(c.typ.Elem(0)) {
		return errors.Errorf("cannot append nested column of type %q to %q",
			nested.Type().String(), c.typ.String())
	}

	prev := uint64(0)
	for i, offset := range offsets {
		if offset < prev {
			return errors.Errorf("offsets must be monotonically non-decreasing, offsets[%d] = %d < %d", i, offset, prev)
		}
		prev = offset
	}
	if prev != uint64(nested.Len()) {
		return errors.Errorf("final offset %d does not match nested column size %d", prev, nested.Len())
	}
	if len(offsets) == 0 && nested.Len() != 0 {
		return errors.Errorf("empty offsets with non-empty nested column of size %d", nested.Len())
	}

	base := uint64(0)
	if len(c.offsets) > 0 {
		base = c.offsets[len(c.offsets)-1]
	}
	if err := c.nested.AppendColumn(nested); err != nil {
		return err
	}
	for _, offset := range offsets {
		c.offsets = append(c.offsets, base+offset)
	}
	return nil
}

func (c *Array) Slice(begin int, length int) (Column, error) {
	if err := checkSlice(begin, length, len(c.offsets)); err != nil {
		return nil, err
	}

	elemBegin := uint64(0)
	if begin > 0 {
		elemBegin = c.offsets[begin-1]
	}
	elemEnd := elemBegin
	if length > 0 {
		elemEnd = c.offsets[begin+length-1]
	}

	nested, err := c.nested.Slice(int(elemBegin), int(elemEnd-elemBegin))
	if err != nil {
		return nil, err
	}
	offsets := make([]uint64, length)
	for i := 0; i < length; i++ {
		offsets[i] = c.offsets[begin+i] - elemBegin
	}
	return &Array{typ: c.typ, nested: nested, offsets: offsets}, nil
}

func (c *Array) AppendColumn(other Column) error {
	o, ok := other.(*Array)
	if !ok || !o.typ.Equal(c.typ) {
		return errors.Errorf("cannot append column of type %q to %q", other.Type().String(), c.typ.String())
	}
	return c.AppendSlices(o.nested, o.offsets)
}
