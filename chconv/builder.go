package chconv

import (
	"github.com/google/uuid"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

// Builder 列构建器，插入通路。
//
// 标量走编解码表的批量快速通路；复合类型永远递归到下一层类型再用
// 偏移量/切片重新组装，同一套代码支撑任意深度的嵌套。
type Builder struct {
	registry *Registry
}

// NewBuilder 创建列构建器，registry 为 nil 时使用内置标量表
func NewBuilder(registry *Registry) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Builder{registry: registry}
}

// Build 按类型描述把一列动态值构建成类型化的列。
// 校验失败立即返回，不会留下半成品列。
func (b *Builder) Build(t chtype.Type, values []any) (chcol.Column, error) {
	if err := t.Validate(); err != nil {
		return nil, cherr.New(cherr.KindValidation, "invalid column type %q: %s", t.String(), err.Error())
	}
	return b.build(t, values)
}

func (b *Builder) build(t chtype.Type, values []any) (chcol.Column, error) {
	switch t.Kind {
	case chtype.KindArray:
		return b.buildArray(t, values)
	case chtype.KindTuple:
		return b.buildTuple(t, values)
	case chtype.KindMap:
		return b.buildMap(t, values)
	case chtype.KindNullable:
		return b.buildNullable(t, values)
	case chtype.KindLowCardinality:
		return b.buildLowCardinality(t, values)
	}

	codec, ok := b.registry.lookup(t.Kind)
	if !ok {
		return nil, cherr.New(cherr.KindValidation, "no codec registered for %q", t.Kind)
	}
	return codec.build(t, values)
}

// buildArray 数组编码：
// 把所有行的元素按序拍平成一条序列，递归构建元素类型的嵌套列，
// 再按每行元素个数算出累积偏移，交给数组列切片组装。
func (b *Builder) buildArray(t chtype.Type, values []any) (chcol.Column, error) {
	var flat []any
	offsets := make([]uint64, 0, len(values))
	total := uint64(0)
	for i, v := range values {
		list, ok := AsList(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, t.String(), v)
		}
		flat = append(flat, list...)
		total += uint64(len(list))
		offsets = append(offsets, total)
	}

	nested, err := b.build(t.Elem(0), flat)
	if err != nil {
		return nil, err
	}

	col, err := chcol.NewArray(t)
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "create array column failed: %s", err.Error())
	}
	// 偏移量是本地记出来的账，对不上说明有 bug，宁可失败也不截断
	if err := col.AppendSlices(nested, offsets); err != nil {
		return nil, cherr.New(cherr.KindProtocol, "array assembly failed: %s", err.Error())
	}
	return col, nil
}

// buildTuple 元组编码：行优先的元组转置成 n 条列优先序列，逐成员递归构建
func (b *Builder) buildTuple(t chtype.Type, values []any) (chcol.Column, error) {
	n := len(t.Elems)
	columns := make([][]any, n)
	for j := range columns {
		columns[j] = make([]any, 0, len(values))
	}

	for i, v := range values {
		row, ok := AsList(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, t.String(), v)
		}
		if len(row) != n {
			return nil, cherr.NewArityMismatch(i, n, len(row))
		}
		for j := 0; j < n; j++ {
			columns[j] = append(columns[j], row[j])
		}
	}

	members := make([]chcol.Column, 0, n)
	for j := 0; j < n; j++ {
		m, err := b.build(t.Elems[j], columns[j])
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	col, err := chcol.NewTupleOf(t, members)
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "tuple assembly failed: %s", err.Error())
	}
	return col, nil
}

// buildMap 映射编码：线上格式就是 Array(Tuple(K, V))。
// 每行的键值在同一次遍历中成对取出，按对拍平后走数组的组装算法。
func (b *Builder) buildMap(t chtype.Type, values []any) (chcol.Column, error) {
	var flatKeys, flatValues []any
	offsets := make([]uint64, 0, len(values))
	total := uint64(0)
	for i, v := range values {
		pairs, ok := asPairs(v)
		if !ok {
			return nil, cherr.NewInvalidValue(i, t.String(), v)
		}
		for _, p := range pairs {
			flatKeys = append(flatKeys, p.key)
			flatValues = append(flatValues, p.value)
		}
		total += uint64(len(pairs))
		offsets = append(offsets, total)
	}

	keyCol, err := b.build(t.Elem(0), flatKeys)
	if err != nil {
		return nil, err
	}
	valueCol, err := b.build(t.Elem(1), flatValues)
	if err != nil {
		return nil, err
	}

	tupleType := chtype.Tuple(t.Elem(0), t.Elem(1))
	tupleCol, err := chcol.NewTupleOf(tupleType, []chcol.Column{keyCol, valueCol})
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "map tuple assembly failed: %s", err.Error())
	}

	arr, err := chcol.NewArray(chcol.WireType(t))
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "create map array column failed: %s", err.Error())
	}
	if err := arr.AppendSlices(tupleCol, offsets); err != nil {
		return nil, cherr.New(cherr.KindProtocol, "map assembly failed: %s", err.Error())
	}

	col, err := chcol.NewMapFromArray(t, arr)
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "map assembly failed: %s", err.Error())
	}
	return col, nil
}

// buildNullable 可空编码：拆成空位图和载荷两条并行序列。
// 空位用内层类型的占位值填充，占位值只为让递归构建通过，不会被读回。
// 对内层类型没有任何特殊分支，任意内层类型都走同一条路。
func (b *Builder) buildNullable(t chtype.Type, values []any) (chcol.Column, error) {
	inner := t.Elem(0)
	ph := placeholder(inner)

	nulls := make([]uint8, len(values))
	payloadValues := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			nulls[i] = 1
			payloadValues[i] = ph
		} else {
			payloadValues[i] = v
		}
	}

	payload, err := b.build(inner, payloadValues)
	if err != nil {
		return nil, err
	}

	col, err := chcol.NewNullable(t)
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "create nullable column failed: %s", err.Error())
	}
	if err := col.AppendPayload(payload, nulls); err != nil {
		return nil, cherr.New(cherr.KindProtocol, "nullable assembly failed: %s", err.Error())
	}
	return col, nil
}

// buildLowCardinality 字典编码：先递归构建内层类型的普通列，去重交给字典列
func (b *Builder) buildLowCardinality(t chtype.Type, values []any) (chcol.Column, error) {
	source, err := b.build(t.Elem(0), values)
	if err != nil {
		return nil, err
	}

	col, err := chcol.NewLowCardinality(t)
	if err != nil {
		return nil, cherr.New(cherr.KindProtocol, "create low cardinality column failed: %s", err.Error())
	}
	if err := col.AppendSource(source); err != nil {
		return nil, cherr.New(cherr.KindProtocol, "low cardinality assembly failed: %s", err.Error())
	}
	return col, nil
}

// placeholder 内层类型的合法占位值，填在可空列的空位上
func placeholder(t chtype.Type) any {
	switch t.Kind {
	case chtype.KindBool:
		return false
	case chtype.KindString:
		return ""
	case chtype.KindUUID:
		return uuid.Nil
	case chtype.KindEnum8, chtype.KindEnum16:
		return t.Members[0].Name
	case chtype.KindFloat32, chtype.KindFloat64:
		return 0.0
	}
	// 其余标量类型都接受整数输入
	return 0
}
