package chconv

import (
	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

// Extractor 值提取器，查询通路。
// 与 Builder 互逆：Builder 接受的输入形态，Extract 的输出原样可以再喂回去。
type Extractor struct {
	registry *Registry
}

// NewExtractor 创建值提取器，registry 为 nil 时使用内置标量表
func NewExtractor(registry *Registry) *Extractor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Extractor{registry: registry}
}

// Extract 把类型化的列还原成一列动态值
func (e *Extractor) Extract(col chcol.Column) ([]any, error) {
	switch col.Type().Kind {
	case chtype.KindArray:
		return e.extractArray(col)
	case chtype.KindTuple:
		return e.extractTuple(col)
	case chtype.KindMap:
		return e.extractMap(col)
	case chtype.KindNullable:
		return e.extractNullable(col)
	case chtype.KindLowCardinality:
		return e.extractLowCardinality(col)
	}

	codec, ok := e.registry.lookup(col.Type().Kind)
	if !ok {
		return nil, cherr.New(cherr.KindValidation, "no codec registered for %q", col.Type().Kind)
	}
	return codec.extract(col)
}

func (e *Extractor) extractArray(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Array)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		row, err := c.Row(i)
		if err != nil {
			return nil, cherr.New(cherr.KindProtocol, "array row access failed: %s", err.Error())
		}
		values, err := e.Extract(row)
		if err != nil {
			return nil, err
		}
		out[i] = values
	}
	return out, nil
}

func (e *Extractor) extractTuple(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Tuple)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}

	members := make([][]any, c.Arity())
	for j := 0; j < c.Arity(); j++ {
		values, err := e.Extract(c.Member(j))
		if err != nil {
			return nil, err
		}
		members[j] = values
	}

	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		row := make([]any, c.Arity())
		for j := 0; j < c.Arity(); j++ {
			row[j] = members[j][i]
		}
		out[i] = row
	}
	return out, nil
}

// extractMap 每行的底层数组切片是一条 Tuple(K, V) 列，键值各自批量解码后配对。
// 键解码结果是字符串的类型给出 map[string]any，其余类型给出 map[any]any。
func (e *Extractor) extractMap(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Map)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	stringKeyed := stringKeyedKind(col.Type().Elem(0))

	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		row, err := c.Row(i)
		if err != nil {
			return nil, cherr.New(cherr.KindProtocol, "map row access failed: %s", err.Error())
		}
		tuple, ok := row.(*chcol.Tuple)
		if !ok {
			return nil, cherr.New(cherr.KindProtocol, "unexpected map row implementation %T for %q", row, col.Type().String())
		}
		keys, err := e.Extract(tuple.Member(0))
		if err != nil {
			return nil, err
		}
		values, err := e.Extract(tuple.Member(1))
		if err != nil {
			return nil, err
		}

		if stringKeyed {
			m := make(map[string]any, len(keys))
			for j := range keys {
				k, ok := keys[j].(string)
				if !ok {
					return nil, cherr.New(cherr.KindProtocol, "expect string map key, got %T", keys[j])
				}
				m[k] = values[j]
			}
			out[i] = m
		} else {
			m := make(map[any]any, len(keys))
			for j := range keys {
				m[keys[j]] = values[j]
			}
			out[i] = m
		}
	}
	return out, nil
}

// stringKeyedKind 该类型的解码结果是否为字符串
func stringKeyedKind(t chtype.Type) bool {
	switch t.Kind {
	case chtype.KindString, chtype.KindUUID, chtype.KindEnum8, chtype.KindEnum16:
		return true
	case chtype.KindLowCardinality:
		return stringKeyedKind(t.Elem(0))
	}
	return false
}

// extractNullable 空行直接给出 nil，载荷解码只发生在非空行上。
// 空位上的占位值不受任何约束，绝不能参与解码。
// 没有空行时整列批量解码，有空行时逐个非空行切片递归解码。
func (e *Extractor) extractNullable(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.Nullable)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}

	hasNull := false
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			hasNull = true
			break
		}
	}
	if !hasNull {
		return e.Extract(c.Payload())
	}

	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		row, err := c.Payload().Slice(i, 1)
		if err != nil {
			return nil, cherr.New(cherr.KindProtocol, "nullable row access failed: %s", err.Error())
		}
		values, err := e.Extract(row)
		if err != nil {
			return nil, err
		}
		out[i] = values[0]
	}
	return out, nil
}

// extractLowCardinality 字典批量解码一次，再按下标展开，不走逐行物化
func (e *Extractor) extractLowCardinality(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.LowCardinality)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	dict, err := e.Extract(c.Dict())
	if err != nil {
		return nil, err
	}
	indices := c.Indices()
	out := make([]any, len(indices))
	for i, idx := range indices {
		if int(idx) >= len(dict) {
			return nil, cherr.New(cherr.KindProtocol, "dictionary index %d out of range, dictionary size %d", idx, len(dict))
		}
		out[i] = dict[idx]
	}
	return out, nil
}
