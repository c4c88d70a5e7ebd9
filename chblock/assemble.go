package chblock

import (
	"strings"

	"github.com/hatlonely/chx/chconv"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

// ColumnSchema 目标表的一列：名字加类型描述
type ColumnSchema struct {
	Name string
	Type chtype.Type
}

// Assemble 按表结构把行值载荷组装成块。
//
// 载荷键先按原名精确匹配，找不到再按规范化名字（小写、去掉下划线和连字符）
// 兜底匹配一次。结构中的每一列都必须在载荷中出现，多余的载荷键被忽略。
func Assemble(schema []ColumnSchema, payload map[string]any, builder *chconv.Builder) (*Block, error) {
	normalized := make(map[string]string, len(payload))
	for key := range payload {
		normalized[normalizeName(key)] = key
	}

	block := NewBlock()
	for _, cs := range schema {
		raw, ok := payload[cs.Name]
		if !ok {
			key, found := normalized[normalizeName(cs.Name)]
			if !found {
				return nil, cherr.NewMissingColumn(cs.Name)
			}
			raw = payload[key]
		}

		values, ok := chconv.AsList(raw)
		if !ok {
			return nil, cherr.NewNotAColumn(cs.Name, raw)
		}

		col, err := builder.Build(cs.Type, values)
		if err != nil {
			return nil, err
		}
		if err := block.AppendColumn(cs.Name, col); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}
