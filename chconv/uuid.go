package chconv

import (
	"github.com/google/uuid"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

// buildUUID 接受 uuid.UUID、标准格式字符串或 16 字节数组
func buildUUID(t chtype.Type, values []any) (chcol.Column, error) {
	data := make([]uuid.UUID, 0, len(values))
	for i, v := range values {
		switch u := v.(type) {
		case uuid.UUID:
			data = append(data, u)
		case string:
			parsed, err := uuid.Parse(u)
			if err != nil {
				return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
			}
			data = append(data, parsed)
		case [16]byte:
			data = append(data, uuid.UUID(u))
		default:
			return nil, cherr.NewInvalidValue(i, string(t.Kind), v)
		}
	}
	col := chcol.NewUUID(t)
	col.Append(data...)
	return col, nil
}

// extractUUID 解码为标准的连字符格式字符串
func extractUUID(col chcol.Column) ([]any, error) {
	c, ok := col.(*chcol.UUID)
	if !ok {
		return nil, cherr.New(cherr.KindProtocol, "unexpected column implementation %T for %q", col, col.Type().String())
	}
	out := make([]any, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = c.At(i).String()
	}
	return out, nil
}
