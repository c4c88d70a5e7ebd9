package chblock

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/chx/chconv"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

func TestBlock(t *testing.T) {
	Convey("测试块", t, func() {
		builder := chconv.NewBuilder(nil)

		id, err := builder.Build(chtype.UInt64(), []any{1, 2, 3})
		So(err, ShouldBeNil)
		name, err := builder.Build(chtype.String(), []any{"a", "b", "c"})
		So(err, ShouldBeNil)

		Convey("按追加顺序保存列", func() {
			block := NewBlock()
			So(block.AppendColumn("id", id), ShouldBeNil)
			So(block.AppendColumn("name", name), ShouldBeNil)

			So(block.RowCount(), ShouldEqual, 3)
			So(block.ColumnCount(), ShouldEqual, 2)
			So(block.Names(), ShouldResemble, []string{"id", "name"})

			col, ok := block.Column("name")
			So(ok, ShouldBeTrue)
			So(col.Len(), ShouldEqual, 3)

			_, ok = block.Column("missing")
			So(ok, ShouldBeFalse)
		})

		Convey("空列名报错", func() {
			block := NewBlock()
			err := block.AppendColumn("", id)
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("重复列名报错", func() {
			block := NewBlock()
			So(block.AppendColumn("id", id), ShouldBeNil)
			err := block.AppendColumn("id", name)
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("行数一致性校验", func() {
			short, err := builder.Build(chtype.UInt64(), []any{1})
			So(err, ShouldBeNil)

			block := NewBlock()
			So(block.AppendColumn("id", id), ShouldBeNil)
			So(block.AppendColumn("short", short), ShouldBeNil)
			So(block.CheckRowCounts(), ShouldNotBeNil)

			ok := NewBlock()
			So(ok.AppendColumn("id", id), ShouldBeNil)
			So(ok.AppendColumn("name", name), ShouldBeNil)
			So(ok.CheckRowCounts(), ShouldBeNil)
			So(NewBlock().CheckRowCounts(), ShouldBeNil)
		})

		Convey("按行和按列解码", func() {
			block := NewBlock()
			So(block.AppendColumn("id", id), ShouldBeNil)
			So(block.AppendColumn("name", name), ShouldBeNil)

			extractor := chconv.NewExtractor(nil)

			rows, err := block.Rows(extractor)
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, []map[string]any{
				{"id": uint64(1), "name": "a"},
				{"id": uint64(2), "name": "b"},
				{"id": uint64(3), "name": "c"},
			})

			columns, err := block.Columns(extractor)
			So(err, ShouldBeNil)
			So(columns, ShouldResemble, map[string][]any{
				"id":   {uint64(1), uint64(2), uint64(3)},
				"name": {"a", "b", "c"},
			})
		})

		Convey("行数不一致的块拒绝解码", func() {
			short, err := builder.Build(chtype.String(), []any{"only"})
			So(err, ShouldBeNil)

			block := NewBlock()
			So(block.AppendColumn("id", id), ShouldBeNil)
			So(block.AppendColumn("name", short), ShouldBeNil)

			_, err = block.Rows(chconv.NewExtractor(nil))
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})
	})
}

func TestAssemble(t *testing.T) {
	Convey("测试块组装", t, func() {
		builder := chconv.NewBuilder(nil)
		schema := []ColumnSchema{
			{Name: "user_id", Type: chtype.UInt64()},
			{Name: "tags", Type: chtype.Array(chtype.String())},
		}

		Convey("按结构组装载荷", func() {
			block, err := Assemble(schema, map[string]any{
				"user_id": []any{1, 2},
				"tags":    []any{[]any{"a"}, []any{"b", "c"}},
			}, builder)
			So(err, ShouldBeNil)
			So(block.RowCount(), ShouldEqual, 2)
			So(block.Names(), ShouldResemble, []string{"user_id", "tags"})
		})

		Convey("规范化名字兜底匹配", func() {
			block, err := Assemble(schema, map[string]any{
				"UserId": []any{1},
				"Tags":   []any{[]any{"a"}},
			}, builder)
			So(err, ShouldBeNil)
			So(block.Names(), ShouldResemble, []string{"user_id", "tags"})
		})

		Convey("精确匹配优先于规范化匹配", func() {
			block, err := Assemble(schema, map[string]any{
				"user_id": []any{1},
				"UserId":  []any{99},
				"tags":    []any{[]any{"a"}},
			}, builder)
			So(err, ShouldBeNil)
			columns, err := block.Columns(chconv.NewExtractor(nil))
			So(err, ShouldBeNil)
			So(columns["user_id"], ShouldResemble, []any{uint64(1)})
		})

		Convey("缺少列报错", func() {
			_, err := Assemble(schema, map[string]any{
				"user_id": []any{1},
			}, builder)
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Kind, ShouldEqual, cherr.KindValidation)
			So(e.Name, ShouldEqual, "tags")
		})

		Convey("载荷条目不是列表报错", func() {
			_, err := Assemble(schema, map[string]any{
				"user_id": 42,
				"tags":    []any{},
			}, builder)
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Kind, ShouldEqual, cherr.KindValidation)
			So(e.Name, ShouldEqual, "user_id")
		})

		Convey("多余的载荷键被忽略", func() {
			block, err := Assemble(schema, map[string]any{
				"user_id": []any{1},
				"tags":    []any{[]any{}},
				"extra":   []any{"x"},
			}, builder)
			So(err, ShouldBeNil)
			So(block.ColumnCount(), ShouldEqual, 2)
		})

		Convey("列内的构建错误原样上抛", func() {
			_, err := Assemble(schema, map[string]any{
				"user_id": []any{-1},
				"tags":    []any{[]any{}},
			}, builder)
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})
	})
}
