package chconv

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/cherr"
	"github.com/hatlonely/chx/chtype"
)

// roundTrip 构建后立即提取，插入通路和查询通路互为逆操作
func roundTrip(t chtype.Type, values []any) ([]any, error) {
	col, err := NewBuilder(nil).Build(t, values)
	if err != nil {
		return nil, err
	}
	return NewExtractor(nil).Extract(col)
}

func TestScalarRoundTrip(t *testing.T) {
	Convey("测试标量类型往返", t, func() {
		Convey("无符号整数", func() {
			out, err := roundTrip(chtype.UInt8(), []any{0, 1, 255})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{uint8(0), uint8(1), uint8(255)})

			out, err = roundTrip(chtype.UInt64(), []any{uint64(18446744073709551615)})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{uint64(18446744073709551615)})
		})

		Convey("有符号整数", func() {
			out, err := roundTrip(chtype.Int8(), []any{-128, 0, 127})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{int8(-128), int8(0), int8(127)})

			out, err = roundTrip(chtype.Int64(), []any{int64(-9223372036854775808)})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{int64(-9223372036854775808)})
		})

		Convey("浮点数", func() {
			out, err := roundTrip(chtype.Float64(), []any{3.14, -0.5, 42})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{3.14, -0.5, 42.0})

			out, err = roundTrip(chtype.Float32(), []any{float32(1.5)})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{float32(1.5)})
		})

		Convey("布尔", func() {
			out, err := roundTrip(chtype.Bool(), []any{true, false, true})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{true, false, true})
		})

		Convey("字符串接受 string 和 []byte", func() {
			out, err := roundTrip(chtype.String(), []any{"hello", []byte("world"), ""})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"hello", "world", ""})
		})

		Convey("日期", func() {
			day := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
			out, err := roundTrip(chtype.Date(), []any{day})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{day})
		})

		Convey("秒级时间戳", func() {
			ts := time.Date(2023, 5, 15, 12, 30, 45, 0, time.UTC)
			out, err := roundTrip(chtype.DateTime(), []any{ts, 0})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{ts, time.Unix(0, 0).UTC()})
		})

		Convey("亚秒级时间戳保留精度内的小数部分", func() {
			ts := time.Date(2023, 5, 15, 12, 30, 45, 123456789, time.UTC)
			out, err := roundTrip(chtype.DateTime64(3), []any{ts})
			So(err, ShouldBeNil)
			So(out[0].(time.Time).Nanosecond(), ShouldEqual, 123000000)

			out, err = roundTrip(chtype.DateTime64(9), []any{ts})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{ts})
		})

		Convey("定点小数", func() {
			out, err := roundTrip(chtype.Decimal64(2), []any{"12.34", decimal.NewFromFloat(5.6), 789})
			So(err, ShouldBeNil)
			So(out[0].(decimal.Decimal).String(), ShouldEqual, "12.34")
			So(out[1].(decimal.Decimal).String(), ShouldEqual, "5.6")
			So(out[2].(decimal.Decimal).String(), ShouldEqual, "7.89")
		})

		Convey("UUID 解码为连字符格式", func() {
			out, err := roundTrip(chtype.UUID(), []any{"8f0c7d8a-62c6-4d7e-9b44-1f3a6f2c9e01"})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"8f0c7d8a-62c6-4d7e-9b44-1f3a6f2c9e01"})
		})

		Convey("枚举接受名字和整数，解码为名字", func() {
			e := chtype.Enum8([]chtype.EnumMember{{Name: "red", Value: 1}, {Name: "green", Value: 2}})
			out, err := roundTrip(e, []any{"red", 2, "green"})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"red", "green", "green"})
		})
	})
}

func TestScalarValidation(t *testing.T) {
	Convey("测试标量输入校验", t, func() {
		Convey("越界的值直接报错", func() {
			_, err := roundTrip(chtype.UInt8(), []any{256})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)

			_, err = roundTrip(chtype.Int8(), []any{128})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)

			_, err = roundTrip(chtype.UInt32(), []any{-1})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("超出 int64 的 uint64 不回绕", func() {
			_, err := roundTrip(chtype.Int64(), []any{uint64(9223372036854775808)})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("错误下标指向第一个坏值", func() {
			_, err := roundTrip(chtype.UInt8(), []any{1, 2, "x", 4})
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Index, ShouldEqual, 2)
			So(e.Value, ShouldEqual, "x")
		})

		Convey("类型不匹配的值报错", func() {
			_, err := roundTrip(chtype.Bool(), []any{1})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)

			_, err = roundTrip(chtype.String(), []any{42})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("缩放后溢出的时间戳报错", func() {
			far := time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)
			_, err := roundTrip(chtype.DateTime64(9), []any{far})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)

			// 低精度下同一时间在范围内，正常往返而不是回绕
			out, err := roundTrip(chtype.DateTime64(0), []any{far})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{far})
		})

		Convey("缩放后溢出的小数报错", func() {
			_, err := roundTrip(chtype.Decimal64(18), []any{"10"})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})

		Convey("不在映射表里的枚举名报错", func() {
			e := chtype.Enum8([]chtype.EnumMember{{Name: "a", Value: 1}})
			_, err := roundTrip(e, []any{"b"})
			ce := cherr.AsError(err)
			So(ce, ShouldNotBeNil)
			So(ce.Kind, ShouldEqual, cherr.KindValidation)
			So(ce.Index, ShouldEqual, 0)
		})

		Convey("存储中认不出的枚举值解码报错", func() {
			e := chtype.Enum8([]chtype.EnumMember{{Name: "a", Value: 1}})
			col := chcol.NewNumeric[int8](e)
			col.Append(1, 7)
			_, err := NewExtractor(nil).Extract(col)
			So(cherr.IsKind(err, cherr.KindProtocol), ShouldBeTrue)
		})

		Convey("非法的类型描述报错", func() {
			_, err := NewBuilder(nil).Build(chtype.Nullable(chtype.Array(chtype.String())), nil)
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})
	})
}

func TestArrayRoundTrip(t *testing.T) {
	Convey("测试数组往返", t, func() {
		Convey("一层数组", func() {
			out, err := roundTrip(chtype.Array(chtype.UInt64()), []any{
				[]any{1, 2, 3},
				[]any{},
				[]any{4},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{uint64(1), uint64(2), uint64(3)},
				[]any{},
				[]any{uint64(4)},
			})
		})

		Convey("原生切片同样可以作为数组值", func() {
			out, err := roundTrip(chtype.Array(chtype.Int32()), []any{[]int{1, 2}, []int32{3}})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{[]any{int32(1), int32(2)}, []any{int32(3)}})
		})

		Convey("字符串数组保留空行", func() {
			out, err := roundTrip(chtype.Array(chtype.String()), []any{
				[]any{"a", "b"},
				[]any{},
				[]any{"c"},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{"a", "b"},
				[]any{},
				[]any{"c"},
			})
		})

		Convey("二层嵌套数组的偏移量", func() {
			typ := chtype.Array(chtype.Array(chtype.UInt64()))
			in := []any{
				[]any{[]any{1, 2}, []any{3}},
				[]any{[]any{4, 5, 6}},
			}
			col, err := NewBuilder(nil).Build(typ, in)
			So(err, ShouldBeNil)

			outer := col.(*chcol.Array)
			So(outer.Offsets(), ShouldResemble, []uint64{2, 3})
			inner := outer.Nested().(*chcol.Array)
			So(inner.Offsets(), ShouldResemble, []uint64{2, 3, 6})
			So(inner.Nested().Len(), ShouldEqual, 6)

			out, err := NewExtractor(nil).Extract(col)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{[]any{uint64(1), uint64(2)}, []any{uint64(3)}},
				[]any{[]any{uint64(4), uint64(5), uint64(6)}},
			})
		})

		Convey("三层嵌套数组", func() {
			in := []any{
				[]any{
					[]any{[]any{1, 2}, []any{}},
					[]any{[]any{3}},
				},
				[]any{},
			}
			out, err := roundTrip(chtype.Array(chtype.Array(chtype.Array(chtype.UInt64()))), in)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{
					[]any{[]any{uint64(1), uint64(2)}, []any{}},
					[]any{[]any{uint64(3)}},
				},
				[]any{},
			})
		})

		Convey("数组套可空字符串", func() {
			out, err := roundTrip(chtype.Array(chtype.Nullable(chtype.String())), []any{
				[]any{"a", nil, "b"},
				[]any{nil},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{"a", nil, "b"},
				[]any{nil},
			})
		})

		Convey("不是列表的行报错并带下标", func() {
			_, err := roundTrip(chtype.Array(chtype.UInt64()), []any{[]any{1}, 42})
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Kind, ShouldEqual, cherr.KindValidation)
			So(e.Index, ShouldEqual, 1)
		})

		Convey("空输入得到空列", func() {
			out, err := roundTrip(chtype.Array(chtype.UInt64()), nil)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 0)
		})
	})
}

func TestTupleRoundTrip(t *testing.T) {
	Convey("测试元组往返", t, func() {
		typ := chtype.Tuple(chtype.UInt8(), chtype.String(), chtype.Float64())

		Convey("行优先的元组按成员转置", func() {
			out, err := roundTrip(typ, []any{
				[]any{1, "a", 1.5},
				[]any{2, "b", 2.5},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{uint8(1), "a", 1.5},
				[]any{uint8(2), "b", 2.5},
			})
		})

		Convey("元数不匹配报错并带下标", func() {
			_, err := roundTrip(typ, []any{
				[]any{1, "a", 1.5},
				[]any{2, "b"},
			})
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Kind, ShouldEqual, cherr.KindValidation)
			So(e.Index, ShouldEqual, 1)
		})

		Convey("字符串加整数的二元组", func() {
			typ := chtype.Tuple(chtype.String(), chtype.UInt64())
			out, err := roundTrip(typ, []any{
				[]any{"Alice", 1},
				[]any{"Bob", 2},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{"Alice", uint64(1)},
				[]any{"Bob", uint64(2)},
			})
		})

		Convey("元组套数组", func() {
			typ := chtype.Tuple(chtype.String(), chtype.Array(chtype.UInt64()))
			out, err := roundTrip(typ, []any{
				[]any{"k", []any{1, 2}},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				[]any{"k", []any{uint64(1), uint64(2)}},
			})
		})
	})
}

func TestMapRoundTrip(t *testing.T) {
	Convey("测试映射往返", t, func() {
		Convey("字符串键解码为 map[string]any", func() {
			out, err := roundTrip(chtype.Map(chtype.String(), chtype.UInt64()), []any{
				map[string]any{"a": 1, "b": 2},
				map[string]any{},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				map[string]any{"a": uint64(1), "b": uint64(2)},
				map[string]any{},
			})
		})

		Convey("原生 map 同样可以作为输入", func() {
			out, err := roundTrip(chtype.Map(chtype.String(), chtype.Int32()), []any{
				map[string]int{"x": -1},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				map[string]any{"x": int32(-1)},
			})
		})

		Convey("整数键解码为 map[any]any", func() {
			out, err := roundTrip(chtype.Map(chtype.UInt8(), chtype.String()), []any{
				map[any]any{1: "a", 2: "b"},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				map[any]any{uint8(1): "a", uint8(2): "b"},
			})
		})

		Convey("值可以是任意嵌套类型", func() {
			out, err := roundTrip(chtype.Map(chtype.String(), chtype.Array(chtype.UInt64())), []any{
				map[string]any{"a": []any{1, 2}, "b": []any{}},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{
				map[string]any{"a": []any{uint64(1), uint64(2)}, "b": []any{}},
			})
		})

		Convey("不是键值集合的行报错", func() {
			_, err := roundTrip(chtype.Map(chtype.String(), chtype.UInt64()), []any{[]any{1, 2}})
			e := cherr.AsError(err)
			So(e, ShouldNotBeNil)
			So(e.Kind, ShouldEqual, cherr.KindValidation)
			So(e.Index, ShouldEqual, 0)
		})
	})
}

func TestNullableRoundTrip(t *testing.T) {
	Convey("测试可空往返", t, func() {
		Convey("空值位置原样保留", func() {
			out, err := roundTrip(chtype.Nullable(chtype.UInt64()), []any{1, nil, 3, nil})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{uint64(1), nil, uint64(3), nil})
		})

		Convey("全空列", func() {
			out, err := roundTrip(chtype.Nullable(chtype.String()), []any{nil, nil})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{nil, nil})
		})

		Convey("任意内层类型都支持空值", func() {
			ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for _, c := range []struct {
				typ    chtype.Type
				value  any
				expect any
			}{
				{chtype.Nullable(chtype.Bool()), true, true},
				{chtype.Nullable(chtype.Float64()), 2.5, 2.5},
				{chtype.Nullable(chtype.DateTime()), ts, ts},
				{chtype.Nullable(chtype.UUID()),
					"8f0c7d8a-62c6-4d7e-9b44-1f3a6f2c9e01",
					"8f0c7d8a-62c6-4d7e-9b44-1f3a6f2c9e01"},
				{chtype.Nullable(chtype.Enum8([]chtype.EnumMember{{Name: "a", Value: 1}})), "a", "a"},
			} {
				out, err := roundTrip(c.typ, []any{c.value, nil})
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []any{c.expect, nil})
			}
		})

		Convey("空位上的占位值不参与解码", func() {
			// 协作方回传的列里，空位的载荷值不受约束，可能不在枚举映射表里
			e := chtype.Enum8([]chtype.EnumMember{{Name: "a", Value: 1}})
			payload := chcol.NewNumeric[int8](e)
			payload.Append(1, 0)

			col, err := chcol.NewNullable(chtype.Nullable(e))
			So(err, ShouldBeNil)
			So(col.AppendPayload(payload, []uint8{0, 1}), ShouldBeNil)

			out, err := NewExtractor(nil).Extract(col)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"a", nil})
		})

		Convey("非空位置的坏值照常报错", func() {
			_, err := roundTrip(chtype.Nullable(chtype.UInt8()), []any{nil, 256})
			So(cherr.IsKind(err, cherr.KindValidation), ShouldBeTrue)
		})
	})
}

func TestLowCardinalityRoundTrip(t *testing.T) {
	Convey("测试字典编码往返", t, func() {
		Convey("值模型与普通列一致", func() {
			out, err := roundTrip(chtype.LowCardinality(chtype.String()), []any{"cn", "us", "cn", "jp", "cn"})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"cn", "us", "cn", "jp", "cn"})
		})

		Convey("重复值只进一次字典", func() {
			col, err := NewBuilder(nil).Build(chtype.LowCardinality(chtype.String()),
				[]any{"cn", "us", "cn", "jp", "cn"})
			So(err, ShouldBeNil)
			So(col.(*chcol.LowCardinality).Dict().Len(), ShouldEqual, 3)
		})

		Convey("可空内层", func() {
			out, err := roundTrip(chtype.LowCardinality(chtype.Nullable(chtype.String())),
				[]any{"a", nil, "a", nil})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []any{"a", nil, "a", nil})
		})
	})
}

func TestExtractorIsDualOfBuilder(t *testing.T) {
	Convey("测试提取输出可以原样再次构建", t, func() {
		typ := chtype.Map(chtype.String(), chtype.Array(chtype.Nullable(chtype.UInt64())))
		in := []any{
			map[string]any{"a": []any{1, nil, 3}},
			map[string]any{"b": []any{}},
		}

		out, err := roundTrip(typ, in)
		So(err, ShouldBeNil)

		again, err := roundTrip(typ, out)
		So(err, ShouldBeNil)
		So(again, ShouldResemble, out)
	})
}
