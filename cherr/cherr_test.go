package cherr

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "dial tcp 127.0.0.1:9000: connection refused" }
func (fakeNetError) Timeout() bool   { return false }
func (fakeNetError) Temporary() bool { return false }

func TestTranslate(t *testing.T) {
	Convey("测试边界错误翻译", t, func() {
		Convey("nil 原样返回", func() {
			So(Translate(nil), ShouldBeNil)
		})

		Convey("结构化错误原样透传", func() {
			in := New(KindValidation, "bad value")
			out := Translate(in)
			So(out, ShouldEqual, in)
		})

		Convey("包装过的结构化错误同样透传", func() {
			in := New(KindProtocol, "bad frame")
			out := Translate(errors.WithMessage(in, "decode failed"))
			So(AsError(out), ShouldEqual, in)
		})

		Convey("JSON 负载按 type 字段归类", func() {
			for payload, kind := range map[string]Kind{
				`{"type":"validation","message":"m"}`:    KindValidation,
				`{"type":"server","message":"m"}`:        KindServer,
				`{"type":"connection","message":"m"}`:    KindConnection,
				`{"type":"protocol","message":"m"}`:      KindProtocol,
				`{"type":"compression","message":"m"}`:   KindCompression,
				`{"type":"unimplemented","message":"m"}`: KindUnimplemented,
				`{"type":"openssl","message":"m"}`:       KindSecurity,
				`{"type":"unknown","message":"m"}`:       KindUnknown,
			} {
				e := AsError(Translate(errors.New(payload)))
				So(e, ShouldNotBeNil)
				So(e.Kind, ShouldEqual, kind)
				So(e.Message, ShouldEqual, "m")
			}
		})

		Convey("服务端负载携带错误码和调用栈", func() {
			e := AsError(Translate(errors.New(
				`{"type":"server","message":"table default.t does not exist","code":60,"name":"UNKNOWN_TABLE","stack_trace":"0. a\n1. b"}`)))
			So(e.Kind, ShouldEqual, KindServer)
			So(e.Code, ShouldEqual, 60)
			So(e.Name, ShouldEqual, "UNKNOWN_TABLE")
			So(e.StackTrace, ShouldEqual, "0. a\n1. b")
		})

		Convey("认不出的 type 字段归为 unknown", func() {
			e := AsError(Translate(errors.New(`{"type":"martian","message":"m"}`)))
			So(e.Kind, ShouldEqual, KindUnknown)
		})

		Convey("网络错误归为 connection", func() {
			e := AsError(Translate(fakeNetError{}))
			So(e.Kind, ShouldEqual, KindConnection)
		})

		Convey("普通错误归为 unknown", func() {
			e := AsError(Translate(errors.New("something broke")))
			So(e.Kind, ShouldEqual, KindUnknown)
			So(e.Message, ShouldEqual, "something broke")
		})

		Convey("不是 JSON 的花括号开头消息归为 unknown", func() {
			e := AsError(Translate(errors.New("{not json")))
			So(e.Kind, ShouldEqual, KindUnknown)
		})
	})
}

func TestEncodePayload(t *testing.T) {
	Convey("测试错误负载编码", t, func() {
		Convey("编码与翻译互逆", func() {
			in := &Error{Kind: KindServer, Message: "boom", Code: 190, Name: "SIZES_OF_COLUMNS_DOESNT_MATCH"}
			out := AsError(Translate(errors.New(EncodePayload(in))))
			So(out.Kind, ShouldEqual, in.Kind)
			So(out.Message, ShouldEqual, in.Message)
			So(out.Code, ShouldEqual, in.Code)
			So(out.Name, ShouldEqual, in.Name)
		})

		Convey("可选字段为空时不出现在负载里", func() {
			s := EncodePayload(New(KindConnection, "refused"))
			So(s, ShouldNotContainSubstring, "code")
			So(s, ShouldNotContainSubstring, "stack_trace")
		})
	})
}

func TestIsKind(t *testing.T) {
	Convey("测试错误种类判断", t, func() {
		err := NewInvalidValue(3, "UInt8", "x")
		So(IsKind(err, KindValidation), ShouldBeTrue)
		So(IsKind(err, KindServer), ShouldBeFalse)
		So(IsKind(errors.New("plain"), KindValidation), ShouldBeFalse)
		So(err.Index, ShouldEqual, 3)
		So(err.Value, ShouldEqual, "x")
	})
}
