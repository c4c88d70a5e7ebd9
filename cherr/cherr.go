package cherr

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Kind 错误种类，封闭集合。
// 客户端本地校验失败归为 KindValidation，其余种类均来自外部协作方。
type Kind string

const (
	KindValidation    Kind = "validation"
	KindServer        Kind = "server"
	KindConnection    Kind = "connection"
	KindProtocol      Kind = "protocol"
	KindCompression   Kind = "compression"
	KindUnimplemented Kind = "unimplemented"
	KindSecurity      Kind = "security"
	KindUnknown       Kind = "unknown"
)

// Error 结构化错误。Kind 之外的字段按需填充：
// 服务端错误携带 Code/Name/StackTrace，校验错误携带 Index/Value。
type Error struct {
	Kind       Kind
	Message    string
	Code       int
	Name       string
	StackTrace string

	// Index 触发校验错误的值在输入中的下标，无意义时为 -1
	Index int
	// Value 触发校验错误的值
	Value any
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("[%s] %s (code=%d, name=%s)", e.Kind, e.Message, e.Code, e.Name)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// New 创建指定种类的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Index: -1}
}

// NewInvalidValue 值与声明类型不匹配
func NewInvalidValue(index int, expected string, actual any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("invalid value at index %d: expect %s, got %T(%v)", index, expected, actual, actual),
		Index:   index,
		Value:   actual,
	}
}

// NewArityMismatch 元组元素个数不匹配
func NewArityMismatch(index int, expected int, actual int) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("arity mismatch at index %d: expect %d elements, got %d", index, expected, actual),
		Index:   index,
		Value:   actual,
	}
}

// NewMissingColumn 插入数据中缺少模式声明的列
func NewMissingColumn(name string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("missing column %q", name),
		Index:   -1,
		Name:    name,
	}
}

// NewNotAColumn 插入数据中对应的条目不是一个值列表
func NewNotAColumn(name string, actual any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("column %q is not a list of values, got %T", name, actual),
		Index:   -1,
		Name:    name,
		Value:   actual,
	}
}

// NewUnknownEnumMember 枚举中不存在的成员名或值
func NewUnknownEnumMember(index int, member any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("unknown enum member %v at index %d", member, index),
		Index:   index,
		Value:   member,
	}
}

// IsKind 判断错误链上是否存在指定种类的 *Error
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError 从错误链上取出 *Error，不存在时返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Translate 边界翻译：把外部协作方抛出的任意错误翻译成结构化 *Error。
// 翻译只发生在这一处，引擎内部产生的 *Error 原样透传，nil 原样返回 nil。
//
// 协作方的原生错误以 JSON 负载的形式编码（见 decodePayload），
// 网络层错误按 net.Error 识别为 KindConnection，其余归为 KindUnknown。
func Translate(err error) error {
	if err == nil {
		return nil
	}

	if e := AsError(err); e != nil {
		return e
	}

	if e := decodePayload(errors.Cause(err).Error()); e != nil {
		return e
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindConnection, Message: err.Error(), Index: -1}
	}

	return &Error{Kind: KindUnknown, Message: err.Error(), Index: -1}
}
