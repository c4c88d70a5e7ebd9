package cherr

import (
	"encoding/json"
	"strings"
)

// payload 外部协作方的结构化错误负载。
// 形如 {"type":"server","code":60,"name":"UNKNOWN_TABLE","message":"...","stack_trace":"..."}。
type payload struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Code       int    `json:"code,omitempty"`
	Name       string `json:"name,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// payloadKinds 负载中的 type 字段到错误种类的映射。
// openssl 是协作方对 TLS/证书类错误的叫法，归入 KindSecurity。
var payloadKinds = map[string]Kind{
	"validation":    KindValidation,
	"server":        KindServer,
	"connection":    KindConnection,
	"protocol":      KindProtocol,
	"compression":   KindCompression,
	"unimplemented": KindUnimplemented,
	"openssl":       KindSecurity,
	"security":      KindSecurity,
	"unknown":       KindUnknown,
}

// decodePayload 尝试把错误消息当作 JSON 负载解码，失败返回 nil
func decodePayload(message string) *Error {
	message = strings.TrimSpace(message)
	if !strings.HasPrefix(message, "{") {
		return nil
	}

	var p payload
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		return nil
	}
	if p.Type == "" {
		return nil
	}

	kind, ok := payloadKinds[p.Type]
	if !ok {
		kind = KindUnknown
	}
	return &Error{
		Kind:       kind,
		Message:    p.Message,
		Code:       p.Code,
		Name:       p.Name,
		StackTrace: p.StackTrace,
		Index:      -1,
	}
}

// EncodePayload 把结构化错误编码成 JSON 负载，协作方实现用它向引擎回传错误
func EncodePayload(e *Error) string {
	p := payload{
		Type:       string(e.Kind),
		Message:    e.Message,
		Code:       e.Code,
		Name:       e.Name,
		StackTrace: e.StackTrace,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return `{"type":"unknown","message":"encode error payload failed"}`
	}
	return string(data)
}
