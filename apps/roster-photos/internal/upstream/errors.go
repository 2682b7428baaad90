package upstream

import (
	"fmt"
	"unicode/utf8"
)

// ConnectionError は接続エラーを表す
type ConnectionError struct {
	Service string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection error: %v", e.Service, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// CountsAsFailure はHTTPステータスがCircuit Breakerの失敗判定対象かどうかを返す。
// 5xx（501除く）のみを対象とし、4xxは上流の障害とみなさない。
func CountsAsFailure(statusCode int) bool {
	return statusCode >= 500 && statusCode != 501
}

// TruncateBody はエラーメッセージ用にレスポンスボディを切り詰める。
// マルチバイト文字の途中では切らない。
func TruncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
