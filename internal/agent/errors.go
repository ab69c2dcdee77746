package agent

import (
	"errors"
	"fmt"
)

// ErrUnavailable 表示没有配置可用的AI代理
var ErrUnavailable = errors.New("AI代理未启用")

// SchemaError 表示代理的输出无法解析或不满足约定的结构，Raw 保存原始输出便于排查。
type SchemaError struct {
	Raw string
	err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("代理输出不符合结构: %v", e.err)
}

func (e *SchemaError) Unwrap() error {
	return e.err
}

func newSchemaError(raw string, err error) error {
	return &SchemaError{Raw: raw, err: err}
}

// IsSchemaError 判断错误是否来自代理输出格式
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
