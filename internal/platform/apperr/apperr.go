// Package apperr 定义了业务层返回给HTTP层的错误分类。
// 服务层只返回 *Error 或普通错误，由 Respond 统一翻译为状态码和 {"error": ...} 响应体。
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
)

// Kind 是错误的分类
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindAuthenticationFailed
	KindForbidden
	KindRateLimited
)

// Status 返回该分类对应的HTTP状态码
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error 携带分类、面向用户的消息以及可选的底层错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFound(msg string) *Error {
	return newError(KindNotFound, msg, nil)
}

func Validation(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

// ValidationWrap 用于把外部依赖的失败（例如AI代理）作为请求错误返回
func ValidationWrap(msg string, err error) *Error {
	return newError(KindValidation, msg, err)
}

func AuthenticationFailed(msg string) *Error {
	return newError(KindAuthenticationFailed, msg, nil)
}

func Forbidden(msg string) *Error {
	return newError(KindForbidden, msg, nil)
}

func RateLimited(msg string) *Error {
	return newError(KindRateLimited, msg, nil)
}

func Internal(msg string, err error) *Error {
	return newError(KindInternal, msg, err)
}

// KindOf 返回错误链中第一个 *Error 的分类，普通错误视为内部错误
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于给定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Respond 把错误写成JSON响应。内部错误只记录日志，不把细节暴露给客户端。
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		logger.Log.WithField("path", c.Request.URL.Path).Errorf("服务器内部错误: %v", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}
	if appErr.Err != nil {
		logger.Log.WithField("path", c.Request.URL.Path).Warnf("%v", appErr)
	}
	c.JSON(appErr.Kind.Status(), gin.H{"error": appErr.Message})
}
