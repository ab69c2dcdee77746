package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindAuthenticationFailed, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Status())
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := NotFound("Scan tidak ditemukan.")
	wrapped := fmt.Errorf("读取扫描失败: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("agent offline")
	err := ValidationWrap("Gagal membuat diagnosis.", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "agent offline")
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"forbidden", Forbidden("nope"), http.StatusForbidden, `{"error":"nope"}`},
		{"internal hides detail", errors.New("sql: connection refused"), http.StatusInternalServerError, `{"error":"服务器内部错误"}`},
		{"wrapped validation", fmt.Errorf("ctx: %w", Validation("bad")), http.StatusBadRequest, `{"error":"bad"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			Respond(c, tt.err)

			require.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
