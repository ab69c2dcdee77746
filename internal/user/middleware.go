package user

import (
	"net/http"
	"strings"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequireAuth 校验 Authorization: Bearer <access> 头，并把 Principal 放入Gin上下文。
// 令牌对应的用户已被删除时同样拒绝。
func (s *Service) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := s.issuer.Parse(raw, token.TypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
			return
		}

		u, err := s.Get(c.Request.Context(), userID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			apperr.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, Principal{UserID: u.ID, Email: u.Email})
		c.Next()
	}
}

// PrincipalFrom 取出 RequireAuth 放入的调用者
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustPrincipal 用于挂在 RequireAuth 之后的处理函数
func MustPrincipal(c *gin.Context) Principal {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("user: 处理函数缺少 RequireAuth 中间件")
	}
	return p
}

// WithPrincipal 直接把调用者写入上下文，供测试和内部调用使用
func WithPrincipal(p Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, p)
		c.Next()
	}
}
