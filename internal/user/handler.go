package user

import (
	"net/http"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

// Handler 暴露认证相关的HTTP接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Register 处理 POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Login 处理 POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me 处理 GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	me, err := h.svc.Me(c.Request.Context(), MustPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// DeleteAccount 处理 DELETE /auth/delete-account
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), MustPrincipal(c)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Akun pengguna berhasil dihapus.", "status": http.StatusNoContent})
}

// TokenPair 处理 POST /token/pair
func (h *Handler) TokenPair(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	pair, err := h.svc.IssuePair(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// TokenRefresh 处理 POST /token/refresh
func (h *Handler) TokenRefresh(c *gin.Context) {
	var body refreshRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	access, err := h.svc.RefreshAccess(body.Refresh)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// TokenVerify 处理 POST /token/verify
func (h *Handler) TokenVerify(c *gin.Context) {
	var body verifyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if err := h.svc.Verify(body.Token); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// RegisterRoutes 挂载 /auth 和 /token 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/me", h.svc.RequireAuth(), h.Me)
	auth.DELETE("/delete-account", h.svc.RequireAuth(), h.DeleteAccount)

	tok := api.Group("/token")
	tok.POST("/pair", h.TokenPair)
	tok.POST("/refresh", h.TokenRefresh)
	tok.POST("/verify", h.TokenVerify)
}
