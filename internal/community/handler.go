package community

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露 /community 下的接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID: " + c.Param(name)})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context(), user.MustPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var body PostCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), user.MustPrincipal(c), body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body PostUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), user.MustPrincipal(c), id, body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), user.MustPrincipal(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Berhasil menghapus postingan.", "status": http.StatusNoContent})
}

// ToggleLike 处理 POST /community/posts/:id/like
func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.ToggleLike(c.Request.Context(), user.MustPrincipal(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	comments, err := h.svc.ListComments(c.Request.Context(), user.MustPrincipal(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body CommentCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	comment, err := h.svc.CreateComment(c.Request.Context(), user.MustPrincipal(c), id, body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), user.MustPrincipal(c), postID, commentID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Komentar berhasil dihapus.", "status": http.StatusNoContent})
}

// RegisterRoutes 挂载 /community 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/community", auth)
	{
		g.GET("/posts", h.ListPosts)
		g.POST("/posts", h.CreatePost)
		g.PATCH("/posts/:id", h.UpdatePost)
		g.DELETE("/posts/:id", h.DeletePost)
		g.POST("/posts/:id/like", h.ToggleLike)
		g.GET("/posts/:id/comments", h.ListComments)
		g.POST("/posts/:id/comments", h.CreateComment)
		g.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)
	}
}
