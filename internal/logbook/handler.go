package logbook

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露 /logs 和 /reminders 下的接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID: " + c.Param("id")})
		return 0, false
	}
	return uint(id), true
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) ListLogs(c *gin.Context) {
	logs, err := h.svc.ListLogs(c.Request.Context(), user.MustPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) CreateLog(c *gin.Context) {
	var body LogEntryCreate
	if !bind(c, &body) {
		return
	}
	entry, err := h.svc.CreateLog(c.Request.Context(), user.MustPrincipal(c), body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) UpdateLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body LogEntryUpdate
	if !bind(c, &body) {
		return
	}
	entry, err := h.svc.UpdateLog(c.Request.Context(), user.MustPrincipal(c), id, body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteLog(c.Request.Context(), user.MustPrincipal(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Log berhasil dihapus.", "status": http.StatusNoContent})
}

func (h *Handler) ListReminders(c *gin.Context) {
	reminders, err := h.svc.ListReminders(c.Request.Context(), user.MustPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *Handler) CreateReminder(c *gin.Context) {
	var body ReminderCreate
	if !bind(c, &body) {
		return
	}
	r, err := h.svc.CreateReminder(c.Request.Context(), user.MustPrincipal(c), body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body ReminderUpdate
	if !bind(c, &body) {
		return
	}
	r, err := h.svc.UpdateReminder(c.Request.Context(), user.MustPrincipal(c), id, body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteReminder(c.Request.Context(), user.MustPrincipal(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder berhasil dihapus.", "status": http.StatusNoContent})
}

// RegisterRoutes 挂载 /logs 和 /reminders 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	logs := api.Group("/logs", auth)
	{
		logs.GET("/", h.ListLogs)
		logs.POST("/", h.CreateLog)
		logs.PATCH("/:id", h.UpdateLog)
		logs.DELETE("/:id", h.DeleteLog)
	}

	reminders := api.Group("/reminders", auth)
	{
		reminders.GET("/", h.ListReminders)
		reminders.POST("/", h.CreateReminder)
		reminders.PATCH("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
	}
}
