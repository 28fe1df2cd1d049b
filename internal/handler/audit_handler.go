package handler

import (
	"net/http"

	"carwash/internal/middleware"
	"carwash/internal/model"
	"carwash/internal/service"
	"carwash/pkg/pagination"
	"carwash/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService   service.AuditService
	settingService service.SettingService
	guard          *middleware.Guard
}

func NewAuditHandler(auditService service.AuditService, settingService service.SettingService, guard *middleware.Guard) *AuditHandler {
	return &AuditHandler{auditService: auditService, settingService: settingService, guard: guard}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", h.guard.RequireRole(model.RoleAdmin, model.RoleManager), h.GetAuditLogs)

	settings := router.Group("/settings", h.guard.RequireRole(model.RoleAdmin))
	{
		settings.GET("/notifications", h.GetNotificationSettings)
		settings.PUT("/notifications", h.UpdateNotificationSettings)
	}
}

// GetAuditLogs retrieves paginated records with users pre-loaded
// @Summary      Get audit logs
// @Description  Retrieves list of audit logs, optionally filtered by action
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action query     string  false  "Action, e.g. CREATE_PAYROLL"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), c.Query("action"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}

func (h *AuditHandler) GetNotificationSettings(c *gin.Context) {
	settings, err := h.settingService.GetNotificationSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, settings)
}

func (h *AuditHandler) UpdateNotificationSettings(c *gin.Context) {
	var req service.NotificationSettings
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.settingService.UpdateNotificationSettings(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, settings)
}
