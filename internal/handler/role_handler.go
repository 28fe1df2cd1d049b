package handler

import (
	"carwash/internal/middleware"
	"carwash/internal/model"
	"carwash/internal/service"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
	guard       *middleware.Guard
}

func NewRoleHandler(roleService service.RoleService, guard *middleware.Guard) *RoleHandler {
	return &RoleHandler{roleService: roleService, guard: guard}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := h.guard.RequirePermission(model.PermissionName(model.ModuleRoles, model.ActionView))
	manage := h.guard.RequirePermission(model.PermissionName(model.ModuleRoles, model.ActionManage))

	roles := router.Group("/roles")
	{
		roles.GET("", view, h.ListRoles)
		roles.GET("/:id", view, h.GetRole)
		roles.POST("", manage, h.CreateRole)
		roles.PUT("/:id", manage, h.UpdateRole)
		roles.DELETE("/:id", manage, h.DeleteRole)
		roles.GET("/:id/permissions", view, h.GetRolePermissions)
		roles.PUT("/:id/permissions", manage, h.SetRolePermissions)
		roles.POST("/:id/permissions", manage, h.GrantPermission)
	}

	router.DELETE("/role-permissions/:id", manage, h.RevokePermission)
	router.GET("/permissions", view, h.ListPermissions)
	router.POST("/roles-seed", h.guard.RequireRole(model.RoleAdmin), h.Seed)
}

// ListRoles returns all roles with their permissions
// @Summary      List roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, roles)
}

// GetRole returns a single role by ID
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, role)
}

// CreateRole creates a new custom role
// @Summary      Create role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRoleRequest  true  "Role"
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, role)
}

// UpdateRole updates a role's name and description
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, role)
}

// DeleteRole deletes a custom role
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roleService.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Role deleted successfully"})
}

// ListPermissions returns all permissions, optionally filtered by ?module=
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.roleService.ListPermissions(c.Request.Context(), c.Query("module"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, perms)
}

// GetRolePermissions lists a role's grants; grant_id feeds DELETE /role-permissions/{id}
// @Summary      List role grants
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.RolePermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id}/permissions [get]
func (h *RoleHandler) GetRolePermissions(c *gin.Context) {
	perms, err := h.roleService.GetRolePermissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, perms)
}

// SetRolePermissions replaces all permissions for a role
func (h *RoleHandler) SetRolePermissions(c *gin.Context) {
	var req service.SetRolePermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.SetRolePermissions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, role)
}

func (h *RoleHandler) GrantPermission(c *gin.Context) {
	var req service.GrantPermissionRequest
	if !bindJSON(c, &req) {
		return
	}

	grant, err := h.roleService.GrantPermission(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, grant)
}

func (h *RoleHandler) RevokePermission(c *gin.Context) {
	if err := h.roleService.RevokePermission(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Permission revoked"})
}

type seedResult struct {
	RolesCreated       int            `json:"roles_created"`
	PermissionsCreated int            `json:"permissions_created"`
	Grants             map[string]int `json:"grants"`
	Warnings           []string       `json:"warnings"`
	Errors             []string       `json:"errors"`
}

// Seed re-runs the default role and permission seeder
// @Summary      Seed default roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=seedResult}
// @Router       /api/roles-seed [post]
func (h *RoleHandler) Seed(c *gin.Context) {
	report := h.roleService.SeedDefaultRolesAndPermissions(c.Request.Context(), service.DefaultSeedPlan())

	res := seedResult{
		RolesCreated:       report.RolesCreated,
		PermissionsCreated: report.PermissionsCreated,
		Grants:             report.Grants,
		Warnings:           report.Warnings,
		Errors:             make([]string, 0, len(report.Errors)),
	}
	for _, err := range report.Errors {
		res.Errors = append(res.Errors, err.Error())
	}
	ok(c, res)
}
