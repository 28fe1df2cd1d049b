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

type EmployeeHandler struct {
	employeeService service.EmployeeService
	positionService service.PositionSalaryService
	guard           *middleware.Guard
}

func NewEmployeeHandler(employeeService service.EmployeeService, positionService service.PositionSalaryService, guard *middleware.Guard) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService, positionService: positionService, guard: guard}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleEmployees, a))
	}

	employees := router.Group("/employees")
	{
		employees.GET("", perm(model.ActionView), h.ListEmployees)
		employees.GET("/:id", perm(model.ActionView), h.GetEmployee)
		employees.POST("", perm(model.ActionCreate), h.CreateEmployee)
		employees.PUT("/:id", perm(model.ActionUpdate), h.UpdateEmployee)
		employees.DELETE("/:id", perm(model.ActionDelete), h.DeleteEmployee)
	}

	positions := router.Group("/position-salaries")
	{
		positions.GET("", h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, model.ActionView)), h.ListPositions)
		positions.GET("/:id", h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, model.ActionView)), h.GetPosition)
		positions.POST("", h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, model.ActionManage)), h.CreatePosition)
		positions.PUT("/:id", h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, model.ActionManage)), h.UpdatePosition)
		positions.DELETE("/:id", h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, model.ActionManage)), h.DeletePosition)
	}
}

// ListEmployees returns a page of employees
// @Summary      List employees
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        search       query  string  false  "Name contains"
// @Param        position     query  string  false  "Position"
// @Param        active_only  query  bool    false  "Only active employees"
// @Success      200  {object}  response.Response{data=[]model.Employee}
// @Router       /api/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	p := pagination.Parse(c)
	employees, total, err := h.employeeService.ListEmployees(c.Request.Context(), service.EmployeeListQuery{
		Search:     p.Search,
		Position:   c.Query("position"),
		ActiveOnly: queryBool(c, "active_only"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, employees, p.Page, p.Limit, total))
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	e, err := h.employeeService.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, e)
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req service.EmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, e)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req service.EmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.employeeService.UpdateEmployee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, e)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Employee deleted successfully"})
}

func (h *EmployeeHandler) ListPositions(c *gin.Context) {
	positions, err := h.positionService.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, positions)
}

func (h *EmployeeHandler) GetPosition(c *gin.Context) {
	ps, err := h.positionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, ps)
}

// CreatePosition adds a rate table row
// @Summary      Create position salary
// @Tags         payroll
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PositionSalaryRequest  true  "Rates"
// @Success      201      {object}  response.Response{data=model.PositionSalary}
// @Router       /api/position-salaries [post]
func (h *EmployeeHandler) CreatePosition(c *gin.Context) {
	var req service.PositionSalaryRequest
	if !bindJSON(c, &req) {
		return
	}
	ps, err := h.positionService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, ps)
}

func (h *EmployeeHandler) UpdatePosition(c *gin.Context) {
	var req service.PositionSalaryRequest
	if !bindJSON(c, &req) {
		return
	}
	ps, err := h.positionService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, ps)
}

func (h *EmployeeHandler) DeletePosition(c *gin.Context) {
	if err := h.positionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Position salary deleted successfully"})
}
