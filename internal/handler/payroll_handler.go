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

type PayrollHandler struct {
	payrollService service.PayrollService
	guard          *middleware.Guard
}

func NewPayrollHandler(payrollService service.PayrollService, guard *middleware.Guard) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, guard: guard}
}

func (h *PayrollHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModulePayroll, a))
	}

	payroll := router.Group("/payroll")
	{
		payroll.GET("", perm(model.ActionView), h.ListPayrolls)
		payroll.GET("/:id", perm(model.ActionView), h.GetPayroll)
		payroll.POST("", perm(model.ActionCreate), h.CreatePayroll)
		payroll.PATCH("/:id/status", perm(model.ActionApprove), h.UpdateStatus)
		payroll.DELETE("/:id", perm(model.ActionDelete), h.DeletePayroll)
	}
}

// CreatePayroll computes and stores a payroll for one employee and period
// @Summary      Create payroll
// @Description  Computes base salary from the position rate table and attendance, then stores the record
// @Tags         payroll
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePayrollRequest  true  "Payroll input"
// @Success      201      {object}  response.Response{data=model.Payroll}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response "Employee not found"
// @Failure      409      {object}  response.Response "Payroll already exists for the period"
// @Failure      500      {object}  response.Response
// @Router       /api/payroll [post]
func (h *PayrollHandler) CreatePayroll(c *gin.Context) {
	var req service.CreatePayrollRequest
	if !bindJSON(c, &req) {
		return
	}

	payroll, err := h.payrollService.ComputePayroll(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, payroll)
}

// ListPayrolls returns a page of payrolls
// @Summary      List payrolls
// @Tags         payroll
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query  string  false  "Employee ID"
// @Param        status       query  string  false  "pending, paid, cancelled"
// @Param        from         query  string  false  "Period start from (YYYY-MM-DD)"
// @Param        to           query  string  false  "Period end to (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=[]model.Payroll}
// @Router       /api/payroll [get]
func (h *PayrollHandler) ListPayrolls(c *gin.Context) {
	p := pagination.Parse(c)
	payrolls, total, err := h.payrollService.ListPayrolls(c.Request.Context(), service.PayrollListQuery{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, payrolls, p.Page, p.Limit, total))
}

func (h *PayrollHandler) GetPayroll(c *gin.Context) {
	payroll, err := h.payrollService.GetPayroll(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, payroll)
}

func (h *PayrollHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdatePayrollStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	payroll, err := h.payrollService.UpdatePayrollStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, payroll)
}

func (h *PayrollHandler) DeletePayroll(c *gin.Context) {
	if err := h.payrollService.DeletePayroll(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Payroll deleted successfully"})
}
