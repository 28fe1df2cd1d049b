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

type ExpenseHandler struct {
	expenseService service.ExpenseService
	guard          *middleware.Guard
}

func NewExpenseHandler(expenseService service.ExpenseService, guard *middleware.Guard) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, guard: guard}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleExpenses, a))
	}

	expenses := router.Group("/expenses")
	{
		expenses.GET("", perm(model.ActionView), h.GetExpenses)
		expenses.GET("/:id", perm(model.ActionView), h.GetExpense)
		expenses.POST("", perm(model.ActionCreate), h.CreateExpense)
		expenses.PUT("/:id", perm(model.ActionUpdate), h.UpdateExpense)
		expenses.DELETE("/:id", perm(model.ActionDelete), h.DeleteExpense)
	}
}

// GetExpenses returns expense entries filtered by category and date
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	p := pagination.Parse(c)
	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), service.ExpenseListQuery{
		Category: c.Query("category"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, expenses, p.Page, p.Limit, total))
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, expense)
}

// CreateExpense handles expense creation
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	created(c, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, expense)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Expense deleted successfully"})
}
