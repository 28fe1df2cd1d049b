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

type TransactionHandler struct {
	transactionService service.TransactionService
	guard              *middleware.Guard
}

func NewTransactionHandler(transactionService service.TransactionService, guard *middleware.Guard) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, guard: guard}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleTransactions, a))
	}

	trx := router.Group("/transactions")
	{
		trx.GET("", perm(model.ActionView), h.List)
		trx.GET("/:id", perm(model.ActionView), h.Get)
		trx.GET("/:id/receipt", perm(model.ActionPrint), h.Receipt)
		trx.POST("", perm(model.ActionCreate), h.Create)
		trx.POST("/:id/refund", perm(model.ActionManage), h.Refund)
		trx.POST("/:id/cancel", perm(model.ActionManage), h.Cancel)
	}
}

// Create records a point of sale transaction
// @Summary      Create transaction
// @Description  Prices service and product lines, deducts stock and stores the sale
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTransactionRequest  true  "Sale"
// @Success      201      {object}  response.Response{data=model.Transaction}
// @Failure      400      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req service.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	trx, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, trx)
}

// List returns a page of transactions
// @Summary      List transactions
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        status       query  string  false  "paid, refunded, cancelled"
// @Param        customer_id  query  string  false  "Customer ID"
// @Param        from         query  string  false  "YYYY-MM-DD"
// @Param        to           query  string  false  "YYYY-MM-DD"
// @Param        search       query  string  false  "Code or plate number"
// @Success      200  {object}  response.Response{data=[]model.Transaction}
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	rows, total, err := h.transactionService.ListTransactions(c.Request.Context(), service.TransactionListQuery{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Search:     p.Search,
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rows, p.Page, p.Limit, total))
}

func (h *TransactionHandler) Get(c *gin.Context) {
	trx, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, trx)
}

// Receipt returns the transaction for printing; it needs transactions:print instead of view.
func (h *TransactionHandler) Receipt(c *gin.Context) {
	h.Get(c)
}

func (h *TransactionHandler) Refund(c *gin.Context) {
	var req service.VoidTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	trx, err := h.transactionService.RefundTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, trx)
}

func (h *TransactionHandler) Cancel(c *gin.Context) {
	var req service.VoidTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	trx, err := h.transactionService.CancelTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, trx)
}
