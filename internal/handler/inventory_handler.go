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

type InventoryHandler struct {
	inventoryService service.InventoryService
	guard            *middleware.Guard
}

func NewInventoryHandler(inventoryService service.InventoryService, guard *middleware.Guard) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, guard: guard}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleInventory, a))
	}

	inventory := router.Group("/inventory")
	{
		inventory.GET("", perm(model.ActionView), h.ListItems)
		inventory.GET("/low-stock", perm(model.ActionView), h.ListLowStock)
		inventory.GET("/:id", perm(model.ActionView), h.GetItem)
		inventory.GET("/:id/movements", perm(model.ActionView), h.ListMovements)
		inventory.POST("", perm(model.ActionCreate), h.CreateItem)
		inventory.PUT("/:id", perm(model.ActionUpdate), h.UpdateItem)
		inventory.POST("/:id/adjust", perm(model.ActionManage), h.AdjustStock)
		inventory.DELETE("/:id", perm(model.ActionDelete), h.DeleteItem)
	}
}

// ListItems handles retrieving paginated stock levels
// @Summary      List inventory items
// @Description  Retrieves a paginated list of items with current stock
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Search by name or SKU"
// @Success      200    {object}  response.Response{data=[]model.InventoryItem}
// @Failure      500    {object}  response.Response
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.inventoryService.ListItems(c.Request.Context(), p.Search, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, items, p.Page, p.Limit, total))
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, items)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventoryService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, item)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	p := pagination.Parse(c)
	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), c.Param("id"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, movements, p.Page, p.Limit, total))
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.InventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.CreateItem(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, item)
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req service.InventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, item)
}

// AdjustStock records a stock movement
// @Summary      Adjust stock
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Item ID"
// @Param        payload  body      service.AdjustStockRequest  true  "Movement"
// @Success      200      {object}  response.Response{data=model.InventoryItem}
// @Failure      400      {object}  response.Response "Insufficient stock"
// @Router       /api/inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.AdjustStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, item)
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if err := h.inventoryService.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Item deleted successfully"})
}
