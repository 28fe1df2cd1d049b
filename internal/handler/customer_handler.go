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

type CustomerHandler struct {
	customerService service.CustomerService
	catalogService  service.CatalogService
	guard           *middleware.Guard
}

func NewCustomerHandler(customerService service.CustomerService, catalogService service.CatalogService, guard *middleware.Guard) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, catalogService: catalogService, guard: guard}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customer := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleCustomers, a))
	}
	catalog := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleServices, a))
	}

	customers := router.Group("/customers")
	{
		customers.GET("", customer(model.ActionView), h.ListCustomers)
		customers.GET("/:id", customer(model.ActionView), h.GetCustomer)
		customers.POST("", customer(model.ActionCreate), h.CreateCustomer)
		customers.PUT("/:id", customer(model.ActionUpdate), h.UpdateCustomer)
		customers.DELETE("/:id", customer(model.ActionDelete), h.DeleteCustomer)
	}

	services := router.Group("/services")
	{
		services.GET("", catalog(model.ActionView), h.ListServices)
		services.GET("/:id", catalog(model.ActionView), h.GetService)
		services.POST("", catalog(model.ActionCreate), h.CreateService)
		services.PUT("/:id", catalog(model.ActionUpdate), h.UpdateService)
		services.DELETE("/:id", catalog(model.ActionDelete), h.DeleteService)
	}
}

// ListCustomers returns a page of customers with their vehicles
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Name, phone or plate number"
// @Success      200  {object}  response.Response{data=[]model.Customer}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)
	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), p.Search, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, customers, p.Page, p.Limit, total))
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, customer)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, customer)
}

// UpdateCustomer replaces the customer's details and vehicle list
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Customer deleted successfully"})
}

// ListServices returns the wash service catalog
// @Summary      List wash services
// @Tags         services
// @Security     BearerAuth
// @Produce      json
// @Param        vehicle_type  query  string  false  "car, motorcycle, truck"
// @Param        active_only   query  bool    false  "Only active services"
// @Success      200  {object}  response.Response{data=[]model.WashService}
// @Router       /api/services [get]
func (h *CustomerHandler) ListServices(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context(), c.Query("vehicle_type"), queryBool(c, "active_only"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, services)
}

func (h *CustomerHandler) GetService(c *gin.Context) {
	svc, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, svc)
}

func (h *CustomerHandler) CreateService(c *gin.Context) {
	var req service.WashServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalogService.CreateService(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, svc)
}

func (h *CustomerHandler) UpdateService(c *gin.Context) {
	var req service.WashServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalogService.UpdateService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, svc)
}

func (h *CustomerHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Service deleted successfully"})
}
