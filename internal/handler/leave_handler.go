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

type LeaveHandler struct {
	leaveService    service.LeaveService
	trainingService service.TrainingService
	guard           *middleware.Guard
}

func NewLeaveHandler(leaveService service.LeaveService, trainingService service.TrainingService, guard *middleware.Guard) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService, trainingService: trainingService, guard: guard}
}

func (h *LeaveHandler) RegisterRoutes(router *gin.RouterGroup) {
	leave := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleLeave, a))
	}
	training := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleTraining, a))
	}

	leaves := router.Group("/leaves")
	{
		leaves.GET("", leave(model.ActionView), h.ListLeaves)
		leaves.GET("/:id", leave(model.ActionView), h.GetLeave)
		leaves.POST("", leave(model.ActionCreate), h.CreateLeave)
		leaves.POST("/:id/review", leave(model.ActionApprove), h.ReviewLeave)
	}

	trainings := router.Group("/trainings")
	{
		trainings.GET("", training(model.ActionView), h.ListTrainings)
		trainings.GET("/:id", training(model.ActionView), h.GetTraining)
		trainings.POST("", training(model.ActionCreate), h.CreateTraining)
		trainings.PUT("/:id", training(model.ActionUpdate), h.UpdateTraining)
		trainings.DELETE("/:id", training(model.ActionDelete), h.DeleteTraining)
	}
}

func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	p := pagination.Parse(c)
	leaves, total, err := h.leaveService.ListLeaves(c.Request.Context(), c.Query("employee_id"), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, leaves, p.Page, p.Limit, total))
}

func (h *LeaveHandler) GetLeave(c *gin.Context) {
	l, err := h.leaveService.GetLeave(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, l)
}

func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	var req service.CreateLeaveRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.leaveService.CreateLeave(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, l)
}

// ReviewLeave approves or rejects a pending leave request
// @Summary      Review leave
// @Tags         leave
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Leave ID"
// @Param        payload  body      service.ReviewLeaveRequest  true  "Decision"
// @Success      200      {object}  response.Response{data=model.LeaveRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/leaves/{id}/review [post]
func (h *LeaveHandler) ReviewLeave(c *gin.Context) {
	var req service.ReviewLeaveRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.leaveService.ReviewLeave(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, l)
}

func (h *LeaveHandler) ListTrainings(c *gin.Context) {
	p := pagination.Parse(c)
	trainings, total, err := h.trainingService.ListTrainings(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, trainings, p.Page, p.Limit, total))
}

func (h *LeaveHandler) GetTraining(c *gin.Context) {
	t, err := h.trainingService.GetTraining(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, t)
}

func (h *LeaveHandler) CreateTraining(c *gin.Context) {
	var req service.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.trainingService.CreateTraining(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, t)
}

func (h *LeaveHandler) UpdateTraining(c *gin.Context) {
	var req service.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.trainingService.UpdateTraining(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, t)
}

func (h *LeaveHandler) DeleteTraining(c *gin.Context) {
	if err := h.trainingService.DeleteTraining(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Training deleted successfully"})
}
