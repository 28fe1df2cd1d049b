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

type AttendanceHandler struct {
	attendanceService service.AttendanceService
	guard             *middleware.Guard
}

func NewAttendanceHandler(attendanceService service.AttendanceService, guard *middleware.Guard) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService, guard: guard}
}

func (h *AttendanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	perm := func(a model.Action) gin.HandlerFunc {
		return h.guard.RequirePermission(model.PermissionName(model.ModuleAttendance, a))
	}

	attendance := router.Group("/attendance")
	{
		attendance.GET("", perm(model.ActionView), h.List)
		attendance.POST("", perm(model.ActionCreate), h.Record)
		attendance.POST("/check-in", perm(model.ActionCreate), h.CheckIn)
		attendance.POST("/check-out", perm(model.ActionCreate), h.CheckOut)
		attendance.PUT("/:id", perm(model.ActionUpdate), h.Update)
		attendance.DELETE("/:id", perm(model.ActionDelete), h.Delete)
	}
}

// List returns attendance rows filtered by employee, status and date range
// @Summary      List attendance
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query  string  false  "Employee ID"
// @Param        status       query  string  false  "present, absent, late, leave, sick"
// @Param        from         query  string  false  "YYYY-MM-DD"
// @Param        to           query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  response.Response{data=[]model.Attendance}
// @Router       /api/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	rows, total, err := h.attendanceService.ListAttendance(c.Request.Context(), service.AttendanceListQuery{
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
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rows, p.Page, p.Limit, total))
}

func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendanceService.Record(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, a)
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req service.CheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendanceService.CheckIn(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, a)
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req service.CheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendanceService.CheckOut(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, a)
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	var req service.UpdateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendanceService.UpdateAttendance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, a)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendanceService.DeleteAttendance(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "Attendance deleted successfully"})
}
