package handler

import (
	"time"

	"carwash/internal/middleware"
	"carwash/internal/model"
	"carwash/internal/service"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	financeService    service.FinanceService
	guard             *middleware.Guard
	now               func() time.Time
}

func NewStatisticsHandler(statisticsService service.StatisticsService, financeService service.FinanceService, guard *middleware.Guard) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, financeService: financeService, guard: guard, now: time.Now}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.guard.RequirePermission(model.PermissionName(model.ModuleDashboard, model.ActionView)), h.Dashboard)
	router.GET("/statistics", h.guard.RequirePermission(model.PermissionName(model.ModuleReports, model.ActionView)), h.GetStatistics)
	router.GET("/finance/profit-loss", h.guard.RequirePermission(model.PermissionName(model.ModuleFinance, model.ActionView)), h.ProfitLoss)
}

// dateRange reads start_date and end_date, defaulting to the current month up to today.
func (h *StatisticsHandler) dateRange(c *gin.Context) (string, string) {
	now := h.now()
	start := c.DefaultQuery("start_date", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"))
	end := c.DefaultQuery("end_date", now.Format("2006-01-02"))
	return start, end
}

// @Summary      Dashboard
// @Description  Today's sales, active staff, low stock count and top services
// @Tags         Statistics
// @Produce      json
// @Success      200 {object} response.Response{data=service.DashboardResponse}
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	res, err := h.statisticsService.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, res)
}

// @Summary      Get Statistics
// @Description  Sales totals, average ticket and top ranked services bounded by date
// @Tags         Statistics
// @Produce      json
// @Param        start_date query string false "Start Date (YYYY-MM-DD)"
// @Param        end_date   query string false "End Date (YYYY-MM-DD)"
// @Success      200 {object} response.Response{data=service.StatisticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	start, end := h.dateRange(c)
	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, stats)
}

// @Summary      Profit and loss
// @Description  Revenue, expenses and payroll per period with net profit
// @Tags         Finance
// @Produce      json
// @Param        start_date query string false "Start Date (YYYY-MM-DD)"
// @Param        end_date   query string false "End Date (YYYY-MM-DD)"
// @Param        group_by   query string false "day, week or month"
// @Success      200 {object} response.Response{data=service.ProfitLossReport}
// @Security     BearerAuth
// @Router       /api/finance/profit-loss [get]
func (h *StatisticsHandler) ProfitLoss(c *gin.Context) {
	start, end := h.dateRange(c)
	report, err := h.financeService.ProfitLoss(c.Request.Context(), start, end, c.Query("group_by"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, report)
}
