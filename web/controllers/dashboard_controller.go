package controllers

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/bookstore/internal/server/response"
	"github.com/example/bookstore/internal/service"
)

// DashboardController 后台统计、访问量、操作日志与监控
type DashboardController struct {
	Reports *service.ReportService
	Visits  *service.VisitService
	Logs    *service.LogService
}

func NewDashboardController(reports *service.ReportService, visits *service.VisitService, logs *service.LogService) *DashboardController {
	return &DashboardController{Reports: reports, Visits: visits, Logs: logs}
}

// Summary GET /api/dashboard/summary
func (c *DashboardController) Summary(ctx iris.Context) {
	sum, err := c.Reports.Summary(ctx.Request().Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, sum)
}

// SalesByBook GET /api/dashboard/sales-by-book?limit=10
func (c *DashboardController) SalesByBook(ctx iris.Context) {
	rows, err := c.Reports.SalesByBook(ctx.Request().Context(), ctx.URLParamIntDefault("limit", 10))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, rows)
}

// Sales GET /api/dashboard/sales?period=day&days=30
func (c *DashboardController) Sales(ctx iris.Context) {
	days := ctx.URLParamIntDefault("days", 30)
	if days <= 0 || days > 366 {
		days = 30
	}
	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -days)
	rows, err := c.Reports.SalesByPeriod(ctx.Request().Context(), ctx.URLParamDefault("period", service.PeriodDay), from, to)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, rows)
}

// LowStock GET /api/dashboard/low-stock?threshold=5
func (c *DashboardController) LowStock(ctx iris.Context) {
	list, err := c.Reports.LowStock(ctx.Request().Context(), ctx.URLParamInt64Default("threshold", 5))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

// VisitStats GET /api/visits?days=7
func (c *DashboardController) VisitStats(ctx iris.Context) {
	rows, err := c.Visits.Recent(ctx.Request().Context(), ctx.URLParamIntDefault("days", 7))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, rows)
}

// AuditLogs GET /api/logs?action=order.complete&limit=50
func (c *DashboardController) AuditLogs(ctx iris.Context) {
	list, err := c.Logs.List(ctx.Request().Context(), ctx.URLParam("action"), ctx.URLParamIntDefault("limit", 50))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

// MonitorStats GET /api/monitor/stats
func (c *DashboardController) MonitorStats(ctx iris.Context) {
	response.OK(ctx, service.GetMonitor().GetStats())
}
