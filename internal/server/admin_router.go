package server

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"

	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/monitoring"
	"github.com/example/bookstore/internal/server/response"
	webcontrollers "github.com/example/bookstore/web/controllers"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, svcs *Services) {
	app.UseRouter(recover.New())
	app.UseGlobal(monitoring.HTTPMetrics("admin"))
	app.Get("/metrics", monitoring.Handler(svcs.Metrics))

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		response.OK(ctx, iris.Map{"status": "ok"})
	})

	userController := webcontrollers.NewUserController(svcs.Users)
	api.Post("/login", middleware.LoginRateLimit(), userController.AdminLogin)

	// 以下接口只对管理员开放
	admin := api.Party("/",
		middleware.Auth(svcs.TokenCache, svcs.JWT, svcs.Users),
		middleware.RequireAdmin())

	// ---------- 图书管理 ----------
	bookController := webcontrollers.NewAdminBookController(svcs.Books)
	admin.Get("/books", bookController.List)
	admin.Post("/books", bookController.Create)
	admin.Put("/books/{id:int64}", bookController.Update)
	admin.Delete("/books/{id:int64}", bookController.Delete)

	// ---------- 订单管理 ----------
	orderController := webcontrollers.NewOrderController(svcs.Orders)
	admin.Get("/orders", orderController.AdminList)
	admin.Get("/orders/{id:int64}", orderController.AdminGet)
	admin.Put("/orders/{id:int64}/status", orderController.AdminUpdateStatus)

	// ---------- 用户管理 ----------
	admin.Get("/users", userController.ListUsers)
	admin.Get("/users/{id:int64}/orders", orderController.AdminListByUser)
	admin.Put("/users/{id:int64}/role", userController.SetRole)

	// ---------- 统计与监控 ----------
	dashboard := webcontrollers.NewDashboardController(svcs.Reports, svcs.Visits, svcs.Logs)
	admin.Get("/dashboard/summary", dashboard.Summary)
	admin.Get("/dashboard/sales-by-book", dashboard.SalesByBook)
	admin.Get("/dashboard/sales", dashboard.Sales)
	admin.Get("/dashboard/low-stock", dashboard.LowStock)
	admin.Get("/visits", dashboard.VisitStats)
	admin.Get("/logs", dashboard.AuditLogs)
	admin.Get("/monitor/stats", dashboard.MonitorStats)
}
