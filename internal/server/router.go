package server

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/kataras/iris/v12/mvc"

	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/monitoring"
	"github.com/example/bookstore/internal/server/response"
	webcontrollers "github.com/example/bookstore/web/controllers"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, svcs *Services) {
	app.UseRouter(recover.New())
	app.UseGlobal(monitoring.HTTPMetrics("web"))
	app.Get("/metrics", monitoring.Handler(svcs.Metrics))

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		response.OK(ctx, iris.Map{"status": "ok"})
	})

	userController := webcontrollers.NewUserController(svcs.Users)
	api.Post("/register", middleware.LoginRateLimit(), userController.Register)
	api.Post("/login", middleware.LoginRateLimit(), userController.Login)
	api.Post("/logout", userController.Logout)

	// 图书目录无需登录，浏览计入访问量
	books := mvc.New(api.Party("/books", middleware.Visits(svcs.Visits)))
	books.Register(svcs.Books)
	books.Handle(new(webcontrollers.BookController))

	// 需要登录的接口
	authAPI := api.Party("/", middleware.Auth(svcs.TokenCache, svcs.JWT, svcs.Users))

	authAPI.Get("/profile", userController.Profile)
	authAPI.Put("/profile", userController.UpdateProfile)

	cartController := webcontrollers.NewCartController(svcs.Cart, svcs.Wishlist)
	authAPI.Get("/cart", cartController.List)
	authAPI.Post("/cart", cartController.Add)
	authAPI.Delete("/cart", cartController.Clear)
	authAPI.Put("/cart/{bookID:int64}", cartController.Update)
	authAPI.Delete("/cart/{bookID:int64}", cartController.Remove)

	authAPI.Get("/wishlist", cartController.ListWishlist)
	authAPI.Post("/wishlist/{bookID:int64}", cartController.AddWishlist)
	authAPI.Delete("/wishlist/{bookID:int64}", cartController.RemoveWishlist)

	orderController := webcontrollers.NewOrderController(svcs.Orders)
	authAPI.Post("/orders", middleware.CheckoutRateLimit(), orderController.Checkout)
	authAPI.Get("/orders", orderController.List)
	authAPI.Get("/orders/{id:int64}", orderController.Get)
	authAPI.Post("/orders/{id:int64}/receive", orderController.Receive)
	authAPI.Post("/orders/{id:int64}/cancel", orderController.Cancel)
}
