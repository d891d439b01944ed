package controllers

import (
	"fmt"

	"github.com/kataras/iris/v12"

	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/server/response"
	"github.com/example/bookstore/internal/service"
)

// OrderController 订单接口，前台只能访问自己的订单
type OrderController struct {
	Orders *service.OrderService
}

func NewOrderController(orders *service.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// Checkout POST /api/orders
func (c *OrderController) Checkout(ctx iris.Context) {
	var req struct {
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	// 允许空 body
	if ctx.GetContentLength() > 0 {
		if err := ctx.ReadJSON(&req); err != nil {
			response.Fail(ctx, iris.StatusBadRequest, err.Error())
			return
		}
	}
	o, err := c.Orders.Checkout(ctx.Request().Context(), middleware.UserID(ctx),
		service.CheckoutRequest{Address: req.Address, Phone: req.Phone})
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	response.OK(ctx, o)
}

// List GET /api/orders
func (c *OrderController) List(ctx iris.Context) {
	list, err := c.Orders.ListByUser(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

// Get GET /api/orders/{id}
func (c *OrderController) Get(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	o, err := c.Orders.GetForUser(ctx.Request().Context(), middleware.UserID(ctx), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, o)
}

// Receive POST /api/orders/{id}/receive 确认收货
func (c *OrderController) Receive(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	o, err := c.Orders.Receive(ctx.Request().Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, o)
}

// Cancel POST /api/orders/{id}/cancel
func (c *OrderController) Cancel(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	o, err := c.Orders.Cancel(ctx.Request().Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, o)
}

// AdminList GET /api/orders?status=&limit=
func (c *OrderController) AdminList(ctx iris.Context) {
	q := order.Query{Limit: ctx.URLParamIntDefault("limit", 50)}
	if raw := ctx.URLParam("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			response.Error(ctx, fmt.Errorf("%w: %v", service.ErrInvalidStatus, err))
			return
		}
		q.Status = st
	}
	list, err := c.Orders.List(ctx.Request().Context(), q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

// AdminGet GET /api/orders/{id}
func (c *OrderController) AdminGet(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	o, err := c.Orders.Get(ctx.Request().Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, o)
}

// AdminUpdateStatus PUT /api/orders/{id}/status {"status":"Complete"}
func (c *OrderController) AdminUpdateStatus(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	st, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Error(ctx, fmt.Errorf("%w: %v", service.ErrInvalidStatus, err))
		return
	}
	o, err := c.Orders.AdminTransition(ctx.Request().Context(), middleware.CurrentActor(ctx), id, st)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, o)
}

// AdminListByUser GET /api/users/{id}/orders
func (c *OrderController) AdminListByUser(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	list, err := c.Orders.ListByUser(ctx.Request().Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

func pathID(ctx iris.Context, name string) (int64, bool) {
	id, err := ctx.Params().GetInt64(name)
	if err != nil || id <= 0 {
		response.Fail(ctx, iris.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
