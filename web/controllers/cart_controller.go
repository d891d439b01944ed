package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/server/response"
	"github.com/example/bookstore/internal/service"
)

// CartController 购物车与收藏夹
type CartController struct {
	Cart     *service.CartService
	Wishlist *service.WishlistService
}

func NewCartController(cart *service.CartService, wishlist *service.WishlistService) *CartController {
	return &CartController{Cart: cart, Wishlist: wishlist}
}

type cartItemRequest struct {
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

// List GET /api/cart
func (c *CartController) List(ctx iris.Context) {
	items, err := c.Cart.List(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, items)
}

// Add POST /api/cart {"book_id":1,"quantity":2}
func (c *CartController) Add(ctx iris.Context) {
	var req cartItemRequest
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := c.Cart.Add(ctx.Request().Context(), middleware.UserID(ctx), req.BookID, req.Quantity); err != nil {
		response.Error(ctx, err)
		return
	}
	c.List(ctx)
}

// Update PUT /api/cart/{bookID} {"quantity":3}，数量为 0 时移除
func (c *CartController) Update(ctx iris.Context) {
	bookID, ok := pathID(ctx, "bookID")
	if !ok {
		return
	}
	var req cartItemRequest
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if err := c.Cart.Update(ctx.Request().Context(), middleware.UserID(ctx), bookID, req.Quantity); err != nil {
		response.Error(ctx, err)
		return
	}
	c.List(ctx)
}

// Remove DELETE /api/cart/{bookID}
func (c *CartController) Remove(ctx iris.Context) {
	bookID, ok := pathID(ctx, "bookID")
	if !ok {
		return
	}
	if err := c.Cart.Remove(ctx.Request().Context(), middleware.UserID(ctx), bookID); err != nil {
		response.Error(ctx, err)
		return
	}
	c.List(ctx)
}

// Clear DELETE /api/cart
func (c *CartController) Clear(ctx iris.Context) {
	if err := c.Cart.Clear(ctx.Request().Context(), middleware.UserID(ctx)); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, []interface{}{})
}

// ListWishlist GET /api/wishlist
func (c *CartController) ListWishlist(ctx iris.Context) {
	books, err := c.Wishlist.List(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, books)
}

// AddWishlist POST /api/wishlist/{bookID}
func (c *CartController) AddWishlist(ctx iris.Context) {
	bookID, ok := pathID(ctx, "bookID")
	if !ok {
		return
	}
	if err := c.Wishlist.Add(ctx.Request().Context(), middleware.UserID(ctx), bookID); err != nil {
		response.Error(ctx, err)
		return
	}
	c.ListWishlist(ctx)
}

// RemoveWishlist DELETE /api/wishlist/{bookID}
func (c *CartController) RemoveWishlist(ctx iris.Context) {
	bookID, ok := pathID(ctx, "bookID")
	if !ok {
		return
	}
	if err := c.Wishlist.Remove(ctx.Request().Context(), middleware.UserID(ctx), bookID); err != nil {
		response.Error(ctx, err)
		return
	}
	c.ListWishlist(ctx)
}
