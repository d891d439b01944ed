package controllers

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"
	"github.com/shopspring/decimal"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/server/response"
	"github.com/example/bookstore/internal/service"
)

// BookController 前台图书目录（MVC）
// 路由在 internal/server/router.go 中通过 Iris MVC 挂载到 /api/books。
type BookController struct {
	Ctx         iris.Context
	BookService *service.BookService
}

// Get 处理 GET /api/books
func (c *BookController) Get() mvc.Result {
	f := FilterFromQuery(c.Ctx)
	list, total, err := c.BookService.List(c.Ctx.Request().Context(), f)
	if err != nil {
		return errorResult(err)
	}
	f.Normalize()
	return mvc.Response{Object: iris.Map{
		"code": 0,
		"data": iris.Map{
			"items":     list,
			"total":     total,
			"page":      f.Page,
			"page_size": f.PageSize,
		},
	}}
}

// GetBy 处理 GET /api/books/{id:int64}
func (c *BookController) GetBy(id int64) mvc.Result {
	b, err := c.BookService.Get(c.Ctx.Request().Context(), id)
	if err != nil {
		return errorResult(err)
	}
	return mvc.Response{Object: iris.Map{"code": 0, "data": b}}
}

func errorResult(err error) mvc.Result {
	status := response.StatusOf(err)
	msg := err.Error()
	if status == iris.StatusInternalServerError {
		msg = "internal server error"
	}
	return mvc.Response{Code: status, Object: iris.Map{"code": status, "msg": msg}}
}

// FilterFromQuery 解析列表查询参数
func FilterFromQuery(ctx iris.Context) book.Filter {
	f := book.Filter{
		Category: ctx.URLParam("category"),
		Keyword:  strings.TrimSpace(ctx.URLParam("q")),
		Language: ctx.URLParam("language"),
		AgeGroup: ctx.URLParam("age_group"),
		Sort:     ctx.URLParamDefault("sort", book.SortNewest),
		Page:     ctx.URLParamIntDefault("page", 1),
		PageSize: ctx.URLParamIntDefault("page_size", 12),
	}
	if ctx.URLParamExists("trending") {
		v, err := ctx.URLParamBool("trending")
		if err == nil {
			f.Trending = &v
		}
	}
	return f
}

// AdminBookController 后台图书维护
type AdminBookController struct {
	Books *service.BookService
}

func NewAdminBookController(books *service.BookService) *AdminBookController {
	return &AdminBookController{Books: books}
}

type bookRequest struct {
	Title       string           `json:"title"`
	Author      string           `json:"author"`
	Description string           `json:"description"`
	Categories  []string         `json:"categories"`
	OldPrice    decimal.Decimal  `json:"old_price"`
	NewPrice    *decimal.Decimal `json:"new_price"`
	Stock       int64            `json:"stock"`
	CoverImage  string           `json:"cover_image"`
	AgeGroups   []string         `json:"age_groups"`
	Languages   []string         `json:"languages"`
	Trending    bool             `json:"trending"`
}

func (r bookRequest) toBook() *book.Book {
	b := &book.Book{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Categories:  r.Categories,
		OldPrice:    r.OldPrice,
		Stock:       r.Stock,
		CoverImage:  r.CoverImage,
		AgeGroups:   r.AgeGroups,
		Languages:   r.Languages,
		Trending:    r.Trending,
	}
	if r.NewPrice != nil {
		b.NewPrice = decimal.NewNullDecimal(*r.NewPrice)
	}
	return b
}

// List GET /api/books，后台同样支持筛选分页
func (c *AdminBookController) List(ctx iris.Context) {
	f := FilterFromQuery(ctx)
	list, total, err := c.Books.List(ctx.Request().Context(), f)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, iris.Map{"items": list, "total": total})
}

// Create POST /api/books
func (c *AdminBookController) Create(ctx iris.Context) {
	var req bookRequest
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	b := req.toBook()
	if err := c.Books.Create(ctx.Request().Context(), middleware.CurrentActor(ctx), b); err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	response.OK(ctx, b)
}

// Update PUT /api/books/{id}
func (c *AdminBookController) Update(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	b := req.toBook()
	b.ID = id
	if err := c.Books.Update(ctx.Request().Context(), middleware.CurrentActor(ctx), b); err != nil {
		response.Error(ctx, err)
		return
	}
	updated, err := c.Books.Get(ctx.Request().Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, updated)
}

// Delete DELETE /api/books/{id}
func (c *AdminBookController) Delete(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.Books.Delete(ctx.Request().Context(), middleware.CurrentActor(ctx), id); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, iris.Map{"id": id})
}
