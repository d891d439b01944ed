package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/datamodels/user"
)

// 统计周期
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Summary 后台首页汇总，金额与销量只统计已完成订单
type Summary struct {
	TotalBooks     int64                  `json:"total_books"`
	TotalUsers     int64                  `json:"total_users"`
	TotalOrders    int64                  `json:"total_orders"`
	OrdersByStatus map[order.Status]int64 `json:"orders_by_status"`
	Revenue        decimal.Decimal        `json:"revenue"`
	UnitsSold      int64                  `json:"units_sold"`
}

// PeriodSales 一个统计周期的销售数据
type PeriodSales struct {
	Start   time.Time       `json:"start"`
	Orders  int64           `json:"orders"`
	Units   int64           `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ReportService 后台只读统计
type ReportService struct {
	books  book.Repository
	users  user.Repository
	orders order.Repository
}

func NewReportService(books book.Repository, users user.Repository, orders order.Repository) *ReportService {
	return &ReportService{books: books, users: users, orders: orders}
}

func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.TotalBooks, err = s.books.Count(ctx); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	if sum.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if sum.OrdersByStatus, err = s.orders.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	for _, n := range sum.OrdersByStatus {
		sum.TotalOrders += n
	}
	if sum.Revenue, sum.UnitsSold, err = s.orders.CompletedTotals(ctx); err != nil {
		return nil, fmt.Errorf("completed totals: %w", err)
	}
	return &sum, nil
}

func (s *ReportService) SalesByBook(ctx context.Context, limit int) ([]order.BookSales, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.orders.SalesByBook(ctx, limit)
}

// SalesByPeriod 按天/周/月汇总 [from, to) 内创建的已完成订单，没有销售的周期也会返回
func (s *ReportService) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodSales, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = PeriodDay
	}
	if period != PeriodDay && period != PeriodWeek && period != PeriodMonth {
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: empty time range", ErrInvalidInput)
	}

	list, err := s.orders.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]*PeriodSales)
	for start := periodStart(from, period); start.Before(to); start = nextPeriod(start, period) {
		buckets[start] = &PeriodSales{Start: start, Revenue: decimal.Zero}
	}
	for _, o := range list {
		start := periodStart(o.CreatedAt.In(from.Location()), period)
		b, ok := buckets[start]
		if !ok {
			b = &PeriodSales{Start: start, Revenue: decimal.Zero}
			buckets[start] = b
		}
		b.Orders++
		b.Revenue = b.Revenue.Add(o.Total)
		for _, it := range o.Items {
			b.Units += it.Quantity
		}
	}

	out := make([]PeriodSales, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// LowStock 库存不高于阈值的图书
func (s *ReportService) LowStock(ctx context.Context, threshold int64) ([]*book.Book, error) {
	if threshold < 0 {
		threshold = 0
	}
	return s.books.ListLowStock(ctx, threshold)
}

// StockIssue 库存审计发现的问题
type StockIssue struct {
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// 库存问题类型
const (
	IssueNegativeStock = "negative_stock"
	IssueSoldMismatch  = "sold_mismatch"
)

// StockAudit 检查负库存，以及 sold 小于已完成订单销量的图书
func (s *ReportService) StockAudit(ctx context.Context) ([]StockIssue, error) {
	var issues []StockIssue

	negative, err := s.books.ListLowStock(ctx, -1)
	if err != nil {
		return nil, fmt.Errorf("list negative stock: %w", err)
	}
	for _, b := range negative {
		issues = append(issues, StockIssue{
			BookID: b.ID,
			Title:  b.Title,
			Kind:   IssueNegativeStock,
			Detail: fmt.Sprintf("stock is %d", b.Stock),
		})
	}

	sales, err := s.orders.SalesByBook(ctx, math.MaxInt32)
	if err != nil {
		return nil, fmt.Errorf("sales by book: %w", err)
	}
	ids := make([]int64, 0, len(sales))
	for _, row := range sales {
		ids = append(ids, row.BookID)
	}
	books, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	for _, row := range sales {
		b, ok := books[row.BookID]
		// 已删除的图书不参与比对
		if !ok || b.Sold >= row.Units {
			continue
		}
		issues = append(issues, StockIssue{
			BookID: b.ID,
			Title:  b.Title,
			Kind:   IssueSoldMismatch,
			Detail: fmt.Sprintf("sold %d is below %d units in completed orders", b.Sold, row.Units),
		})
	}
	return issues, nil
}

// periodStart 周从周一开始
func periodStart(t time.Time, period string) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func nextPeriod(t time.Time, period string) time.Time {
	switch period {
	case PeriodWeek:
		return t.AddDate(0, 0, 7)
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
