package service

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/bookstore/internal/auth"
	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/datamodels/user"
	"github.com/example/bookstore/internal/infra/mq"
	"github.com/example/bookstore/internal/repository/mysql"
	"github.com/example/bookstore/internal/testutil"
)

func TestCartNeverTouchesStock(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(mysql.NewCartRepository(db), mysql.NewBookRepository(db))
	u := testutil.MustUser(t, db, "cart", "user")
	b := testutil.MustBook(t, db, "Cart", "3.00", 2, 0)

	require.NoError(t, svc.Add(ctx, u.ID, b.ID, 1))
	require.NoError(t, svc.Add(ctx, u.ID, b.ID, 4))
	items, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	require.NotNil(t, items[0].Book)
	assert.Equal(t, "Cart", items[0].Book.Title)
	assert.Equal(t, int64(2), testutil.ReloadBook(t, db, b.ID).Stock)

	require.NoError(t, svc.Update(ctx, u.ID, b.ID, 2))
	items, _ = svc.List(ctx, u.ID)
	assert.Equal(t, int64(2), items[0].Quantity)

	require.NoError(t, svc.Update(ctx, u.ID, b.ID, 0))
	items, _ = svc.List(ctx, u.ID)
	assert.Empty(t, items)

	assert.ErrorIs(t, svc.Add(ctx, u.ID, b.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.Add(ctx, u.ID, 404, 1), ErrBookNotFound)
	assert.ErrorIs(t, svc.Update(ctx, u.ID, b.ID, 3), ErrNotFound)
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewWishlistService(mysql.NewWishlistRepository(db), mysql.NewBookRepository(db))
	u := testutil.MustUser(t, db, "wish", "user")
	b := testutil.MustBook(t, db, "Wish", "3.00", 2, 0)

	require.NoError(t, svc.Add(ctx, u.ID, b.ID))
	require.NoError(t, svc.Add(ctx, u.ID, b.ID))
	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	require.NoError(t, svc.Remove(ctx, u.ID, b.ID))
	list, _ = svc.List(ctx, u.ID)
	assert.Empty(t, list)
	assert.ErrorIs(t, svc.Add(ctx, u.ID, 404), ErrNotFound)
}

func TestBookServiceValidationAndAudit(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	logs := NewLogService(mysql.NewAuditLogRepository(db))
	svc := NewBookService(mysql.NewBookRepository(db), logs)
	admin := Actor{UserID: 1, Username: "root", Admin: true}

	bad := []*book.Book{
		{Author: "x", OldPrice: decimal.NewFromInt(1)},
		{Title: "x", OldPrice: decimal.NewFromInt(1)},
		{Title: "x", Author: "y", OldPrice: decimal.NewFromInt(-1)},
		{Title: "x", Author: "y", OldPrice: decimal.NewFromInt(1), Stock: -1},
		{Title: "x", Author: "y", OldPrice: decimal.NewFromInt(5), NewPrice: decimal.NewNullDecimal(decimal.NewFromInt(6))},
	}
	for i, b := range bad {
		assert.ErrorIs(t, svc.Create(ctx, admin, b), ErrInvalidBook, "case %d", i)
	}

	b := &book.Book{Title: "New", Author: "Someone", OldPrice: decimal.NewFromInt(20), Stock: 5, Sold: 99}
	require.NoError(t, svc.Create(ctx, admin, b))
	assert.Equal(t, int64(0), testutil.ReloadBook(t, db, b.ID).Sold)

	// 模拟订单完成后的销量，后台编辑不应覆盖
	require.NoError(t, db.Model(&book.Book{}).Where("id = ?", b.ID).Update("sold", 7).Error)
	b.Stock = 9
	b.NewPrice = decimal.NewNullDecimal(decimal.NewFromInt(15))
	require.NoError(t, svc.Update(ctx, admin, b))
	got := testutil.ReloadBook(t, db, b.ID)
	assert.Equal(t, int64(9), got.Stock)
	assert.Equal(t, int64(7), got.Sold)
	assert.True(t, decimal.NewFromInt(15).Equal(got.EffectivePrice()))

	missing := &book.Book{ID: 404, Title: "x", Author: "y"}
	assert.ErrorIs(t, svc.Update(ctx, admin, missing), ErrBookNotFound)

	require.NoError(t, svc.Delete(ctx, admin, b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, b.ID), ErrBookNotFound)
	_, err := svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := logs.List(ctx, "", 10)
	require.NoError(t, err)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []string{"book.create", "book.update", "book.delete"}, actions)
}

func TestBookListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewBookService(mysql.NewBookRepository(db), nil)
	cheap := testutil.MustBook(t, db, "Cheap Tales", "2.00", 1, 50)
	dear := &book.Book{Title: "Dear Diary", Author: "Anon", Categories: []string{"romance"}, OldPrice: decimal.NewFromInt(30), Stock: 1, Sold: 5}
	require.NoError(t, db.Create(dear).Error)

	list, total, err := svc.List(ctx, book.Filter{Sort: book.SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{dear.ID, cheap.ID}, []int64{list[0].ID, list[1].ID})

	list, total, err = svc.List(ctx, book.Filter{Category: "fiction"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, cheap.ID, list[0].ID)

	list, _, err = svc.List(ctx, book.Filter{Keyword: "diary"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dear.ID, list[0].ID)

	list, _, err = svc.List(ctx, book.Filter{Sort: book.SortBestSelling, PageSize: 1, Page: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dear.ID, list[0].ID)
}

func newUserService(t *testing.T) (*UserService, *gorm.DB, *config.JWTConfig) {
	t.Helper()
	db := testutil.NewDB(t)
	jwt := &config.JWTConfig{Secret: "test-secret", ExpireMinutes: 5}
	return NewUserService(mysql.NewUserRepository(db), jwt, NewLogService(mysql.NewAuditLogRepository(db))), db, jwt
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, jwt := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Username: "reader", Email: "reader@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = svc.Register(ctx, RegisterRequest{Username: "reader", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.Register(ctx, RegisterRequest{Username: "short", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	token, got, err := svc.Login(ctx, "reader", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	claims, err := auth.ParseToken(jwt, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, user.RoleUser, claims.Role)

	_, _, err = svc.Login(ctx, "reader", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.AdminLogin(ctx, "reader", "secret1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Promote(ctx, "reader")
	require.NoError(t, err)
	_, admin, err := svc.AdminLogin(ctx, "reader", "secret1")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestUpdateProfileAndRole(t *testing.T) {
	svc, db, _ := newUserService(t)
	ctx := context.Background()
	u := testutil.MustUser(t, db, "profile", "user")

	name, phone, email := "Pat", " 555-0100 ", "pat@example.com"
	got, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: &name, Phone: &phone, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Pat", got.Name)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "pat@example.com", got.Email)

	bad := "not-an-email"
	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Email: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateProfile(ctx, 404, ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SetRole(ctx, Actor{Username: "root"}, u.ID, "superuser")
	assert.ErrorIs(t, err, ErrInvalidInput)
	got, err = svc.SetRole(ctx, Actor{Username: "root"}, u.ID, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Role)
}

func TestReportSummaryCountsOnlyComplete(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewReportService(mysql.NewBookRepository(db), mysql.NewUserRepository(db), mysql.NewOrderRepository(db))
	u := testutil.MustUser(t, db, "rep", "user")
	a := testutil.MustBook(t, db, "A", "10.00", 10, 0)
	b := testutil.MustBook(t, db, "B", "5.00", 1, 0)

	testutil.MustOrder(t, db, u.ID, order.StatusComplete, testutil.Line{Book: a, Qty: 2}, testutil.Line{Book: b, Qty: 1})
	testutil.MustOrder(t, db, u.ID, order.StatusComplete, testutil.Line{Book: b, Qty: 3})
	testutil.MustOrder(t, db, u.ID, order.StatusPending, testutil.Line{Book: a, Qty: 7})
	testutil.MustOrder(t, db, u.ID, order.StatusCancelled, testutil.Line{Book: a, Qty: 9})

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TotalBooks)
	assert.Equal(t, int64(1), sum.TotalUsers)
	assert.Equal(t, int64(4), sum.TotalOrders)
	assert.Equal(t, map[order.Status]int64{
		order.StatusPending:   1,
		order.StatusComplete:  2,
		order.StatusCancelled: 1,
	}, sum.OrdersByStatus)
	assert.True(t, decimal.RequireFromString("40").Equal(sum.Revenue), "revenue %s", sum.Revenue)
	assert.Equal(t, int64(6), sum.UnitsSold)

	sales, err := svc.SalesByBook(ctx, 10)
	require.NoError(t, err)
	want := []order.BookSales{
		{BookID: b.ID, Title: "B", Units: 4, Revenue: decimal.RequireFromString("20")},
		{BookID: a.ID, Title: "A", Units: 2, Revenue: decimal.RequireFromString("20")},
	}
	if diff := cmp.Diff(want, sales, cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })); diff != "" {
		t.Errorf("sales by book mismatch (-want +got):\n%s", diff)
	}

	low, err := svc.LowStock(ctx, 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, b.ID, low[0].ID)
}

func TestSalesByPeriod(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewReportService(mysql.NewBookRepository(db), mysql.NewUserRepository(db), mysql.NewOrderRepository(db))
	u := testutil.MustUser(t, db, "period", "user")
	a := testutil.MustBook(t, db, "A", "10.00", 10, 0)

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.Local) }
	place := func(status order.Status, qty int64, at time.Time) {
		o := testutil.MustOrder(t, db, u.ID, status, testutil.Line{Book: a, Qty: qty})
		require.NoError(t, db.Model(&order.Order{}).Where("id = ?", o.ID).Update("created_at", at).Error)
	}
	place(order.StatusComplete, 1, day(4))
	place(order.StatusComplete, 2, day(4))
	place(order.StatusComplete, 3, day(6))
	place(order.StatusPending, 5, day(5))
	place(order.StatusComplete, 9, day(20))

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 3)
	got, err := svc.SalesByPeriod(ctx, "day", from, to)
	require.NoError(t, err)
	want := []PeriodSales{
		{Start: from, Orders: 2, Units: 3, Revenue: decimal.RequireFromString("30")},
		{Start: from.AddDate(0, 0, 1), Orders: 0, Units: 0, Revenue: decimal.Zero},
		{Start: from.AddDate(0, 0, 2), Orders: 1, Units: 3, Revenue: decimal.RequireFromString("30")},
	}
	opts := cmp.Options{
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
		cmpopts.EquateApproxTime(time.Second),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("daily sales mismatch (-want +got):\n%s", diff)
	}

	// 2024-03-04 是周一
	weekly, err := svc.SalesByPeriod(ctx, "week", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, int64(3), weekly[0].Orders)
	assert.Equal(t, int64(6), weekly[0].Units)

	_, err = svc.SalesByPeriod(ctx, "year", from, to)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStockAudit(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewReportService(mysql.NewBookRepository(db), mysql.NewUserRepository(db), mysql.NewOrderRepository(db))
	u := testutil.MustUser(t, db, "audit", "user")
	ok := testutil.MustBook(t, db, "Fine", "1.00", 5, 3)
	drift := testutil.MustBook(t, db, "Drift", "1.00", 5, 1)
	broken := testutil.MustBook(t, db, "Broken", "1.00", -2, 0)

	testutil.MustOrder(t, db, u.ID, order.StatusComplete, testutil.Line{Book: ok, Qty: 3})
	testutil.MustOrder(t, db, u.ID, order.StatusComplete, testutil.Line{Book: drift, Qty: 2})
	testutil.MustOrder(t, db, u.ID, order.StatusPending, testutil.Line{Book: ok, Qty: 9})

	issues, err := svc.StockAudit(ctx)
	require.NoError(t, err)
	want := []StockIssue{
		{BookID: broken.ID, Title: "Broken", Kind: IssueNegativeStock, Detail: "stock is -2"},
		{BookID: drift.ID, Title: "Drift", Kind: IssueSoldMismatch, Detail: "sold 1 is below 2 units in completed orders"},
	}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("stock audit mismatch (-want +got):\n%s", diff)
	}
}

func TestVisitServiceWithoutRedis(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewVisitService(mysql.NewVisitRepository(db), nil)
	fixed := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, "1.2.3.4"))
	}
	got, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []DayVisits{
		{Day: "2024-05-09", Count: 0},
		{Day: "2024-05-10", Count: 3},
	}, got)
}

func TestHandleOrderEvent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	logs := NewLogService(mysql.NewAuditLogRepository(db))

	ev := OrderEvent{EventID: "e1", OrderID: 42, OrderNo: "no-42", From: order.StatusPending, To: order.StatusCancelled, Actor: "alice"}
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, logs.HandleOrderEvent(ctx, body))

	entries, err := logs.List(ctx, "order.cancelled", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Equal(t, strconv.Itoa(42), entries[0].Target)

	assert.ErrorIs(t, logs.HandleOrderEvent(ctx, []byte("{not json")), mq.ErrDiscard)
	assert.ErrorIs(t, logs.HandleOrderEvent(ctx, []byte(`{"order_id":1,"to":"Shipped"}`)), mq.ErrDiscard)
}
