package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/cart"
	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/infra/mq"
)

// OrderService 订单下单、查询与状态流转。
//
// 状态机：Pending -> Complete，Pending -> Cancelled；完成与取消都是终态，
// 重复确认完成是幂等的空操作。完成订单时在同一事务里扣减库存、累加销量，
// 任何一行库存不足则整单回滚。
type OrderService struct {
	db        *gorm.DB
	repo      order.Repository
	publisher mq.Publisher
	now       func() time.Time
}

// NewOrderService 创建订单服务，publisher 为 nil 时不发送事件
func NewOrderService(db *gorm.DB, repo order.Repository, publisher mq.Publisher) *OrderService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &OrderService{
		db:        db,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CheckoutRequest 下单参数
type CheckoutRequest struct {
	Address string
	Phone   string
}

// Checkout 将购物车转换为待处理订单并清空购物车。
// 这里只校验库存，不占用库存，库存在订单完成时扣减。
func (s *OrderService) Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*order.Order, error) {
	var result *order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []cart.Item
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.BookID)
		}
		var books []book.Book
		if err := tx.Where("id IN ?", ids).Find(&books).Error; err != nil {
			return err
		}
		byID := make(map[int64]*book.Book, len(books))
		for i := range books {
			byID[books[i].ID] = &books[i]
		}

		o := order.Order{
			OrderNo: uuid.NewString(),
			UserID:  userID,
			Status:  order.StatusPending,
			Address: req.Address,
			Phone:   req.Phone,
		}
		for _, it := range items {
			b, ok := byID[it.BookID]
			if !ok {
				return bookNotFound(it.BookID)
			}
			if it.Quantity < 1 {
				return ErrInvalidQuantity
			}
			if b.Stock < it.Quantity {
				return &InsufficientStockError{BookID: b.ID, Title: b.Title, Requested: it.Quantity, Available: b.Stock}
			}
			o.Items = append(o.Items, order.Item{
				BookID:    b.ID,
				Title:     b.Title,
				Quantity:  it.Quantity,
				UnitPrice: b.EffectivePrice(),
			})
		}
		o.Total = o.ComputeTotal()

		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		result = &o
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	GetMonitor().RecordCheckout()
	zap.L().Info("order created",
		zap.Int64("order_id", result.ID),
		zap.String("order_no", result.OrderNo),
		zap.Int64("user_id", userID),
		zap.String("total", result.Total.StringFixed(2)))
	return result, nil
}

// ListByUser 用户自己的订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser 查询订单，不属于该用户时按不存在处理
func (s *OrderService) GetForUser(ctx context.Context, userID, id int64) (*order.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Get 后台按 ID 查询
func (s *OrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// List 后台订单列表
func (s *OrderService) List(ctx context.Context, q order.Query) ([]*order.Order, error) {
	return s.repo.List(ctx, q)
}

// Receive 用户确认收货，已完成的订单重复确认直接返回
func (s *OrderService) Receive(ctx context.Context, actor Actor, id int64) (*order.Order, error) {
	return s.Transition(ctx, actor, id, order.StatusComplete)
}

// Cancel 用户取消订单，只有待处理订单可以取消
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id int64) (*order.Order, error) {
	return s.Transition(ctx, actor, id, order.StatusCancelled)
}

// Transition 用户发起的状态变更，只能操作自己的订单，目标只能是完成或取消
func (s *OrderService) Transition(ctx context.Context, actor Actor, id int64, target order.Status) (*order.Order, error) {
	if target != order.StatusComplete && target != order.StatusCancelled {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	return s.transition(ctx, actor, id, target, false)
}

// AdminTransition 管理员修改订单状态，不校验归属；与当前状态相同时为空操作
func (s *OrderService) AdminTransition(ctx context.Context, actor Actor, id int64, target order.Status) (*order.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	actor.Admin = true
	return s.transition(ctx, actor, id, target, true)
}

func (s *OrderService) transition(ctx context.Context, actor Actor, id int64, target order.Status, admin bool) (*order.Order, error) {
	var (
		result  *order.Order
		from    order.Status
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrOrderNotFound
			}
			return err
		}
		if !admin && o.UserID != actor.UserID {
			return ErrOrderNotFound
		}
		if err := tx.Where("order_id = ?", o.ID).Order("id ASC").Find(&o.Items).Error; err != nil {
			return err
		}
		from = o.Status
		result = &o

		apply, err := checkTransition(o.Status, target, admin)
		if err != nil || !apply {
			return err
		}

		if target == order.StatusComplete {
			if err := deductStock(tx, &o); err != nil {
				return err
			}
		}

		// 条件更新，防止并发请求重复流转
		res := tx.Model(&order.Order{}).
			Where("id = ? AND status = ?", o.ID, order.StatusPending).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &TransitionError{Reason: "order status was changed by another request"}
		}
		o.Status = target
		o.UpdatedAt = s.now()
		changed = true
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	if !changed {
		GetMonitor().RecordNoop()
		zap.L().Debug("order transition is a no-op",
			zap.Int64("order_id", result.ID),
			zap.String("status", result.Status.String()))
		return result, nil
	}

	GetMonitor().RecordTransition()
	zap.L().Info("order status changed",
		zap.Int64("order_id", result.ID),
		zap.String("from", from.String()),
		zap.String("to", result.Status.String()),
		zap.String("actor", actor.Name()),
		zap.Bool("admin", admin))
	s.publish(ctx, newOrderEvent(result, from, actor, s.now()))
	return result, nil
}

// checkTransition 返回是否需要真正执行变更；相同状态的空操作返回 false
func checkTransition(cur, target order.Status, admin bool) (bool, error) {
	if cur == target {
		if admin || target == order.StatusComplete {
			return false, nil
		}
		return false, &TransitionError{Reason: "only pending orders can be cancelled"}
	}
	if cur != order.StatusPending {
		switch target {
		case order.StatusCancelled:
			return false, &TransitionError{Reason: "only pending orders can be cancelled"}
		case order.StatusComplete:
			return false, &TransitionError{Reason: fmt.Sprintf("order is %s and cannot be completed", cur)}
		default:
			return false, &TransitionError{Reason: fmt.Sprintf("order is %s and cannot be reopened", cur)}
		}
	}
	return true, nil
}

// deductStock 两阶段扣减库存：先锁定并校验全部图书，再逐本条件扣减。
// 任何一步失败都返回错误，由外层事务整体回滚。
func deductStock(tx *gorm.DB, o *order.Order) error {
	want := o.Quantities()
	ids := make([]int64, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	// 固定加锁顺序，避免两个订单互相等待
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var books []book.Book
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&books).Error; err != nil {
		return err
	}
	byID := make(map[int64]*book.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	// 检查阶段，按订单行顺序报告第一个问题
	seen := make(map[int64]bool, len(want))
	for _, it := range o.Items {
		if seen[it.BookID] {
			continue
		}
		seen[it.BookID] = true
		b, ok := byID[it.BookID]
		if !ok {
			return fmt.Errorf("%w: %q (id %d)", ErrBookNotFound, it.Title, it.BookID)
		}
		if b.Stock < want[it.BookID] {
			return &InsufficientStockError{BookID: b.ID, Title: b.Title, Requested: want[it.BookID], Available: b.Stock}
		}
	}

	// 扣减阶段
	for _, id := range ids {
		qty := want[id]
		res := tx.Model(&book.Book{}).
			Where("id = ? AND stock >= ?", id, qty).
			Updates(map[string]interface{}{
				"stock": gorm.Expr("stock - ?", qty),
				"sold":  gorm.Expr("sold + ?", qty),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			b := byID[id]
			return &InsufficientStockError{BookID: id, Title: b.Title, Requested: qty, Available: b.Stock}
		}
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, ev *OrderEvent) {
	// 事务已提交，请求取消不应影响事件发送
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, OrderStatusKey, ev); err != nil {
		GetMonitor().RecordPublishError()
		zap.L().Error("publish order event failed",
			zap.Int64("order_id", ev.OrderID),
			zap.String("event_id", ev.EventID),
			zap.Error(err))
	}
}

func (s *OrderService) recordFailure(err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		GetMonitor().RecordInsufficientStock()
	case errors.Is(err, ErrInvalidTransition):
		GetMonitor().RecordInvalidTransition()
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidQuantity):
	default:
		GetMonitor().RecordDBError()
		zap.L().Error("order operation failed", zap.Error(err))
	}
}
