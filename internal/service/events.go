package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/bookstore/internal/datamodels/order"
)

// OrderStatusKey 订单状态事件的路由 key
const OrderStatusKey = "order.status"

// Actor 发起操作的用户
type Actor struct {
	UserID   int64
	Username string
	Admin    bool
}

// Name 日志中展示的操作人
func (a Actor) Name() string {
	if a.Username != "" {
		return a.Username
	}
	return "system"
}

// EventItem 事件里的订单行
type EventItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

// OrderEvent 订单状态变更事件，提交成功后发送
type OrderEvent struct {
	EventID string       `json:"event_id"`
	OrderID int64        `json:"order_id"`
	OrderNo string       `json:"order_no"`
	UserID  int64        `json:"user_id"`
	From    order.Status `json:"from"`
	To      order.Status `json:"to"`
	Actor   string       `json:"actor"`
	Admin   bool         `json:"admin"`
	Items   []EventItem  `json:"items"`
	At      time.Time    `json:"at"`
}

func newOrderEvent(o *order.Order, from order.Status, actor Actor, at time.Time) *OrderEvent {
	ev := &OrderEvent{
		EventID: uuid.NewString(),
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		From:    from,
		To:      o.Status,
		Actor:   actor.Name(),
		Admin:   actor.Admin,
		At:      at,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, EventItem{BookID: it.BookID, Quantity: it.Quantity})
	}
	return ev
}
