package order

import (
	"fmt"
	"strings"
)

// Status 订单状态，只有三个取值，库里只存规范写法
type Status string

const (
	StatusPending   Status = "Pending"
	StatusComplete  Status = "Complete"
	StatusCancelled Status = "Cancelled"
)

// Statuses 全部合法状态
var Statuses = []Status{StatusPending, StatusComplete, StatusCancelled}

// ParseStatus 解析外部输入的状态，兼容历史数据里的大小写和拼写变体
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "complete", "completed":
		return StatusComplete, nil
	case "cancelled", "canceled", "cancel":
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal 完成和取消都是终态
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// Valid 是否为规范状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
