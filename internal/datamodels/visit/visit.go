package visit

import (
	"context"
	"time"
)

// DayLayout 日期 key 格式
const DayLayout = "2006-01-02"

// Visit 按天汇总的访问量
type Visit struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Day       string    `gorm:"size:10;uniqueIndex;not null" json:"day"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 访问量仓储接口
type Repository interface {
	Incr(ctx context.Context, day string) error
	ListSince(ctx context.Context, day string) ([]*Visit, error)
}
