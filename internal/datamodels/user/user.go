package user

import (
	"context"
	"time"
)

// 角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:128" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt 哈希，自带盐
	Name      string    `gorm:"size:128" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Address   string    `gorm:"size:512" json:"address"`
	Role      string    `gorm:"size:16;not null;default:user;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	ListAll(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
}
