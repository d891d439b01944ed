package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrBookNotFound      = fmt.Errorf("book %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")

	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidBook        = errors.New("invalid book")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

// InsufficientStockError 指明库存不足的具体图书
type InsufficientStockError struct {
	BookID    int64
	Title     string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (book %d): requested %d, available %d",
		e.Title, e.BookID, e.Requested, e.Available)
}

// Is 使 errors.Is(err, ErrInsufficientStock) 成立
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TransitionError 非法状态变更，带上可读原因
type TransitionError struct {
	Reason string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func bookNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrBookNotFound, id)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
