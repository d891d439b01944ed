package service

import (
	"context"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/cart"
)

// CartService 购物车，只记录数量，不占用库存
type CartService struct {
	repo  cart.Repository
	books book.Repository
}

func NewCartService(repo cart.Repository, books book.Repository) *CartService {
	return &CartService{repo: repo, books: books}
}

func (s *CartService) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add 加入购物车，已存在时累加数量
func (s *CartService) Add(ctx context.Context, userID, bookID, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, bookID, qty)
}

// Update 设置数量，0 表示移除
func (s *CartService) Update(ctx context.Context, userID, bookID, qty int64) error {
	switch {
	case qty < 0:
		return ErrInvalidQuantity
	case qty == 0:
		return s.repo.Remove(ctx, userID, bookID)
	}
	if _, err := s.repo.Get(ctx, userID, bookID); err != nil {
		if isRecordNotFound(err) {
			return bookNotFound(bookID)
		}
		return err
	}
	return s.repo.SetQuantity(ctx, userID, bookID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, bookID int64) error {
	return s.repo.Remove(ctx, userID, bookID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func (s *CartService) ensureBook(ctx context.Context, bookID int64) error {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if isRecordNotFound(err) {
			return bookNotFound(bookID)
		}
		return err
	}
	return nil
}
