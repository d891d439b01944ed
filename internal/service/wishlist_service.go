package service

import (
	"context"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/wishlist"
)

type WishlistService struct {
	repo  wishlist.Repository
	books book.Repository
}

func NewWishlistService(repo wishlist.Repository, books book.Repository) *WishlistService {
	return &WishlistService{repo: repo, books: books}
}

// List 返回收藏的图书，已下架的图书不返回
func (s *WishlistService) List(ctx context.Context, userID int64) ([]*book.Book, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]*book.Book, 0, len(items))
	for _, it := range items {
		if it.Book != nil {
			list = append(list, it.Book)
		}
	}
	return list, nil
}

// Add 重复收藏不报错
func (s *WishlistService) Add(ctx context.Context, userID, bookID int64) error {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if isRecordNotFound(err) {
			return bookNotFound(bookID)
		}
		return err
	}
	return s.repo.Add(ctx, userID, bookID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, bookID int64) error {
	return s.repo.Remove(ctx, userID, bookID)
}
