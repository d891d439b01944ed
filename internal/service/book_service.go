package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/bookstore/internal/datamodels/book"
)

// BookService 图书目录，后台写操作会记录操作日志
type BookService struct {
	repo book.Repository
	logs *LogService
}

func NewBookService(repo book.Repository, logs *LogService) *BookService {
	return &BookService{repo: repo, logs: logs}
}

func (s *BookService) List(ctx context.Context, f book.Filter) ([]*book.Book, int64, error) {
	f.Normalize()
	return s.repo.List(ctx, f)
}

func (s *BookService) Get(ctx context.Context, id int64) (*book.Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, bookNotFound(id)
		}
		return nil, err
	}
	return b, nil
}

func (s *BookService) Create(ctx context.Context, actor Actor, b *book.Book) error {
	if err := validateBook(b); err != nil {
		return err
	}
	b.ID = 0
	b.Sold = 0
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	s.logs.Record(ctx, actor.Name(), "book.create", strconv.FormatInt(b.ID, 10), b.Title)
	return nil
}

// Update 覆盖可编辑字段，销量保持不变
func (s *BookService) Update(ctx context.Context, actor Actor, b *book.Book) error {
	if err := validateBook(b); err != nil {
		return err
	}
	if _, err := s.Get(ctx, b.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}
	s.logs.Record(ctx, actor.Name(), "book.update", strconv.FormatInt(b.ID, 10),
		fmt.Sprintf("%s stock=%d price=%s", b.Title, b.Stock, b.EffectivePrice().StringFixed(2)))
	return nil
}

func (s *BookService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return bookNotFound(id)
		}
		return err
	}
	s.logs.Record(ctx, actor.Name(), "book.delete", strconv.FormatInt(id, 10), "")
	return nil
}

func validateBook(b *book.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	switch {
	case b.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	case b.Author == "":
		return fmt.Errorf("%w: author is required", ErrInvalidBook)
	case b.OldPrice.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidBook)
	case b.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidBook)
	}
	if b.NewPrice.Valid {
		if b.NewPrice.Decimal.IsNegative() {
			return fmt.Errorf("%w: discount price must not be negative", ErrInvalidBook)
		}
		if b.NewPrice.Decimal.GreaterThanOrEqual(b.OldPrice) {
			return fmt.Errorf("%w: discount price must be below the list price", ErrInvalidBook)
		}
	}
	return nil
}
