package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/cart"
	"github.com/example/bookstore/internal/datamodels/wishlist"
)

type bookRepo struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepo{db: db}
}

func (r *bookRepo) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	var b book.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*book.Book, error) {
	out := make(map[int64]*book.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []*book.Book
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, b := range list {
		out[b.ID] = b
	}
	return out, nil
}

// 标签字段以 JSON 数组存储，按带引号的元素做包含匹配
func tagPattern(tag string) string {
	return `%"` + tag + `"%`
}

func applyFilter(q *gorm.DB, f book.Filter) *gorm.DB {
	if f.Category != "" && f.Category != "all" {
		q = q.Where("categories LIKE ?", tagPattern(f.Category))
	}
	if f.Language != "" {
		q = q.Where("languages LIKE ?", tagPattern(f.Language))
	}
	if f.AgeGroup != "" {
		q = q.Where("age_groups LIKE ?", tagPattern(f.AgeGroup))
	}
	if f.Keyword != "" {
		kw := "%" + f.Keyword + "%"
		q = q.Where("(title LIKE ? OR author LIKE ?)", kw, kw)
	}
	if f.Trending != nil {
		q = q.Where("trending = ?", *f.Trending)
	}
	return q
}

func (r *bookRepo) List(ctx context.Context, f book.Filter) ([]*book.Book, int64, error) {
	f.Normalize()

	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&book.Book{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := applyFilter(r.db.WithContext(ctx), f)
	switch f.Sort {
	case book.SortPriceAsc:
		q = q.Order("CASE WHEN new_price > 0 THEN new_price ELSE old_price END ASC").Order("id DESC")
	case book.SortPriceDesc:
		q = q.Order("CASE WHEN new_price > 0 THEN new_price ELSE old_price END DESC").Order("id DESC")
	case book.SortBestSelling:
		q = q.Order("sold DESC").Order("id DESC")
	default:
		q = q.Order("id DESC")
	}

	var list []*book.Book
	if err := q.Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *bookRepo) ListLowStock(ctx context.Context, threshold int64) ([]*book.Book, error) {
	var list []*book.Book
	if err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&book.Book{}).Count(&n).Error
	return n, err
}

func (r *bookRepo) Create(ctx context.Context, b *book.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// bookEditable 后台可编辑的列，sold 只由订单完成累加
var bookEditable = []string{
	"title", "author", "description", "categories", "old_price", "new_price",
	"stock", "cover_image", "age_groups", "languages", "trending", "updated_at",
}

func (r *bookRepo) Update(ctx context.Context, b *book.Book) error {
	return r.db.WithContext(ctx).Model(&book.Book{ID: b.ID}).Select(bookEditable).Updates(b).Error
}

func (r *bookRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先清理购物车与收藏夹中的引用
		if err := tx.Where("book_id = ?", id).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&wishlist.Item{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&book.Book{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
