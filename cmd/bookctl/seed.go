package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/service"
)

type sampleBook struct {
	title, author, category string
	price, discount         string
	stock                   int64
	trending                bool
}

var sampleBooks = []sampleBook{
	{"1984", "George Orwell", "fiction", "12.99", "9.99", 40, true},
	{"Animal Farm", "George Orwell", "fiction", "8.50", "", 25, false},
	{"The Art of War", "Sun Tzu", "business", "7.25", "", 30, false},
	{"The Fellowship of the Ring", "J.R.R. Tolkien", "adventure", "15.00", "12.50", 20, true},
	{"The Two Towers", "J.R.R. Tolkien", "adventure", "15.00", "", 18, false},
	{"The Return of the King", "J.R.R. Tolkien", "adventure", "15.00", "", 16, false},
	{"Romeo and Juliet", "William Shakespeare", "romance", "6.99", "", 35, false},
	{"The Three Musketeers", "Alexandre Dumas", "adventure", "10.40", "8.80", 12, false},
	{"The Three Little Pigs", "Traditional", "children", "4.99", "", 50, true},
	{"The Diary of a Young Girl", "Anne Frank", "history", "9.75", "", 22, false},
}

func newSeedCmd(e *env) *cobra.Command {
	var (
		force         bool
		adminPassword string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "写入示例图书，可选创建 admin 账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			actor := service.Actor{Username: "bookctl", Admin: true}

			_, total, err := e.svcs.Books.List(ctx, book.Filter{PageSize: 1})
			if err != nil {
				return err
			}
			if total > 0 && !force {
				fmt.Fprintf(out, "catalog already has %d books, skip (use --force to add anyway)\n", total)
			} else {
				for _, s := range sampleBooks {
					b := s.toBook()
					if err := e.svcs.Books.Create(ctx, actor, b); err != nil {
						return fmt.Errorf("seed %q: %w", s.title, err)
					}
					fmt.Fprintf(out, "added #%d %s by %s\n", b.ID, b.Title, b.Author)
				}
			}

			if adminPassword == "" {
				return nil
			}
			if _, err := e.svcs.Users.Register(ctx, service.RegisterRequest{
				Username: "admin",
				Password: adminPassword,
				Name:     "Administrator",
			}); err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if _, err := e.svcs.Users.Promote(ctx, "admin"); err != nil {
				return err
			}
			fmt.Fprintln(out, "admin account created")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "目录非空时仍然写入")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "同时创建用户名为 admin 的管理员")
	return cmd
}

func (s sampleBook) toBook() *book.Book {
	b := &book.Book{
		Title:      s.title,
		Author:     s.author,
		Categories: []string{s.category},
		OldPrice:   decimal.RequireFromString(s.price),
		Stock:      s.stock,
		Languages:  []string{"english"},
		AgeGroups:  []string{"adult"},
		Trending:   s.trending,
	}
	if s.category == "children" {
		b.AgeGroups = []string{"kids"}
	}
	if s.discount != "" {
		b.NewPrice = decimal.NewNullDecimal(decimal.RequireFromString(s.discount))
	}
	return b
}
