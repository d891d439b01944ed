package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/service"
)

func newReportCmd(e *env) *cobra.Command {
	var (
		period string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "输出销售汇总与分期销售额",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sum, err := e.svcs.Reports.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "books: %d  users: %d  orders: %d\n", sum.TotalBooks, sum.TotalUsers, sum.TotalOrders)
			for _, status := range order.Statuses {
				fmt.Fprintf(out, "  %-10s %d\n", status, sum.OrdersByStatus[status])
			}
			fmt.Fprintf(out, "revenue: %s  units sold: %d\n\n", sum.Revenue.StringFixed(2), sum.UnitsSold)

			if days <= 0 {
				days = 7
			}
			now := time.Now()
			y, m, d := now.Date()
			from := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1-days)
			rows, err := e.svcs.Reports.SalesByPeriod(ctx, period, from, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-12s %8s %8s %12s\n", period, "orders", "units", "revenue")
			for _, r := range rows {
				fmt.Fprintf(out, "%-12s %8d %8d %12s\n", r.Start.Format("2006-01-02"), r.Orders, r.Units, r.Revenue.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", service.PeriodDay, "统计周期 day|week|month")
	cmd.Flags().IntVar(&days, "days", 7, "回看天数")
	return cmd
}

func newStockAuditCmd(e *env) *cobra.Command {
	var threshold int64
	cmd := &cobra.Command{
		Use:   "stock-audit",
		Short: "检查负库存、销量不一致以及低库存图书",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			issues, err := e.svcs.Reports.StockAudit(ctx)
			if err != nil {
				return err
			}
			for _, is := range issues {
				fmt.Fprintf(out, "[%s] #%d %s: %s\n", is.Kind, is.BookID, is.Title, is.Detail)
			}

			low, err := e.svcs.Reports.LowStock(ctx, threshold)
			if err != nil {
				return err
			}
			for _, b := range low {
				if b.Stock < 0 {
					continue
				}
				fmt.Fprintf(out, "[low_stock] #%d %s: %d left\n", b.ID, b.Title, b.Stock)
			}

			if len(issues) > 0 {
				return fmt.Errorf("found %d stock issues", len(issues))
			}
			fmt.Fprintln(out, "stock audit ok")
			return nil
		},
	}
	cmd.Flags().Int64Var(&threshold, "threshold", 5, "低库存阈值")
	return cmd
}
