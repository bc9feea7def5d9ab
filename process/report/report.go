package report

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"pantryscan/models"
	"pantryscan/pkg/receipt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// RunSpend prints per-category spend for one month (YYYY-MM, UTC) across all
// scanned receipts.
func RunSpend(month string, list bool) {
	gdb := mustDBFromEnv()

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := gdb.Raw(`SELECT ri.category, COALESCE(SUM(ri.price_total),0) AS total, COUNT(*) AS cnt
		FROM receipt_items ri
		JOIN receipts r ON r.id = ri.receipt_id
		WHERE r.purchased_at >= ? AND r.purchased_at < ?
		GROUP BY ri.category ORDER BY total DESC`, start, end).Rows()
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	fmt.Printf("Spend by category, month=%s (UTC):\n", month)
	var grand int64
	for rows.Next() {
		var category string
		var total sql.NullInt64
		var cnt int64
		if err := rows.Scan(&category, &total, &cnt); err != nil {
			log.Fatalf("scan failed: %v", err)
		}
		grand += total.Int64
		fmt.Printf("  %-10s items=%-4d total=%s\n", category, cnt, receipt.FormatMoney(total.Int64))
	}
	fmt.Printf("  %-10s total=%s\n", "all", receipt.FormatMoney(grand))

	if list {
		var items []models.ReceiptItem
		if err := gdb.Joins("JOIN receipts r ON r.id = receipt_items.receipt_id").
			Where("r.purchased_at >= ? AND r.purchased_at < ?", start, end).
			Order("receipt_items.id").Find(&items).Error; err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
		for _, it := range items {
			fmt.Printf("%d|%s|%s|%s\n", it.ID, it.Name, it.Category, receipt.FormatMoney(it.PriceTotal))
		}
	}
}

// RunExpiring prints items whose predicted spoilage date falls within the
// next days.
func RunExpiring(days int) {
	gdb := mustDBFromEnv()
	cutoff := time.Now().AddDate(0, 0, days)

	var items []models.ReceiptItem
	if err := gdb.Where("expires_on IS NOT NULL AND expires_on <= ?", cutoff).
		Order("expires_on asc").Find(&items).Error; err != nil {
		log.Fatalf("query failed: %v", err)
	}
	fmt.Printf("Items expiring by %s:\n", cutoff.Format("2006-01-02"))
	for _, it := range items {
		exp := ""
		if it.ExpiresOn != nil {
			exp = it.ExpiresOn.Format("2006-01-02")
		}
		fmt.Printf("  %s %-10s %s\n", exp, it.Category, it.Name)
	}
}
