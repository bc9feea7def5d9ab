package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pantryscan/process/report"
)

func main() {
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report spend for (YYYY-MM)")
	list := flag.Bool("list", false, "list matching rows")
	expiring := flag.Int("expiring", 0, "instead of spend, list items expiring within N days")
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}

	if *expiring > 0 {
		report.RunExpiring(*expiring)
		return
	}
	report.RunSpend(*month, *list)
}
