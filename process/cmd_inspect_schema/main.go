package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Prints the foreign key constraints of the receipt tables, useful when
// AutoMigrate warnings suggest the schema drifted from the models.
func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT
		  con.conname AS constraint_name,
		  rel.relname AS table_name,
		  confrel.relname AS referenced_table,
		  pg_get_constraintdef(con.oid) AS definition
		FROM pg_constraint con
		JOIN pg_class rel ON rel.oid = con.conrelid
		JOIN pg_class confrel ON confrel.oid = con.confrelid
		WHERE con.contype = 'f'
		  AND rel.relname IN ('receipts', 'receipt_items', 'receipt_discounts', 'uploads')
		ORDER BY rel.relname, con.conname`)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, table, ref, def string
		if err := rows.Scan(&name, &table, &ref, &def); err != nil {
			log.Fatalf("scan: %v", err)
		}
		fmt.Printf("%s.%s -> %s: %s\n", table, name, ref, def)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("rows: %v", err)
	}
}
