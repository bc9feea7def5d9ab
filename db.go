package main

import (
	"log"
	"os"
	"strings"

	"pantryscan/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.Receipt{}); err != nil {
			log.Printf("migration warning (receipts): %v", err)
		}
		if err := db.AutoMigrate(&models.ReceiptItem{}); err != nil {
			log.Printf("migration warning (receipt_items): %v", err)
		}
		if err := db.AutoMigrate(&models.ReceiptDiscount{}); err != nil {
			log.Printf("migration warning (receipt_discounts): %v", err)
		}
		if err := db.AutoMigrate(&models.Upload{}); err != nil {
			log.Printf("migration warning (uploads): %v", err)
		}
	}
	ensureUploadBase()
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
