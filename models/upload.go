package models

import (
	"time"
)

// Upload tracks a receipt image file that entered the pipeline, whether from
// the HTTP API or the inbox watcher.
type Upload struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"` // relative path under the upload base dir
	ContentType string `gorm:"size:128"`
	ReceiptID   *uint  `gorm:"index"` // set once the scan produced a receipt
	// Mark upload as failed so the record survives for retry and review.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
