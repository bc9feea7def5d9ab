package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pantryscan/models"
	"pantryscan/pkg/pipeline"

	"github.com/gin-gonic/gin"
)

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	r.POST("/scans", scanHandler)
	r.GET("/receipts", listReceiptsHandler)
	r.GET("/receipts/:id", getReceiptHandler)
	r.GET("/items/expiring", expiringItemsHandler)
	r.GET("/uploads", listUploadsHandler)
	r.GET("/uploads/:id", getUploadHandler)
}

func healthHandler(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// scanHandler accepts a multipart receipt photo, runs the full pipeline and
// persists the result. A fatal pipeline error keeps the Upload row (marked
// failed) and answers 422 with retry guidance.
func scanHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 10*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	baseDir := uploadBaseDir()
	relPath := time.Now().Format("2006-01") + "/" + file.Filename
	fullPath := filepath.Join(baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	up := models.Upload{FileName: file.Filename, StorePath: relPath, ContentType: file.Header.Get("Content-Type")}
	if err := db.Create(&up).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}

	res, err := scanner.ScanFile(c.Request.Context(), fullPath)
	if err != nil {
		up.Failed = true
		up.FailedReason = err.Error()
		db.Save(&up)
		if guidance := pipeline.RetryGuidance(err); guidance != "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "retry_guidance": guidance, "upload_id": up.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "upload_id": up.ID})
		return
	}

	rec := models.NewReceipt(res.Receipt, res.Items, res.OCRConfidence, res.Adjustments)
	if err := db.Create(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	up.ReceiptID = &rec.ID
	db.Save(&up)

	c.JSON(http.StatusOK, gin.H{"receipt_id": rec.ID, "upload_id": up.ID, "receipt": rec, "elapsed_ms": res.Elapsed.Milliseconds()})
}

// listReceiptsHandler returns recent receipts, optionally only those needing
// manual review (?needs_review=true).
func listReceiptsHandler(c *gin.Context) {
	q := db.Model(&models.Receipt{}).Preload("Items").Preload("Discounts")
	if c.Query("needs_review") == "true" {
		q = q.Where("needs_review = ?", true)
	}
	var receipts []models.Receipt
	if err := q.Order("id desc").Limit(100).Find(&receipts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, receipts)
}

func getReceiptHandler(c *gin.Context) {
	var rec models.Receipt
	if err := db.Preload("Items").Preload("Discounts").First(&rec, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// expiringItemsHandler lists items whose predicted spoilage date falls within
// the next N days (?days=7 default).
func expiringItemsHandler(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	cutoff := time.Now().AddDate(0, 0, days)
	var items []models.ReceiptItem
	if err := db.Where("expires_on IS NOT NULL AND expires_on <= ?", cutoff).
		Order("expires_on asc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cutoff": cutoff.Format("2006-01-02"), "items": items})
}

// listUploadsHandler returns recent uploads, optionally only failed ones
// (?failed=true) so they can be retried.
func listUploadsHandler(c *gin.Context) {
	q := db.Model(&models.Upload{})
	if c.Query("failed") == "true" {
		q = q.Where("failed = ?", true)
	}
	var uploads []models.Upload
	if err := q.Order("id desc").Limit(100).Find(&uploads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, uploads)
}

func getUploadHandler(c *gin.Context) {
	var up models.Upload
	if err := db.First(&up, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, up)
}
