package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"pantryscan/pkg/imgproc"
	"pantryscan/pkg/ocr"
	"pantryscan/pkg/pipeline"
)

// resolveUploadPath locates the file behind a failed upload row. HTTP
// uploads record store_path relative to the upload base dir (UPLOAD_BASE,
// default "uploads"), the inbox scanner records it relative to the inbox's
// parent. Falls back to the file name under -dir.
func resolveUploadPath(dir, fname, store string) string {
	if store != "" {
		base := os.Getenv("UPLOAD_BASE")
		if base == "" {
			base = "uploads"
		}
		if p := filepath.Join(base, filepath.FromSlash(store)); fileExists(p) {
			return p
		}
		if p := filepath.Join(filepath.Dir(dir), filepath.FromSlash(store)); fileExists(p) {
			return p
		}
	}
	return filepath.Join(dir, fname)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	dir := flag.String("dir", "inbox", "base dir for upload files")
	dryRun := flag.Bool("dry-run", false, "rescan and report only, keep the failed flag")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// aggressive preprocessing for the second attempt: heavier smoothing and
	// a larger threshold window than the default pass
	cfg := imgproc.DefaultConfig()
	cfg.BilateralSigmaCol = cfg.BilateralSigmaCol * 1.5
	cfg.ThresholdBlock = cfg.ThresholdBlock*2 + 1
	cfg.SharpenAmount = 1.0

	var primary ocr.Engine
	if ep, key := os.Getenv("AZURE_VISION_ENDPOINT"), os.Getenv("AZURE_VISION_KEY"); ep != "" && key != "" {
		primary = ocr.NewAzure(ep, key)
	}
	scanner := pipeline.New(primary, ocr.NewTesseract(os.Getenv("TESSERACT_LANG")), pipeline.Config{Preprocess: cfg})

	rows, err := db.Query(`SELECT id, file_name, store_path FROM uploads WHERE failed = true AND receipt_id IS NULL`)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var fname string
		var store sql.NullString
		if err := rows.Scan(&id, &fname, &store); err != nil {
			log.Printf("scan: %v", err)
			continue
		}
		storePath := ""
		if store.Valid {
			storePath = store.String
		}
		path := resolveUploadPath(*dir, fname, storePath)

		res, err := scanner.ScanFile(context.Background(), path)
		if err != nil {
			if g := pipeline.RetryGuidance(err); g != "" {
				log.Printf("still failing id=%d file=%s: %v (%s)", id, fname, err, g)
			} else {
				log.Printf("still failing id=%d file=%s: %v", id, fname, err)
			}
			continue
		}

		fmt.Printf("recoverable id=%d file=%s vendor=%q items=%d conf=%.2f review=%v\n",
			id, fname, res.Receipt.Vendor, len(res.Items), res.OCRConfidence, res.Receipt.NeedsReview)
		if *dryRun {
			continue
		}
		// clear the flag so the next inbox scan persists the receipt
		if _, err := db.Exec(`UPDATE uploads SET failed=false, failed_reason='' WHERE id=$1`, id); err != nil {
			log.Printf("update id=%d: %v", id, err)
		}
	}
}
