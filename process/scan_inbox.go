package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pantryscan/models"
	"pantryscan/pkg/ocr"
	"pantryscan/pkg/pipeline"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var verbose bool

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// preload cache: uploads already recorded, keyed by file name
type preloadState struct {
	uploadsByFile map[string]*models.Upload
	mu            sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{uploadsByFile: make(map[string]*models.Upload, 1024)}
}

func (ps *preloadState) getUpload(name string) (*models.Upload, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	u, ok := ps.uploadsByFile[name]
	return u, ok
}
func (ps *preloadState) putUpload(u *models.Upload) {
	ps.mu.Lock()
	ps.uploadsByFile[u.FileName] = u
	ps.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// newScanner mirrors the server wiring: cloud primary when credentials are
// present, local tesseract fallback.
func newScanner() *pipeline.Scanner {
	var primary ocr.Engine
	if ep, key := os.Getenv("AZURE_VISION_ENDPOINT"), os.Getenv("AZURE_VISION_KEY"); ep != "" && key != "" {
		primary = ocr.NewAzure(ep, key)
	}
	fallback := ocr.NewTesseract(os.Getenv("TESSERACT_LANG"))
	return pipeline.New(primary, fallback, pipeline.Config{})
}

// Main: scans an inbox directory of receipt photos, runs the full pipeline on
// each and records Upload + Receipt rows. Optional watch mode keeps going.
func main() {
	dirFlag := flag.String("dir", "inbox", "directory to scan for receipt images")
	dryRun := flag.Bool("dry-run", false, "Skip all DB writes; just list candidate files")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		files := listImageFiles(*dirFlag)
		log.Printf("Found %d candidate files", len(files))
		for _, f := range files {
			logV("candidate %s", f)
		}
		return
	}

	db = mustInitDBFromEnv()
	scanner := newScanner()
	ps := preloadAll()
	log.Printf("Preloaded: uploads=%d", len(ps.uploadsByFile))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, scanner, ps, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, scanner, ps, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadAll fetches existing uploads to minimize per-file queries.
func preloadAll() *preloadState {
	ps := newPreloadState()
	var ups []models.Upload
	if err := db.Find(&ups).Error; err == nil {
		for i := range ups {
			u := ups[i]
			ps.uploadsByFile[u.FileName] = &u
		}
	}
	return ps
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, scanner *pipeline.Scanner, ps *preloadState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(dir, scanner, ps, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := extMime[ext]
	return ok
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

// worker pool orchestrator
func runWorkerPool(dir string, scanner *pipeline.Scanner, ps *preloadState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, scanner, ps)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile runs one photo through the pipeline idempotently: a file
// whose upload already points at a receipt is skipped, a previously failed one
// is retried.
func processSingleFile(dir, name string, scanner *pipeline.Scanner, ps *preloadState) {
	filePath := filepath.Join(dir, name)

	up, upExists := ps.getUpload(name)
	if upExists && up.ReceiptID != nil {
		logV("SKIP already scanned %s", name)
		return
	}
	if !upExists {
		newUp := models.Upload{FileName: name, StorePath: filepath.ToSlash(filepath.Join(filepath.Base(dir), name))}
		if ct := mimeFromExt(name); ct != "" {
			newUp.ContentType = ct
		}
		if err := db.Create(&newUp).Error; err != nil {
			log.Printf("WARN create upload %s: %v", name, err)
			return
		}
		up = &newUp
		ps.putUpload(up)
	}

	res, err := scanner.ScanFile(context.Background(), filePath)
	if err != nil {
		up.Failed = true
		up.FailedReason = err.Error()
		if g := pipeline.RetryGuidance(err); g != "" {
			log.Printf("FAIL %s: %v (%s)", name, err, g)
		} else {
			log.Printf("FAIL %s: %v", name, err)
		}
		db.Save(up)
		return
	}

	rec := models.NewReceipt(res.Receipt, res.Items, res.OCRConfidence, res.Adjustments)
	if err := db.Create(rec).Error; err != nil {
		log.Printf("WARN save receipt for %s: %v", name, err)
		return
	}
	up.ReceiptID = &rec.ID
	up.Failed = false
	up.FailedReason = ""
	db.Save(up)
	logV("OK %s receipt=%d items=%d review=%v", name, rec.ID, len(rec.Items), rec.NeedsReview)
}
