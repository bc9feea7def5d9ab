package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"pantryscan/pkg/imgproc"
	"pantryscan/pkg/ocr"
	"pantryscan/pkg/pantry"
	"pantryscan/pkg/receipt"
)

// Progress receives coarse completion updates while a scan runs.
type Progress func(stage string, percent int)

// Config carries per-run tuning. All state for one scan lives in the run
// itself; nothing is shared between scans.
type Config struct {
	Preprocess imgproc.Config
	OCR        ocr.Config
	Progress   Progress
}

// Result is everything one scan produced, handed to the review surface.
type Result struct {
	Receipt       *receipt.Parsed          `json:"receipt"`
	Items         []pantry.CategorizedItem `json:"items"`
	Adjustments   []string                 `json:"adjustments"`
	OCRConfidence float64                  `json:"ocr_confidence"`
	Elapsed       time.Duration            `json:"-"`
}

// Scanner runs the full pipeline: preprocess, OCR, parse, categorize.
// Independent receipts may be scanned in parallel; stages are pure functions
// of their input.
type Scanner struct {
	orch *ocr.Orchestrator
	cfg  Config
}

// New wires a scanner from its engines. primary may be nil.
func New(primary, fallback ocr.Engine, cfg Config) *Scanner {
	orch := ocr.New(primary, fallback)
	if cfg.OCR != (ocr.Config{}) {
		orch.Config = cfg.OCR
	}
	return &Scanner{orch: orch, cfg: cfg}
}

// Scan processes one decoded receipt photo. It honors ctx cancellation at
// every stage boundary and inside the OCR passes.
func (s *Scanner) Scan(ctx context.Context, img image.Image) (*Result, error) {
	started := time.Now()
	s.report("preprocess", 0)

	cleaned, adjustments, err := imgproc.Preprocess(ctx, img, s.cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	s.report("ocr", 25)

	ocrRes, err := s.orch.Recognize(ctx, cleaned.ToImage())
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	s.report("parse", 60)

	parsed, err := receipt.Parse(ocrRes.Text)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.report("categorize", 85)

	items := pantry.Categorize(parsed.Items, parsed.Date)
	s.report("done", 100)

	res := &Result{
		Receipt:       parsed,
		Items:         items,
		Adjustments:   adjustments,
		OCRConfidence: ocrRes.MeanConfidence,
		Elapsed:       time.Since(started),
	}
	log.Printf("scan done items=%d discounts=%d conf=%.2f review=%v in %s",
		len(items), len(parsed.Discounts), ocrRes.MeanConfidence, parsed.NeedsReview, res.Elapsed)
	return res, nil
}

// ScanFile decodes and scans an image from disk.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return s.Scan(ctx, img)
}

func (s *Scanner) report(stage string, percent int) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(stage, percent)
	}
}

// RetryGuidance turns a fatal scan error into actionable advice for the
// person re-taking the photo. Empty when the error is not a retryable scan
// failure.
func RetryGuidance(err error) string {
	switch {
	case errors.Is(err, imgproc.ErrDegenerateImage):
		return "the photo could not be cleaned up; retake it with the receipt flat and filling the frame"
	case errors.Is(err, ocr.ErrUnavailable):
		return "no text could be recognized; retake the photo with better lighting and focus"
	case errors.Is(err, receipt.ErrNoItems):
		return "no purchase lines were found; flatten the receipt and make sure the item area is visible"
	}
	return ""
}
