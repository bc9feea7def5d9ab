package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"pantryscan/pkg/imgproc"
	"pantryscan/pkg/ocr"
	"pantryscan/pkg/pantry"
)

type fixedEngine struct {
	res *ocr.Result
}

func (f *fixedEngine) Name() string    { return "fixed" }
func (f *fixedEngine) Available() bool { return true }
func (f *fixedEngine) Recognize(ctx context.Context, img image.Image, mode ocr.Mode) (*ocr.Result, error) {
	if mode != ocr.ModeFullPage {
		return nil, ocr.ErrUnsupportedMode
	}
	return f.res, nil
}

// receiptPhoto draws dark text-like bars on white so preprocessing has
// content to work with.
func receiptPhoto() image.Image {
	img := image.NewGray(image.Rect(0, 0, 400, 600))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, y0 := range []int{80, 140, 210, 290, 360, 450} {
		for y := y0; y < y0+14; y++ {
			for x := 40; x < 360; x++ {
				img.Pix[y*400+x] = 20
			}
		}
	}
	return img
}

func fixedResult() *ocr.Result {
	mk := func(text string, x, y int) ocr.Token {
		return ocr.Token{Text: text, Confidence: 0.9, X: x, Y: y, W: 40, H: 12}
	}
	tokens := []ocr.Token{
		mk("FRESH", 20, 10), mk("MART", 70, 10),
		mk("MILK", 20, 40), mk("5.89", 80, 40),
		mk("BANANAS", 20, 70), mk("2.18", 110, 70),
		mk("TOTAL", 20, 100), mk("8.07", 80, 100),
	}
	return &ocr.Result{
		Text:           "FRESH MART\nMILK 5.89\nBANANAS 2.18\nTOTAL 8.07",
		Tokens:         tokens,
		MeanConfidence: 0.9,
	}
}

func TestScanEndToEnd(t *testing.T) {
	var stages []string
	s := New(nil, &fixedEngine{res: fixedResult()}, Config{
		Progress: func(stage string, percent int) { stages = append(stages, stage) },
	})

	res, err := s.Scan(context.Background(), receiptPhoto())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Receipt.Vendor != "FRESH MART" {
		t.Fatalf("vendor = %q", res.Receipt.Vendor)
	}
	if len(res.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(res.Items))
	}
	if res.Items[0].Category != pantry.CategoryDairy {
		t.Fatalf("milk categorized as %q", res.Items[0].Category)
	}
	if res.Items[0].ExpiresOn.Before(time.Now()) {
		t.Fatalf("expiry not in the future: %v", res.Items[0].ExpiresOn)
	}
	if res.Receipt.NeedsReview {
		t.Fatalf("totals match, review flagged anyway: %v", res.Receipt.ReviewReasons)
	}
	if res.OCRConfidence < 0.8 {
		t.Fatalf("confidence %v", res.OCRConfidence)
	}
	if len(res.Adjustments) == 0 {
		t.Fatal("no preprocessing adjustments reported")
	}
	want := []string{"preprocess", "ocr", "parse", "categorize", "done"}
	if len(stages) != len(want) {
		t.Fatalf("stages %v", stages)
	}
	for i, st := range want {
		if stages[i] != st {
			t.Fatalf("stage[%d] = %q, want %q", i, stages[i], st)
		}
	}
}

func TestScanCancelled(t *testing.T) {
	s := New(nil, &fixedEngine{res: fixedResult()}, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Scan(ctx, receiptPhoto()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanBlankImageFails(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 200, 300))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	s := New(nil, &fixedEngine{res: fixedResult()}, Config{})
	_, err := s.Scan(context.Background(), blank)
	if !errors.Is(err, imgproc.ErrDegenerateImage) {
		t.Fatalf("expected degenerate image error, got %v", err)
	}
	if RetryGuidance(err) == "" {
		t.Fatal("degenerate image should carry retry guidance")
	}
}

func TestRetryGuidanceUnknownError(t *testing.T) {
	if g := RetryGuidance(errors.New("disk full")); g != "" {
		t.Fatalf("unexpected guidance %q", g)
	}
}
