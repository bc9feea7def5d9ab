package imgproc

import (
	"context"
	"fmt"
	"image"
	"log"
)

// Config tunes the cleanup chain. Zero values fall back to defaults.
type Config struct {
	BilateralDiameter int     // neighborhood diameter for the bilateral filter
	BilateralSigmaSpc float64 // spatial Gaussian sigma
	BilateralSigmaCol float64 // intensity-difference Gaussian sigma
	ThresholdBlock    int     // adaptive threshold block size (odd)
	ThresholdBias     float64 // constant subtracted from the local mean
	DeskewMaxDeg      float64 // candidate angle range (± degrees)
	DeskewStepDeg     float64
	CropThreshold     uint8 // brightness below which a pixel counts as content
	CropPadding       int
	FlattenAbove      uint8 // brightness above which glare is flattened
	FlattenTo         uint8
	SharpenSigma      float64
	SharpenAmount     float64
	Workers           int // row-parallel worker count, 0 = NumCPU
}

// DefaultConfig returns the tuning that works well for phone photos of
// thermal-paper receipts.
func DefaultConfig() Config {
	return Config{
		BilateralDiameter: 7,
		BilateralSigmaSpc: 2.0,
		BilateralSigmaCol: 30,
		ThresholdBlock:    25,
		ThresholdBias:     10,
		DeskewMaxDeg:      15,
		DeskewStepDeg:     0.5,
		CropThreshold:     128,
		CropPadding:       12,
		FlattenAbove:      245,
		FlattenTo:         235,
		SharpenSigma:      1.0,
		SharpenAmount:     0.6,
	}
}

// Preprocess runs the full cleanup chain on a decoded photo and returns the
// OCR-ready raster plus the list of applied adjustments for diagnostics.
// Each step is a pure transform producing a new buffer.
func Preprocess(ctx context.Context, img image.Image, cfg Config) (*Gray, []string, error) {
	def := DefaultConfig()
	if cfg.BilateralDiameter <= 0 {
		cfg.BilateralDiameter = def.BilateralDiameter
	}
	if cfg.BilateralSigmaSpc <= 0 {
		cfg.BilateralSigmaSpc = def.BilateralSigmaSpc
	}
	if cfg.BilateralSigmaCol <= 0 {
		cfg.BilateralSigmaCol = def.BilateralSigmaCol
	}
	if cfg.ThresholdBlock <= 0 {
		cfg.ThresholdBlock = def.ThresholdBlock
	}
	if cfg.ThresholdBias <= 0 {
		cfg.ThresholdBias = def.ThresholdBias
	}
	if cfg.DeskewMaxDeg <= 0 {
		cfg.DeskewMaxDeg = def.DeskewMaxDeg
	}
	if cfg.DeskewStepDeg <= 0 {
		cfg.DeskewStepDeg = def.DeskewStepDeg
	}
	if cfg.CropThreshold == 0 {
		cfg.CropThreshold = def.CropThreshold
	}
	if cfg.CropPadding <= 0 {
		cfg.CropPadding = def.CropPadding
	}
	if cfg.FlattenAbove == 0 {
		cfg.FlattenAbove = def.FlattenAbove
	}
	if cfg.FlattenTo == 0 {
		cfg.FlattenTo = def.FlattenTo
	}
	if cfg.SharpenSigma <= 0 {
		cfg.SharpenSigma = def.SharpenSigma
	}
	if cfg.SharpenAmount <= 0 {
		cfg.SharpenAmount = def.SharpenAmount
	}

	var adjustments []string
	step := func(name string, g *Gray) (*Gray, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Degenerate() {
			return nil, fmt.Errorf("%s: %w", name, ErrDegenerateImage)
		}
		adjustments = append(adjustments, name)
		return g, nil
	}

	g, err := step("grayscale", FromImage(img))
	if err != nil {
		return nil, adjustments, err
	}
	if g, err = step("bilateral", BilateralFilter(g, cfg.BilateralDiameter, cfg.BilateralSigmaSpc, cfg.BilateralSigmaCol, cfg.Workers)); err != nil {
		return nil, adjustments, err
	}
	if g, err = step("adaptive-threshold", AdaptiveThreshold(g, cfg.ThresholdBlock, cfg.ThresholdBias, cfg.Workers)); err != nil {
		return nil, adjustments, err
	}
	deskewed, angle := Deskew(g, cfg.DeskewMaxDeg, cfg.DeskewStepDeg)
	if angle != 0 {
		if g, err = step(fmt.Sprintf("deskew(%.1f)", angle), deskewed); err != nil {
			return nil, adjustments, err
		}
		log.Printf("imgproc deskew corrected %.1f deg", angle)
	}
	cropped := BorderCrop(g, cfg.CropThreshold, cfg.CropPadding)
	if cropped == nil {
		return nil, adjustments, fmt.Errorf("border-crop: %w", ErrDegenerateImage)
	}
	if g, err = step("border-crop", cropped); err != nil {
		return nil, adjustments, err
	}
	if g, err = step("flatten-background", FlattenBackground(g, cfg.FlattenAbove, cfg.FlattenTo)); err != nil {
		return nil, adjustments, err
	}
	if g, err = step("unsharp-mask", UnsharpMask(g, cfg.SharpenSigma, cfg.SharpenAmount, cfg.Workers)); err != nil {
		return nil, adjustments, err
	}
	return g, adjustments, nil
}
