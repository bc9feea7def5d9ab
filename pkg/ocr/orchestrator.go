package ocr

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"
)

// Config holds the orchestrator's empirical thresholds. They are settings,
// not contracts, and may need tuning per receipt corpus.
type Config struct {
	AcceptConfidence    float64 // accept the primary engine at or above this mean
	BandTolerance       int     // Y window when grouping tokens into bands
	ColumnGapFactor     float64 // gap > factor * avg token width flags a column gap
	MultiColumnFraction float64 // fraction of gapped bands that flips multi-column
	PriceEdgeFraction   float64 // right-edge share of the page scanned for prices
	RegionPadding       int     // padding around each price region crop
}

// DefaultConfig mirrors the tuning used against the test corpus.
func DefaultConfig() Config {
	return Config{
		AcceptConfidence:    0.75,
		BandTolerance:       10,
		ColumnGapFactor:     3.0,
		MultiColumnFraction: 0.30,
		PriceEdgeFraction:   0.45,
		RegionPadding:       4,
	}
}

// Orchestrator produces the best achievable recognition from a cleaned image,
// tolerant of any single engine being weak or unavailable. Primary is the
// high-accuracy engine (may be nil), Fallback the local engine.
type Orchestrator struct {
	Primary  Engine
	Fallback Engine
	Config   Config
}

// New builds an orchestrator with default thresholds.
func New(primary, fallback Engine) *Orchestrator {
	return &Orchestrator{Primary: primary, Fallback: fallback, Config: DefaultConfig()}
}

// Recognize runs the try-measure-compare procedure and returns the winning
// result re-sorted into reading order. It fails with ErrUnavailable only when
// every engine failed.
func (o *Orchestrator) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	cfg := o.normalized()
	var base *Result

	if o.Primary != nil && o.Primary.Available() {
		res, err := o.Primary.Recognize(ctx, img, ModeFullPage)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			log.Printf("ocr primary %s failed, falling through: %v", o.Primary.Name(), err)
		case res.MeanConfidence >= cfg.AcceptConfidence:
			base = res
		default:
			log.Printf("ocr primary %s below accept threshold (%.2f < %.2f)", o.Primary.Name(), res.MeanConfidence, cfg.AcceptConfidence)
			base = res // keep as a floor; fallback may beat it
		}
	}

	accepted := base != nil && base.MeanConfidence >= cfg.AcceptConfidence
	if !accepted && o.Fallback != nil && o.Fallback.Available() {
		full, err := o.Fallback.Recognize(ctx, img, ModeFullPage)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			log.Printf("ocr fallback %s full-page failed: %v", o.Fallback.Name(), err)
		} else {
			chosen := full
			if detectMultiColumn(full.Tokens, cfg.BandTolerance, cfg.ColumnGapFactor, cfg.MultiColumnFraction) {
				col, cerr := o.Fallback.Recognize(ctx, img, ModeSingleColumn)
				if cerr != nil && ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if cerr == nil && col.MeanConfidence > full.MeanConfidence {
					chosen = col
				}
			}
			if base == nil || chosen.MeanConfidence > base.MeanConfidence {
				base = chosen
			}
		}
	}
	if base == nil {
		return nil, fmt.Errorf("all engines failed: %w", ErrUnavailable)
	}

	tokens := base.Tokens
	if targeted := o.refinePrices(ctx, img, tokens, cfg); len(targeted) > 0 {
		tokens = mergeTokens(tokens, targeted)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	final := assemble(tokens, cfg.BandTolerance)
	if final.Text == "" {
		final.Text = base.Text
	}
	return final, nil
}

// refinePrices re-runs OCR with a digit character set over likely price
// regions: price-shaped tokens clustered near the page's right edge. The
// returned tokens are in page coordinates.
func (o *Orchestrator) refinePrices(ctx context.Context, img image.Image, tokens []Token, cfg Config) []Token {
	if o.Fallback == nil || !o.Fallback.Available() {
		return nil
	}
	pageW := img.Bounds().Dx()
	pageH := img.Bounds().Dy()
	edge := int(float64(pageW) * (1 - cfg.PriceEdgeFraction))
	var out []Token
	for _, t := range tokens {
		if !priceLikeRE.MatchString(t.Text) {
			continue
		}
		if t.X+t.W/2 < edge {
			continue
		}
		r := image.Rect(t.X-cfg.RegionPadding, t.Y-cfg.RegionPadding, t.X+t.W+cfg.RegionPadding, t.Y+t.H+cfg.RegionPadding)
		r = r.Intersect(image.Rect(0, 0, pageW, pageH))
		if r.Empty() {
			continue
		}
		crop := imaging.Crop(img, r)
		res, err := o.Fallback.Recognize(ctx, crop, ModeDigits)
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			continue
		}
		for _, rt := range res.Tokens {
			rt.X += r.Min.X
			rt.Y += r.Min.Y
			out = append(out, rt)
		}
	}
	return out
}

func (o *Orchestrator) normalized() Config {
	cfg := o.Config
	def := DefaultConfig()
	if cfg.AcceptConfidence <= 0 {
		cfg.AcceptConfidence = def.AcceptConfidence
	}
	if cfg.BandTolerance <= 0 {
		cfg.BandTolerance = def.BandTolerance
	}
	if cfg.ColumnGapFactor <= 0 {
		cfg.ColumnGapFactor = def.ColumnGapFactor
	}
	if cfg.MultiColumnFraction <= 0 {
		cfg.MultiColumnFraction = def.MultiColumnFraction
	}
	if cfg.PriceEdgeFraction <= 0 {
		cfg.PriceEdgeFraction = def.PriceEdgeFraction
	}
	if cfg.RegionPadding <= 0 {
		cfg.RegionPadding = def.RegionPadding
	}
	return cfg
}
