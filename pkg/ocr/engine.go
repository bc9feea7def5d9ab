package ocr

import (
	"context"
	"image"
)

// Token is one recognized text fragment with its page position.
type Token struct {
	Text       string
	Confidence float64 // 0..1
	X, Y, W, H int
}

// Result is the output of one recognition pass.
type Result struct {
	Text            string
	Tokens          []Token
	MeanConfidence  float64
	LineConfidences []float64
}

// Mode selects how an engine segments the page.
type Mode int

const (
	// ModeFullPage assumes one uniform block of text.
	ModeFullPage Mode = iota
	// ModeSingleColumn forces single-column segmentation.
	ModeSingleColumn
	// ModeDigits restricts the character set to digits and currency marks,
	// used for the targeted price-region pass.
	ModeDigits
)

// Engine is any OCR backend, local or remote. The orchestrator only depends
// on this contract.
type Engine interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, img image.Image, mode Mode) (*Result, error)
}

func meanConfidence(tokens []Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tokens {
		sum += t.Confidence
	}
	return sum / float64(len(tokens))
}
