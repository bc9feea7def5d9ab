package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// digitWhitelist biases the classifier toward price characters during the
// targeted price-region pass.
const digitWhitelist = "0123456789.,-$€£ "

// Tesseract runs a local tesseract engine through gosseract. It supports all
// modes, including the restricted digit character set.
type Tesseract struct {
	Lang          string
	BandTolerance int
}

// NewTesseract returns an engine using the given language ("eng" if empty).
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Lang: lang}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Available is true whenever the binding is linked in; a broken installation
// surfaces as a Recognize error, which the orchestrator treats as a skip.
func (t *Tesseract) Available() bool { return t != nil }

func (t *Tesseract) Recognize(ctx context.Context, img image.Image, mode Mode) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Lang); err != nil {
		return nil, fmt.Errorf("tesseract language %q: %w", t.Lang, err)
	}
	_ = client.SetVariable("preserve_interword_spaces", "1")
	switch mode {
	case ModeFullPage:
		_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	case ModeSingleColumn:
		_ = client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN)
	case ModeDigits:
		_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
		_ = client.SetWhitelist(digitWhitelist)
		_ = client.SetVariable("classify_bln_numeric_mode", "1")
	default:
		return nil, ErrUnsupportedMode
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode for tesseract: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("tesseract set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract recognize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract word boxes: %w", err)
	}
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		w := b.Box.Dx()
		h := b.Box.Dy()
		if b.Word == "" || w <= 0 || h <= 0 {
			continue
		}
		tokens = append(tokens, Token{
			Text:       b.Word,
			Confidence: b.Confidence / 100,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			W:          w,
			H:          h,
		})
	}
	res := assemble(tokens, t.BandTolerance)
	if res.Text == "" {
		res.Text = text
	}
	return res, nil
}
