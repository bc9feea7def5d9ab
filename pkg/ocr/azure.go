package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/disintegration/imaging"
)

// defaultAzureWordConfidence stands in for per-word confidence, which the
// printed-text API does not report. Kept above the orchestrator's accept
// threshold so a successful Azure pass is normally accepted.
const defaultAzureWordConfidence = 0.92

// Azure is the high-accuracy remote engine backed by the Computer Vision
// printed-text API.
type Azure struct {
	client         *computervision.BaseClient
	endpoint       string
	apiKey         string
	WordConfidence float64
	BandTolerance  int
}

// NewAzure configures the remote engine. Empty endpoint or key leaves the
// engine unavailable, which the orchestrator skips silently.
func NewAzure(endpoint, apiKey string) *Azure {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &Azure{
		client:         &client,
		endpoint:       endpoint,
		apiKey:         apiKey,
		WordConfidence: defaultAzureWordConfidence,
	}
}

func (a *Azure) Name() string { return "azure-computervision" }

func (a *Azure) Available() bool {
	return a != nil && a.endpoint != "" && a.apiKey != ""
}

func (a *Azure) Recognize(ctx context.Context, img image.Image, mode Mode) (*Result, error) {
	if mode != ModeFullPage {
		return nil, ErrUnsupportedMode
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode for azure: %w", err)
	}
	reader := io.NopCloser(bytes.NewReader(buf.Bytes()))
	res, err := a.client.RecognizePrintedTextInStream(ctx, true, reader, computervision.OcrLanguages(computervision.En))
	if err != nil {
		return nil, fmt.Errorf("azure recognize: %w", err)
	}
	var tokens []Token
	if res.Regions != nil {
		for _, region := range *res.Regions {
			if region.Lines == nil {
				continue
			}
			for _, line := range *region.Lines {
				if line.Words == nil {
					continue
				}
				for _, word := range *line.Words {
					if word.Text == nil || word.BoundingBox == nil {
						continue
					}
					x, y, w, h, ok := parseAzureBox(*word.BoundingBox)
					if !ok {
						continue
					}
					tokens = append(tokens, Token{
						Text:       *word.Text,
						Confidence: a.WordConfidence,
						X:          x, Y: y, W: w, H: h,
					})
				}
			}
		}
	}
	return assemble(tokens, a.BandTolerance), nil
}

// parseAzureBox decodes the API's "x,y,w,h" bounding box string.
func parseAzureBox(s string) (x, y, w, h int, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 4 {
		return 0, 0, 0, 0, false
	}
	vals := make([]int, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], true
}
