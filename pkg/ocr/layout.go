package ocr

import (
	"regexp"
	"sort"
	"strings"
)

// priceLikeRE matches a price-shaped token: 12.99, 1,299.00, $8.99, 8.80-.
var priceLikeRE = regexp.MustCompile(`^[\$€£]?\d{1,4}(?:[.,]\d{3})*[.,]\d{2}-?$`)

// bandTokens groups tokens into horizontal bands by Y position. Tokens whose
// top edge lies within tolerance of the band's running center join that band;
// within each band tokens are sorted left to right.
func bandTokens(tokens []Token, tolerance int) [][]Token {
	if len(tokens) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = 10
	}
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var bands [][]Token
	var cur []Token
	curY := sorted[0].Y
	for _, t := range sorted {
		if len(cur) > 0 && t.Y-curY > tolerance {
			bands = append(bands, cur)
			cur = nil
		}
		if len(cur) == 0 {
			curY = t.Y
		} else {
			// running center keeps slightly sloped lines in one band
			curY = (curY*len(cur) + t.Y) / (len(cur) + 1)
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		bands = append(bands, cur)
	}
	for _, b := range bands {
		sort.Slice(b, func(i, j int) bool { return b[i].X < b[j].X })
	}
	return bands
}

// detectMultiColumn flags a column gap in a band where the horizontal gap
// between adjacent tokens exceeds gapFactor times the band's average token
// width. The page is multi-column when more than minFraction of bands with at
// least two tokens show a gap.
func detectMultiColumn(tokens []Token, tolerance int, gapFactor, minFraction float64) bool {
	bands := bandTokens(tokens, tolerance)
	gapped, eligible := 0, 0
	for _, band := range bands {
		if len(band) < 2 {
			continue
		}
		eligible++
		avgW := 0.0
		for _, t := range band {
			avgW += float64(t.W)
		}
		avgW /= float64(len(band))
		for i := 1; i < len(band); i++ {
			gap := float64(band[i].X - (band[i-1].X + band[i-1].W))
			if gap > gapFactor*avgW {
				gapped++
				break
			}
		}
	}
	if eligible == 0 {
		return false
	}
	return float64(gapped)/float64(eligible) > minFraction
}

// boxesOverlap reports whether two token boxes intersect.
func boxesOverlap(a, b Token) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// mergeTokens folds targeted price tokens into the base set: where a targeted
// token overlaps an existing one, the higher-confidence token wins; otherwise
// the targeted token is appended.
func mergeTokens(base, targeted []Token) []Token {
	out := make([]Token, len(base))
	copy(out, base)
	for _, t := range targeted {
		replaced := false
		for i := range out {
			if boxesOverlap(out[i], t) {
				if t.Confidence > out[i].Confidence {
					out[i] = t
				}
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, t)
		}
	}
	return out
}

// assemble re-sorts tokens into reading order (top-to-bottom bands, then left
// to right), rebuilds the full text, and recomputes per-line mean confidence.
func assemble(tokens []Token, tolerance int) *Result {
	bands := bandTokens(tokens, tolerance)
	var (
		lines    []string
		lineConf []float64
		ordered  []Token
	)
	for _, band := range bands {
		words := make([]string, 0, len(band))
		sum := 0.0
		for _, t := range band {
			words = append(words, t.Text)
			sum += t.Confidence
			ordered = append(ordered, t)
		}
		lines = append(lines, strings.Join(words, " "))
		lineConf = append(lineConf, sum/float64(len(band)))
	}
	return &Result{
		Text:            strings.Join(lines, "\n"),
		Tokens:          ordered,
		MeanConfidence:  meanConfidence(ordered),
		LineConfidences: lineConf,
	}
}
