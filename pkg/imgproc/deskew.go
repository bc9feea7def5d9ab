package imgproc

import "math"

const darkThreshold = 128

// DetectSkew scans candidate angles in [-maxDeg, +maxDeg] at the given step
// and returns the angle whose row projection of dark pixels has the highest
// variance. A well-aligned receipt produces sharply peaked row bands, so the
// winning angle is the page's skew.
func DetectSkew(g *Gray, maxDeg, stepDeg float64) float64 {
	if maxDeg <= 0 {
		maxDeg = 15
	}
	if stepDeg <= 0 {
		stepDeg = 0.5
	}
	type pt struct{ dx, dy float64 }
	cx := float64(g.W-1) / 2
	cy := float64(g.H-1) / 2
	var dark []pt
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Pix[y*g.W+x] < darkThreshold {
				dark = append(dark, pt{float64(x) - cx, float64(y) - cy})
			}
		}
	}
	if len(dark) == 0 {
		return 0
	}
	bestAngle, bestScore := 0.0, -1.0
	diag := int(math.Hypot(float64(g.W), float64(g.H))) + 1
	counts := make([]int, 2*diag+1)
	for a := -maxDeg; a <= maxDeg+1e-9; a += stepDeg {
		rad := a * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		for i := range counts {
			counts[i] = 0
		}
		for _, p := range dark {
			// row coordinate of the pixel after undoing a rotation by angle a
			r := int(math.Round(cos*p.dy-sin*p.dx)) + diag
			if r >= 0 && r < len(counts) {
				counts[r]++
			}
		}
		var sum, sumSq float64
		for _, c := range counts {
			sum += float64(c)
			sumSq += float64(c) * float64(c)
		}
		n := float64(len(counts))
		meanC := sum / n
		variance := sumSq/n - meanC*meanC
		if variance > bestScore {
			bestScore = variance
			bestAngle = a
		}
	}
	return bestAngle
}

// Rotate rotates the raster counter-clockwise by deg about its center using
// nearest-neighbor sampling. Pixels sampled outside the source are white.
func Rotate(g *Gray, deg float64) *Gray {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(g.W-1) / 2
	cy := float64(g.H-1) / 2
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		dy := float64(y) - cy
		for x := 0; x < g.W; x++ {
			dx := float64(x) - cx
			// inverse mapping: where did this output pixel come from
			sx := int(math.Round(cos*dx + sin*dy + cx))
			sy := int(math.Round(-sin*dx + cos*dy + cy))
			if sx >= 0 && sx < g.W && sy >= 0 && sy < g.H {
				out.Pix[y*g.W+x] = g.Pix[sy*g.W+sx]
			}
		}
	}
	return out
}

// Deskew detects the skew angle and rotates by its negation. It returns the
// corrected raster together with the detected angle for diagnostics.
func Deskew(g *Gray, maxDeg, stepDeg float64) (*Gray, float64) {
	angle := DetectSkew(g, maxDeg, stepDeg)
	if math.Abs(angle) < stepDeg/2 {
		return g, 0
	}
	return Rotate(g, -angle), angle
}
