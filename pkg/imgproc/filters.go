package imgproc

import "math"

// gaussianKernel builds a normalized 1-D kernel for the given sigma.
func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 1
	}
	radius := int(math.Ceil(3 * sigma))
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// BilateralFilter smooths noise while keeping character edges: each pixel is
// replaced by the average of its neighbors within diameter d, weighted by the
// product of a spatial Gaussian and an intensity-difference Gaussian.
func BilateralFilter(g *Gray, d int, sigmaSpace, sigmaColor float64, workers int) *Gray {
	if d < 3 {
		d = 3
	}
	radius := d / 2
	if sigmaSpace <= 0 {
		sigmaSpace = float64(radius)
	}
	if sigmaColor <= 0 {
		sigmaColor = 25
	}
	// precompute the spatial weights once; the intensity term varies per pixel
	spatial := make([]float64, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*(2*radius+1)+(dx+radius)] = math.Exp(-dist / (2 * sigmaSpace * sigmaSpace))
		}
	}
	twoColorSq := 2 * sigmaColor * sigmaColor
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, g.W*g.H)}
	parallelRows(g.H, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.W; x++ {
				center := float64(g.Pix[y*g.W+x])
				var sum, wsum float64
				for dy := -radius; dy <= radius; dy++ {
					yy := y + dy
					if yy < 0 || yy >= g.H {
						continue
					}
					for dx := -radius; dx <= radius; dx++ {
						xx := x + dx
						if xx < 0 || xx >= g.W {
							continue
						}
						v := float64(g.Pix[yy*g.W+xx])
						diff := v - center
						w := spatial[(dy+radius)*(2*radius+1)+(dx+radius)] * math.Exp(-(diff*diff)/twoColorSq)
						sum += v * w
						wsum += w
					}
				}
				out.Pix[y*g.W+x] = clampU8(sum / wsum)
			}
		}
	})
	return out
}

// AdaptiveThreshold binarizes by comparing each pixel against the
// Gaussian-weighted mean of its block neighborhood minus a constant bias.
// Handles uneven lighting far better than a single global threshold.
func AdaptiveThreshold(g *Gray, block int, bias float64, workers int) *Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	sigma := float64(block) / 6.0
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	// separable blur gives the local Gaussian mean
	mean := blurPass(blurPass(g, kernel, radius, true, workers), kernel, radius, false, workers)
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, g.W*g.H)}
	parallelRows(g.H, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.W; x++ {
				i := y*g.W + x
				if float64(g.Pix[i]) < float64(mean.Pix[i])-bias {
					out.Pix[i] = 0
				} else {
					out.Pix[i] = 255
				}
			}
		}
	})
	return out
}

// blurPass runs one direction of a separable Gaussian blur.
func blurPass(g *Gray, kernel []float64, radius int, horizontal bool, workers int) *Gray {
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, g.W*g.H)}
	parallelRows(g.H, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.W; x++ {
				var sum, wsum float64
				for k := -radius; k <= radius; k++ {
					xx, yy := x, y
					if horizontal {
						xx += k
					} else {
						yy += k
					}
					if xx < 0 || xx >= g.W || yy < 0 || yy >= g.H {
						continue
					}
					w := kernel[k+radius]
					sum += w * float64(g.Pix[yy*g.W+xx])
					wsum += w
				}
				out.Pix[y*g.W+x] = clampU8(sum / wsum)
			}
		}
	})
	return out
}

// FlattenBackground forces pixels above the brightness threshold to a uniform
// gray, suppressing glare artifacts left after binarization.
func FlattenBackground(g *Gray, above, to uint8) *Gray {
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, g.W*g.H)}
	for i, v := range g.Pix {
		if v > above {
			out.Pix[i] = to
		} else {
			out.Pix[i] = v
		}
	}
	return out
}

// UnsharpMask sharpens via a separable Gaussian blur:
// out = original + amount*(original - blurred), clamped.
func UnsharpMask(g *Gray, sigma, amount float64, workers int) *Gray {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	blurred := blurPass(blurPass(g, kernel, radius, true, workers), kernel, radius, false, workers)
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, g.W*g.H)}
	parallelRows(g.H, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.W; x++ {
				i := y*g.W + x
				orig := float64(g.Pix[i])
				out.Pix[i] = clampU8(orig + amount*(orig-float64(blurred.Pix[i])))
			}
		}
	})
	return out
}
