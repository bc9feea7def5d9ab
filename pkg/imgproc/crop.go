package imgproc

// BorderCrop finds the bounding box of pixels darker than the brightness
// threshold, pads it, and crops to it. Returns nil when no content pixel
// exists (a degenerate crop the caller must reject).
func BorderCrop(g *Gray, threshold uint8, padding int) *Gray {
	minX, minY := g.W, g.H
	maxX, maxY := -1, -1
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Pix[y*g.W+x] < threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return nil
	}
	minX -= padding
	minY -= padding
	maxX += padding
	maxY += padding
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= g.W {
		maxX = g.W - 1
	}
	if maxY >= g.H {
		maxY = g.H - 1
	}
	w := maxX - minX + 1
	h := maxY - minY + 1
	out := &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		copy(out.Pix[y*w:(y+1)*w], g.Pix[(minY+y)*g.W+minX:(minY+y)*g.W+minX+w])
	}
	return out
}
