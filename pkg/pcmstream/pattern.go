package pcmstream

import "image"

// Solid returns a 4:2:0 image filled with one color.
func Solid(width, height int, y, cb, cr uint8) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	fill(img.Y, y)
	fill(img.Cb, cb)
	fill(img.Cr, cr)
	return img
}

// TestPattern returns a 4:2:0 image with diagonal gradients that move with
// index. All samples stay within limited range.
func TestPattern(width, height, index int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Y[img.YOffset(x, y)] = limited(x+y+index*7, 16, 235)
		}
	}
	cw, ch := (width+1)/2, (height+1)/2
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			off := y*img.CStride + x
			img.Cb[off] = limited(x*3+index*5, 16, 240)
			img.Cr[off] = limited(y*3+index*11, 16, 240)
		}
	}
	return img
}

// limited folds v into [lo, hi].
func limited(v, lo, hi int) uint8 {
	span := hi - lo + 1
	return uint8(lo + v%span)
}

func fill(b []byte, v uint8) {
	for i := range b {
		b[i] = v
	}
}
