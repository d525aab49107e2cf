package h264decoder

import (
	"image"
	"testing"

	"github.com/user/h264stream/pkg/adapters/logger"
	"github.com/user/h264stream/pkg/pcmstream"
	"github.com/user/h264stream/pkg/ports"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := New(logger.NewNoop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func newTestConverter(t *testing.T, order ports.PixelOrder) *Converter {
	t.Helper()
	c, err := NewConverter(order, logger.NewNoop())
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// encodeStream concatenates one lossless access unit per image.
func encodeStream(t *testing.T, imgs ...*image.YCbCr) []byte {
	t.Helper()
	enc := &pcmstream.Encoder{}
	var out []byte
	for i, img := range imgs {
		au, err := enc.Encode(img)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", i, err)
		}
		out = append(out, au...)
	}
	return out
}

// feed pushes data through d in chunks of the given size, drains it and
// calls fn for every frame.
func feed(t *testing.T, d *Decoder, data []byte, chunk int, fn func(*Frame)) {
	t.Helper()
	for off := 0; off < len(data); off += chunk {
		end := off + chunk
		if end > len(data) {
			end = len(data)
		}
		buf := data[off:end]
		stalled := 0
		for len(buf) > 0 {
			n, f := d.Parse(buf)
			if f != nil {
				fn(f)
			}
			if n == 0 && f == nil {
				stalled++
				if stalled > 3 {
					t.Fatalf("parser made no progress at offset %d", off)
				}
			} else {
				stalled = 0
			}
			buf = buf[n:]
		}
	}
	for f := d.Drain(); f != nil; f = d.Drain() {
		fn(f)
	}
}

// visible returns the picture samples of a 4:2:0 frame without row padding.
func visible(t *testing.T, f *Frame) []byte {
	t.Helper()
	w, h := f.Size()
	var out []byte
	for i, pw, ph := 0, w, h; i < 3; i++ {
		if i == 1 {
			pw, ph = (w+1)/2, (h+1)/2
		}
		plane, stride := f.Plane(i), f.Stride(i)
		if len(plane) < stride*ph {
			t.Fatalf("plane %d has %d bytes, want at least %d", i, len(plane), stride*ph)
		}
		for y := 0; y < ph; y++ {
			out = append(out, plane[y*stride:y*stride+pw]...)
		}
	}
	return out
}

// samples returns the planes of img in the layout produced by visible.
func samples(img *image.YCbCr) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var out []byte
	for y := 0; y < h; y++ {
		out = append(out, img.Y[y*img.YStride:y*img.YStride+w]...)
	}
	for _, plane := range [][]byte{img.Cb, img.Cr} {
		for y := 0; y < (h+1)/2; y++ {
			out = append(out, plane[y*img.CStride:y*img.CStride+(w+1)/2]...)
		}
	}
	return out
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
