// Package ggrenderer turns packed decoder output into snapshot images using
// the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/h264stream/pkg/ports"
)

const captionPadding = 4

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// ToImage copies a packed BGR24 or RGB24 frame into a new RGBA image.
func (r *Renderer) ToImage(frame ports.RGBFrame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	ri, bi := 0, 2
	if frame.Order == ports.OrderBGR24 {
		ri, bi = 2, 0
	}
	for y := 0; y < frame.Height; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+frame.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+frame.Width*4]
		for x := 0; x < frame.Width; x++ {
			dst[x*4+0] = src[x*3+ri]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+bi]
			dst[x*4+3] = 0xff
		}
	}
	return img
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Annotate draws text on a translucent strip along the bottom of a copy of img.
func (r *Renderer) Annotate(img image.Image, text string) image.Image {
	dc := gg.NewContextForImage(img)
	_, th := dc.MeasureString(text)
	strip := th + 2*captionPadding

	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetColor(color.RGBA{A: 0xa0})
	dc.DrawRectangle(0, h-strip, w, strip)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(text, captionPadding, h-strip/2, 0, 0.35)
	return dc.Image()
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// FitWidth returns the size of a w x h picture scaled down to at most
// maxWidth pixels wide. A non-positive maxWidth keeps the size.
func FitWidth(w, h, maxWidth int) (int, int) {
	if maxWidth <= 0 || w <= maxWidth {
		return w, h
	}
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}
