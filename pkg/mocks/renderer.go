package mocks

import (
	"image"

	"github.com/user/h264stream/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	ToImageFunc     func(frame ports.RGBFrame) *image.RGBA
	ResizeImageFunc func(img image.Image, width, height int) image.Image
	AnnotateFunc    func(img image.Image, text string) image.Image
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	// Recorded calls for verification
	Annotations []string
}

func (m *Renderer) ToImage(frame ports.RGBFrame) *image.RGBA {
	if m.ToImageFunc != nil {
		return m.ToImageFunc(frame)
	}
	return image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) Annotate(img image.Image, text string) image.Image {
	m.Annotations = append(m.Annotations, text)
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(img, text)
	}
	return img
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	b := img.Bounds()
	return []byte{byte(format), byte(b.Dx()), byte(b.Dy())}, nil
}

var _ ports.Renderer = (*Renderer)(nil)
