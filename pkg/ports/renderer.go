package ports

import (
	"image"
)

// ImageFormat represents an image encoding format.
type ImageFormat int

const (
	// FormatPNG is lossless PNG.
	FormatPNG ImageFormat = iota
	// FormatJPEG is JPEG with a quality setting.
	FormatJPEG
)

// ParseImageFormat parses "png" or "jpeg"/"jpg", defaulting to FormatPNG.
func ParseImageFormat(s string) ImageFormat {
	switch s {
	case "jpeg", "jpg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// Extension returns the file extension for the format, without a dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// Renderer turns packed frames into encoded snapshot images.
type Renderer interface {
	// ToImage copies a packed 24-bit frame into a new RGBA image.
	ToImage(frame RGBFrame) *image.RGBA

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// Annotate draws a caption strip with text onto a copy of img.
	Annotate(img image.Image, text string) image.Image

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}
