package ports

// PixelOrder is the byte order of a packed 24-bit pixel.
type PixelOrder string

const (
	// OrderBGR24 stores blue, green, red. It is the default output order.
	OrderBGR24 PixelOrder = "bgr24"
	// OrderRGB24 stores red, green, blue.
	OrderRGB24 PixelOrder = "rgb24"
)

// ParsePixelOrder parses a pixel order name, defaulting to OrderBGR24.
func ParsePixelOrder(s string) PixelOrder {
	if PixelOrder(s) == OrderRGB24 {
		return OrderRGB24
	}
	return OrderBGR24
}

// DecodedFrame is a planar picture owned by a StreamDecoder.
// It is only valid until the next call on the decoder that produced it.
type DecodedFrame interface {
	// Size returns the picture width and height.
	Size() (width, height int)

	// RowSize returns the stride of the first plane in bytes.
	RowSize() int
}

// RGBFrame is a packed 24-bit picture written into caller-owned storage.
type RGBFrame struct {
	Width  int
	Height int
	Stride int
	Order  PixelOrder

	// Pix holds Height rows of Stride bytes. It aliases the buffer handed to
	// the converter.
	Pix []byte
}

// DecodeStats counts what a StreamDecoder has done so far.
type DecodeStats struct {
	BytesConsumed int64
	Packets       int
	Frames        int
	// Rejected counts packets the decoding engine refused.
	Rejected int
}

// StreamDecoder turns an elementary H.264 byte stream into decoded frames.
type StreamDecoder interface {
	// ParseFrame consumes bytes from data and returns how many were used
	// together with at most one decoded frame. A nil frame means none was
	// ready. The caller re-submits data[consumed:] on the next call.
	ParseFrame(data []byte) (int, DecodedFrame)

	// DrainFrame returns frames still held by the decoder at end of stream,
	// one per call, and nil once empty.
	DrainFrame() DecodedFrame

	// Stats reports counters for the stream so far.
	Stats() DecodeStats

	// Close releases decoder resources.
	Close()
}

// FrameConverter converts decoded frames into packed 24-bit pixels.
type FrameConverter interface {
	// PredictSize returns the number of bytes ConvertFrame needs for a
	// picture of the given size.
	PredictSize(width, height int) int

	// ConvertFrame writes frame into dst and describes the result.
	ConvertFrame(frame DecodedFrame, dst []byte) (RGBFrame, error)

	// Close releases converter resources.
	Close()
}

// DecoderFactory creates one decoder and one converter per stream.
type DecoderFactory interface {
	NewDecoder() (StreamDecoder, error)
	NewConverter(order PixelOrder) (FrameConverter, error)
}
