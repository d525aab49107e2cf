package h264decoder

/*
#cgo pkg-config: libavutil
#include <libavutil/pixfmt.h>
#include <libavutil/pixdesc.h>
*/
import "C"

// PixelFormat is the engine's pixel format tag of a frame.
type PixelFormat int

// Pixel formats produced by the H.264 decoder or accepted by the converter.
const (
	FormatNone     PixelFormat = C.AV_PIX_FMT_NONE
	FormatYUV420P  PixelFormat = C.AV_PIX_FMT_YUV420P
	FormatYUVJ420P PixelFormat = C.AV_PIX_FMT_YUVJ420P
	FormatYUV422P  PixelFormat = C.AV_PIX_FMT_YUV422P
	FormatYUVJ422P PixelFormat = C.AV_PIX_FMT_YUVJ422P
	FormatYUV444P  PixelFormat = C.AV_PIX_FMT_YUV444P
	FormatYUVJ444P PixelFormat = C.AV_PIX_FMT_YUVJ444P
	FormatNV12     PixelFormat = C.AV_PIX_FMT_NV12
	FormatGray8    PixelFormat = C.AV_PIX_FMT_GRAY8
	FormatBGR24    PixelFormat = C.AV_PIX_FMT_BGR24
	FormatRGB24    PixelFormat = C.AV_PIX_FMT_RGB24
)

// String returns the engine's name for the format.
func (p PixelFormat) String() string {
	name := C.av_get_pix_fmt_name(C.enum_AVPixelFormat(p))
	if name == nil {
		return "none"
	}
	return C.GoString(name)
}

// IsFullRange reports whether the format is one of the deprecated
// full-range (JPEG) YUV tags.
func (p PixelFormat) IsFullRange() bool {
	switch p {
	case FormatYUVJ420P, FormatYUVJ422P, FormatYUVJ444P:
		return true
	}
	return false
}

// normalized maps the deprecated full-range 4:2:0 tag onto its standard
// counterpart before a scaler is built for it.
func (p PixelFormat) normalized() PixelFormat {
	if p == FormatYUVJ420P {
		return FormatYUV420P
	}
	return p
}

// planeCount returns the number of data planes of the format, or 0 when unknown.
func (p PixelFormat) planeCount() int {
	n := int(C.av_pix_fmt_count_planes(C.enum_AVPixelFormat(p)))
	if n < 0 {
		return 0
	}
	return n
}
