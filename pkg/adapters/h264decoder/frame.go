package h264decoder

/*
#cgo pkg-config: libavutil
#include <libavutil/frame.h>
#include <libavutil/pixdesc.h>

static int plane_height(const AVFrame *f, int plane) {
    const AVPixFmtDescriptor *desc = av_pix_fmt_desc_get(f->format);
    if (desc == NULL) {
        return 0;
    }
    if (plane == 1 || plane == 2) {
        return -((-f->height) >> desc->log2_chroma_h);
    }
    return f->height;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/user/h264stream/pkg/ports"
)

var _ ports.DecodedFrame = (*Frame)(nil)

// Frame is a decoded planar picture.
//
// Frames returned by Decoder.Parse and Decoder.Drain belong to the decoder
// and are overwritten by its next call. Use Copy to keep one longer.
type Frame struct {
	f     *C.AVFrame
	owned bool
}

// NewFrame allocates a caller-owned frame with uninitialized planes.
// Release it with Free.
func NewFrame(width, height int, format PixelFormat) (*Frame, error) {
	if width <= 0 || height <= 0 || format.planeCount() == 0 {
		return nil, fmt.Errorf("%w: %dx%d %s", ErrUnsupportedFrame, width, height, format)
	}
	f := C.av_frame_alloc()
	if f == nil {
		return nil, ErrFrameAlloc
	}
	f.width = C.int(width)
	f.height = C.int(height)
	f.format = C.int(format)
	if res := C.av_frame_get_buffer(f, 0); res < 0 {
		C.av_frame_free(&f)
		return nil, fmt.Errorf("%w: %s", ErrFrameAlloc, avError(res))
	}
	return &Frame{f: f, owned: true}, nil
}

// Size returns the picture width and height.
func (fr *Frame) Size() (width, height int) {
	return int(fr.f.width), int(fr.f.height)
}

// RowSize returns the stride of the first plane in bytes.
func (fr *Frame) RowSize() int {
	return int(fr.f.linesize[0])
}

// PixelFormat returns the frame's pixel format tag.
func (fr *Frame) PixelFormat() PixelFormat {
	return PixelFormat(fr.f.format)
}

// FullRange reports whether the frame signals full-range (JPEG) levels,
// either by its color range or by a YUVJ format tag.
func (fr *Frame) FullRange() bool {
	return fr.f.color_range == C.AVCOL_RANGE_JPEG || fr.PixelFormat().IsFullRange()
}

// PlaneCount returns the number of data planes.
func (fr *Frame) PlaneCount() int {
	return fr.PixelFormat().planeCount()
}

// Stride returns the row stride of plane i in bytes.
func (fr *Frame) Stride(i int) int {
	if i < 0 || i >= fr.PlaneCount() {
		return 0
	}
	return int(fr.f.linesize[i])
}

// Plane returns the bytes of plane i, including row padding. The slice
// aliases the frame's storage and shares its lifetime.
func (fr *Frame) Plane(i int) []byte {
	if i < 0 || i >= fr.PlaneCount() || fr.f.data[i] == nil {
		return nil
	}
	stride := int(fr.f.linesize[i])
	rows := int(C.plane_height(fr.f, C.int(i)))
	if stride <= 0 || rows <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(fr.f.data[i])), stride*rows)
}

// Copy returns a caller-owned deep copy of the frame.
func (fr *Frame) Copy() (*Frame, error) {
	c, err := NewFrame(int(fr.f.width), int(fr.f.height), fr.PixelFormat())
	if err != nil {
		return nil, err
	}
	if res := C.av_frame_copy(c.f, fr.f); res < 0 {
		c.Free()
		return nil, fmt.Errorf("%w: %s", ErrFrameAlloc, avError(res))
	}
	C.av_frame_copy_props(c.f, fr.f)
	return c, nil
}

// Free releases a frame created by NewFrame or Copy. It does nothing for
// frames owned by a decoder.
func (fr *Frame) Free() {
	if fr.owned && fr.f != nil {
		C.av_frame_free(&fr.f)
	}
}
