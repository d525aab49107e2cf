package h264decoder

/*
#cgo pkg-config: libavutil libswscale
#include <libavutil/frame.h>
#include <libavutil/imgutils.h>
#include <libswscale/swscale.h>

static struct SwsContext *cached_context(struct SwsContext *ctx, int w, int h, int src, int dst) {
    return sws_getCachedContext(ctx, w, h, src, w, h, dst, SWS_BILINEAR, NULL, NULL, NULL);
}

// force_limited_range marks source and destination as limited (MPEG) range,
// keeping the coefficients and adjustments already configured.
static int force_limited_range(struct SwsContext *ctx) {
    int *inv_table, *table;
    int src_range, dst_range, brightness, contrast, saturation;
    if (sws_getColorspaceDetails(ctx, &inv_table, &src_range, &table, &dst_range,
                                 &brightness, &contrast, &saturation) == -1) {
        return -1;
    }
    return sws_setColorspaceDetails(ctx, inv_table, 0, table, 0,
                                    brightness, contrast, saturation);
}

static int fill_arrays(AVFrame *f, uint8_t *buf, int format, int w, int h) {
    return av_image_fill_arrays(f->data, f->linesize, buf, format, w, h, 1);
}

static void clear_arrays(AVFrame *f) {
    for (int i = 0; i < AV_NUM_DATA_POINTERS; i++) {
        f->data[i] = NULL;
        f->linesize[i] = 0;
    }
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/user/h264stream/pkg/ports"
)

// ConvertedFrame is a packed 24-bit picture stored in the caller's buffer.
type ConvertedFrame = ports.RGBFrame

type scalerKey struct {
	width, height int
	format        PixelFormat
}

var _ ports.FrameConverter = (*Converter)(nil)

// Converter resamples decoded frames into packed BGR24 or RGB24.
//
// The scaler is built on first use and rebuilt whenever width, height or
// source pixel format change. Source and destination are always treated as
// limited range. Converter never allocates or retains pixel storage.
type Converter struct {
	order  ports.PixelOrder
	dstFmt PixelFormat
	sws    *C.struct_SwsContext
	key    scalerKey
	layout *C.AVFrame
	logger ports.Logger
}

// NewConverter creates a converter writing pixels in the given order.
func NewConverter(order ports.PixelOrder, logger ports.Logger) (*Converter, error) {
	layout := C.av_frame_alloc()
	if layout == nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, ErrFrameAlloc)
	}
	c := &Converter{
		order:  order,
		dstFmt: FormatBGR24,
		layout: layout,
		logger: logger.WithComponent("converter"),
	}
	if order == ports.OrderRGB24 {
		c.dstFmt = FormatRGB24
	} else {
		c.order = ports.OrderBGR24
	}
	return c, nil
}

// Order returns the destination pixel order.
func (c *Converter) Order() ports.PixelOrder {
	return c.order
}

// PredictSize returns the number of bytes Convert writes for a picture of
// the given size, or 0 if the size is invalid.
func (c *Converter) PredictSize(width, height int) int {
	if c.layout == nil {
		return 0
	}
	n := C.fill_arrays(c.layout, nil, C.int(c.dstFmt), C.int(width), C.int(height))
	C.clear_arrays(c.layout)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Convert writes frame into dst as packed 24-bit pixels. dst must hold at
// least PredictSize bytes for the frame's size. The result aliases dst.
func (c *Converter) Convert(frame *Frame, dst []byte) (ConvertedFrame, error) {
	if c.layout == nil {
		return ConvertedFrame{}, ErrClosed
	}
	if frame == nil || frame.f == nil {
		return ConvertedFrame{}, ErrUnsupportedFrame
	}
	w, h := frame.Size()
	need := c.PredictSize(w, h)
	if need == 0 {
		return ConvertedFrame{}, fmt.Errorf("%w: %dx%d", ErrUnsupportedFrame, w, h)
	}
	if len(dst) < need {
		return ConvertedFrame{}, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, need, len(dst))
	}

	key := scalerKey{width: w, height: h, format: frame.PixelFormat().normalized()}
	c.sws = C.cached_context(c.sws, C.int(w), C.int(h), C.int(key.format), C.int(c.dstFmt))
	if c.sws == nil {
		c.key = scalerKey{}
		return ConvertedFrame{}, fmt.Errorf("%w: no scaler for %dx%d %s", ErrConversion, w, h, key.format)
	}
	if key != c.key {
		if C.force_limited_range(c.sws) == -1 {
			c.logger.Debug("Colorspace details unavailable for %s", key.format)
		}
		c.key = key
		c.logger.Debug("Scaler built for %dx%d %s", w, h, key.format)
	}

	var pinner runtime.Pinner
	pinner.Pin(&dst[0])
	defer pinner.Unpin()

	C.fill_arrays(c.layout, (*C.uint8_t)(unsafe.Pointer(&dst[0])), C.int(c.dstFmt), C.int(w), C.int(h))
	stride := int(c.layout.linesize[0])
	res := C.sws_scale(c.sws,
		(**C.uint8_t)(unsafe.Pointer(&frame.f.data[0])), (*C.int)(unsafe.Pointer(&frame.f.linesize[0])),
		0, C.int(h),
		(**C.uint8_t)(unsafe.Pointer(&c.layout.data[0])), (*C.int)(unsafe.Pointer(&c.layout.linesize[0])))
	C.clear_arrays(c.layout)
	if res < 0 {
		return ConvertedFrame{}, fmt.Errorf("%w: %s", ErrConversion, avError(res))
	}

	return ConvertedFrame{
		Width:  w,
		Height: h,
		Stride: stride,
		Order:  c.order,
		Pix:    dst[:need],
	}, nil
}

// ConvertFrame implements ports.FrameConverter for frames of this package.
func (c *Converter) ConvertFrame(frame ports.DecodedFrame, dst []byte) (ports.RGBFrame, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return ports.RGBFrame{}, fmt.Errorf("%w: %T", ErrUnsupportedFrame, frame)
	}
	return c.Convert(f, dst)
}

// Close releases the scaler. It is safe to call more than once.
func (c *Converter) Close() {
	if c.sws != nil {
		C.sws_freeContext(c.sws)
		c.sws = nil
	}
	if c.layout != nil {
		C.av_frame_free(&c.layout)
	}
}
