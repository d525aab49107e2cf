package h264decoder

/*
#cgo pkg-config: libavcodec libavutil
#include <libavcodec/avcodec.h>
#include <libavutil/error.h>

static int err_again(void) { return AVERROR(EAGAIN); }
static int err_eof(void) { return AVERROR_EOF; }
*/
import "C"

import (
	"errors"
	"fmt"
)

// frameDecoder owns the codec context and the single frame it decodes into.
type frameDecoder struct {
	codec *C.AVCodecContext
	frame *C.AVFrame
}

func newFrameDecoder() (*frameDecoder, error) {
	codec := C.avcodec_find_decoder(C.AV_CODEC_ID_H264)
	if codec == nil {
		return nil, ErrDecoderNotFound
	}

	d := &frameDecoder{}
	d.codec = C.avcodec_alloc_context3(codec)
	if d.codec == nil {
		return nil, ErrContextAlloc
	}
	d.codec.thread_count = 1

	if res := C.avcodec_open2(d.codec, codec, nil); res < 0 {
		C.avcodec_free_context(&d.codec)
		return nil, fmt.Errorf("%w: %s", ErrContextOpen, avError(res))
	}

	d.frame = C.av_frame_alloc()
	if d.frame == nil {
		C.avcodec_free_context(&d.codec)
		return nil, ErrFrameAlloc
	}
	return d, nil
}

// errAgain reports that the engine's output queue is full.
var errAgain = fmt.Errorf("%w: output queue full", ErrDecodeFailed)

// decode submits pkt and tries to receive one frame.
func (d *frameDecoder) decode(pkt *C.AVPacket) (bool, error) {
	return submit(func() error { return d.send(pkt) }, d.receive)
}

// submit sends one packet and receives at most one frame. A full output queue
// is drained by one frame before the packet is sent again, so every packet
// reaches the engine exactly once or is reported as rejected. The error may
// accompany a received frame.
func submit(send func() error, receive func() (bool, error)) (bool, error) {
	err := send()
	if errors.Is(err, errAgain) {
		got, rerr := receive()
		if rerr != nil {
			return false, rerr
		}
		if !got {
			return false, fmt.Errorf("%w: no frame to make room", errAgain)
		}
		return true, send()
	}
	if err != nil {
		return false, err
	}
	return receive()
}

func (d *frameDecoder) send(pkt *C.AVPacket) error {
	res := C.avcodec_send_packet(d.codec, pkt)
	switch {
	case res == C.err_again():
		return errAgain
	case res < 0:
		return fmt.Errorf("%w: %s", ErrDecodeFailed, avError(res))
	}
	return nil
}

// receive fetches the next frame, if the engine has one ready.
func (d *frameDecoder) receive() (bool, error) {
	res := C.avcodec_receive_frame(d.codec, d.frame)
	switch {
	case res == 0:
		return true, nil
	case res == C.err_again(), res == C.err_eof():
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrDecodeFailed, avError(res))
	}
}

// sendEOF enters draining mode: frames held for reordering become receivable.
func (d *frameDecoder) sendEOF() error {
	if res := C.avcodec_send_packet(d.codec, nil); res < 0 && res != C.err_eof() {
		return fmt.Errorf("%w: %s", ErrDecodeFailed, avError(res))
	}
	return nil
}

// flush drops reference and reorder buffers and leaves draining mode.
func (d *frameDecoder) flush() {
	C.avcodec_flush_buffers(d.codec)
	C.av_frame_unref(d.frame)
}

func (d *frameDecoder) close() {
	if d.frame != nil {
		C.av_frame_free(&d.frame)
	}
	if d.codec != nil {
		C.avcodec_free_context(&d.codec)
	}
}

// avError returns the engine's description of an error code.
func avError(code C.int) string {
	var buf [64]C.char
	if C.av_strerror(code, &buf[0], C.size_t(len(buf))) < 0 {
		return fmt.Sprintf("error %d", int(code))
	}
	return C.GoString(&buf[0])
}
