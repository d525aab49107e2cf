package h264decoder

/*
#cgo pkg-config: libavcodec libavutil
#include <libavcodec/avcodec.h>

static int parse_packet(AVCodecParserContext *parser, AVCodecContext *codec,
                        AVPacket *pkt, const uint8_t *buf, int size) {
    return av_parser_parse2(parser, codec, &pkt->data, &pkt->size,
                            buf, size, AV_NOPTS_VALUE, AV_NOPTS_VALUE, 0);
}
*/
import "C"

import (
	"math"
	"unsafe"
)

// bitstreamParser splits an Annex-B byte stream into access units. The
// assembled access unit lives in pkt until the next parse call.
type bitstreamParser struct {
	ctx *C.AVCodecParserContext
	pkt *C.AVPacket
}

func newBitstreamParser() (*bitstreamParser, error) {
	p := &bitstreamParser{}
	p.ctx = C.av_parser_init(C.AV_CODEC_ID_H264)
	if p.ctx == nil {
		return nil, ErrParserInit
	}
	p.pkt = C.av_packet_alloc()
	if p.pkt == nil {
		C.av_parser_close(p.ctx)
		return nil, ErrPacketAlloc
	}
	return p, nil
}

// maxParseInput is the most the parser takes per call; its length is a C int.
var maxParseInput = math.MaxInt32

// parse feeds data to the parser and reports how many bytes it took and
// whether pkt now holds a complete access unit. Empty data flushes the
// access unit the parser is still holding.
//
// pkt.data may point into data, so the caller keeps data pinned until the
// packet has been decoded and released.
func (p *bitstreamParser) parse(codec *C.AVCodecContext, data []byte) (int, bool) {
	if p.ctx == nil {
		return 0, false
	}
	data = data[:min(len(data), maxParseInput)]
	var buf *C.uint8_t
	if len(data) > 0 {
		buf = (*C.uint8_t)(unsafe.Pointer(&data[0]))
	}
	n := C.parse_packet(p.ctx, codec, p.pkt, buf, C.int(len(data)))
	if n < 0 {
		// the access unit ended in bytes taken by an earlier call
		n = 0
	}
	return int(n), p.pkt.size > 0
}

// release drops the reference to the current access unit.
func (p *bitstreamParser) release() {
	p.pkt.data = nil
	p.pkt.size = 0
}

// reset discards all lookahead state.
func (p *bitstreamParser) reset() error {
	p.release()
	if p.ctx != nil {
		C.av_parser_close(p.ctx)
	}
	p.ctx = C.av_parser_init(C.AV_CODEC_ID_H264)
	if p.ctx == nil {
		return ErrParserInit
	}
	return nil
}

func (p *bitstreamParser) close() {
	if p.ctx != nil {
		C.av_parser_close(p.ctx)
		p.ctx = nil
	}
	if p.pkt != nil {
		C.av_packet_free(&p.pkt)
	}
}
