// Package pcmstream synthesizes H.264 Baseline elementary streams whose
// pictures are coded losslessly with I_PCM macroblocks.
//
// Every picture is a self-contained IDR access unit preceded by its SPS and
// PPS, so decoders reproduce the source samples exactly. The streams serve as
// test fixtures and as input for the generate command.
package pcmstream

import (
	"errors"
	"fmt"
	"image"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
)

var (
	// ErrGeometry is returned for images whose size is not a positive multiple of 16.
	ErrGeometry = errors.New("pcmstream: width and height must be positive multiples of 16")

	// ErrSubsampling is returned for images that are not 4:2:0.
	ErrSubsampling = errors.New("pcmstream: only 4:2:0 images are supported")
)

const (
	profileBaseline = 66
	mbTypeIPCM      = 25
	sliceTypeI      = 7

	headerSPS = 0x67
	headerPPS = 0x68
	headerIDR = 0x65
)

// Encoder writes one IDR access unit per image.
type Encoder struct {
	// FullRange sets video_full_range_flag in the sequence parameter set.
	FullRange bool

	idrPicID uint32
}

// Encode returns SPS, PPS and an IDR slice for img in Annex-B format.
func (e *Encoder) Encode(img *image.YCbCr) ([]byte, error) {
	nalus, err := e.EncodeNALUs(img)
	if err != nil {
		return nil, err
	}
	return h264.AnnexB(nalus).Marshal()
}

// EncodeNALUs returns SPS, PPS and an IDR slice for img as separate NAL units.
func (e *Encoder) EncodeNALUs(img *image.YCbCr) ([][]byte, error) {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return nil, ErrSubsampling
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 || w%16 != 0 || h%16 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGeometry, w, h)
	}
	mbW, mbH := w/16, h/16

	sps, err := e.sps(mbW, mbH)
	if err != nil {
		return nil, fmt.Errorf("write SPS: %w", err)
	}
	pps, err := pps()
	if err != nil {
		return nil, fmt.Errorf("write PPS: %w", err)
	}
	idr, err := e.slice(img, mbW, mbH)
	if err != nil {
		return nil, fmt.Errorf("write slice: %w", err)
	}
	e.idrPicID = (e.idrPicID + 1) % 65536

	return [][]byte{sps, pps, idr}, nil
}

func (e *Encoder) sps(mbW, mbH int) ([]byte, error) {
	level := uint(40)
	if mbW*mbH > 8192 {
		level = 51
	}

	w := newRBSPWriter(headerSPS)
	w.Write(profileBaseline, 8)
	w.Write(0xC0, 8) // constraint_set0_flag, constraint_set1_flag
	w.Write(level, 8)
	w.WriteExpGolomb(0) // seq_parameter_set_id
	w.WriteExpGolomb(0) // log2_max_frame_num_minus4
	w.WriteExpGolomb(2) // pic_order_cnt_type
	w.WriteExpGolomb(1) // max_num_ref_frames
	w.flag(false)
	w.WriteExpGolomb(uint(mbW - 1))
	w.WriteExpGolomb(uint(mbH - 1))
	w.flag(true) // frame_mbs_only_flag
	w.flag(true) // direct_8x8_inference_flag
	w.flag(false)

	w.flag(true) // vui_parameters_present_flag
	w.flag(false)
	w.flag(false)
	w.flag(true)  // video_signal_type_present_flag
	w.Write(5, 3) // unspecified video format
	w.flag(e.FullRange)
	w.flag(false)
	w.flag(false)
	w.flag(false)
	w.flag(false)
	w.flag(false)
	w.flag(false)
	w.flag(true) // bitstream_restriction_flag
	w.flag(true)
	w.WriteExpGolomb(0)
	w.WriteExpGolomb(0)
	w.WriteExpGolomb(16)
	w.WriteExpGolomb(16)
	w.WriteExpGolomb(0) // max_num_reorder_frames
	w.WriteExpGolomb(1) // max_dec_frame_buffering
	return w.finish()
}

func pps() ([]byte, error) {
	w := newRBSPWriter(headerPPS)
	w.WriteExpGolomb(0) // pic_parameter_set_id
	w.WriteExpGolomb(0) // seq_parameter_set_id
	w.flag(false)
	w.flag(false)
	w.WriteExpGolomb(0)
	w.WriteExpGolomb(0)
	w.WriteExpGolomb(0)
	w.flag(false)
	w.Write(0, 2)
	w.se(0)
	w.se(0)
	w.se(0)
	w.flag(true) // deblocking_filter_control_present_flag
	w.flag(false)
	w.flag(false)
	return w.finish()
}

func (e *Encoder) slice(img *image.YCbCr, mbW, mbH int) ([]byte, error) {
	w := newRBSPWriter(headerIDR)
	w.WriteExpGolomb(0) // first_mb_in_slice
	w.WriteExpGolomb(sliceTypeI)
	w.WriteExpGolomb(0) // pic_parameter_set_id
	w.Write(0, 4)       // frame_num
	w.WriteExpGolomb(uint(e.idrPicID))
	w.flag(false)       // no_output_of_prior_pics_flag
	w.flag(false)       // long_term_reference_flag
	w.se(0)             // slice_qp_delta
	w.WriteExpGolomb(1) // disable_deblocking_filter_idc

	luma := make([]byte, 256)
	cb := make([]byte, 64)
	cr := make([]byte, 64)
	for my := 0; my < mbH; my++ {
		for mx := 0; mx < mbW; mx++ {
			macroblock(img, mx, my, luma, cb, cr)
			w.WriteExpGolomb(mbTypeIPCM)
			w.StuffByteWithZeros()
			for _, samples := range [][]byte{luma, cb, cr} {
				for _, b := range samples {
					w.Write(uint(b), 8)
				}
			}
		}
	}
	return w.finish()
}

// macroblock gathers the samples of the macroblock at (mx, my) in raster order.
func macroblock(img *image.YCbCr, mx, my int, luma, cb, cr []byte) {
	x0 := img.Rect.Min.X + mx*16
	y0 := img.Rect.Min.Y + my*16
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			luma[y*16+x] = img.Y[img.YOffset(x0+x, y0+y)]
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			off := img.COffset(x0+2*x, y0+2*y)
			cb[y*8+x] = img.Cb[off]
			cr[y*8+x] = img.Cr[off]
		}
	}
}
