// Package streamprobe inspects the head of an H.264 Annex-B stream without
// decoding it.
package streamprobe

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/user/h264stream/pkg/ports"
)

var (
	// ErrNoNALUnits is returned when the data holds no Annex-B NAL unit.
	ErrNoNALUnits = errors.New("streamprobe: no NAL units found")

	// ErrNoSPS is returned when no usable sequence parameter set was found.
	ErrNoSPS = errors.New("streamprobe: no sequence parameter set found")
)

var sliceNames = map[avc.SliceType]string{
	avc.SLICE_P:  "P",
	avc.SLICE_B:  "B",
	avc.SLICE_I:  "I",
	avc.SLICE_SP: "SP",
	avc.SLICE_SI: "SI",
}

// Ensure Prober implements ports.StreamProber
var _ ports.StreamProber = (*Prober)(nil)

// Prober implements ports.StreamProber.
type Prober struct{}

// New creates a new Prober.
func New() *Prober {
	return &Prober{}
}

// Probe counts NAL unit and slice types in data and reads the geometry from
// the first valid SPS. The last NAL unit may be truncated.
func (p *Prober) Probe(data []byte) (ports.StreamInfo, error) {
	info := ports.StreamInfo{
		NALUnits: make(map[string]int),
		Slices:   make(map[string]int),
	}

	if !bytes.Contains(data, []byte{0, 0, 1}) {
		return info, ErrNoNALUnits
	}
	nalus := avc.ExtractNalusFromByteStream(data)
	if len(nalus) == 0 {
		return info, ErrNoNALUnits
	}

	var spsErr error
	haveSPS := false
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		typ := h264.NALUType(nalu[0] & 0x1F)
		info.NALUnits[typ.String()]++

		switch typ {
		case h264.NALUTypeSPS:
			if haveSPS {
				continue
			}
			var sps h264.SPS
			if err := sps.Unmarshal(nalu); err != nil {
				spsErr = err
				continue
			}
			haveSPS = true
			info.Width = sps.Width()
			info.Height = sps.Height()
			info.Profile = int(sps.ProfileIdc)
			info.Level = int(sps.LevelIdc)
			info.FullRange = sps.VUI != nil && sps.VUI.VideoSignalTypePresentFlag && sps.VUI.VideoFullRangeFlag

		case h264.NALUTypeIDR, h264.NALUTypeNonIDR:
			st, err := avc.GetSliceTypeFromNALU(nalu)
			if err != nil {
				continue
			}
			if name, ok := sliceNames[st]; ok {
				info.Slices[name]++
			}
		}
	}

	if !haveSPS {
		if spsErr != nil {
			return info, fmt.Errorf("%w: %w", ErrNoSPS, spsErr)
		}
		return info, ErrNoSPS
	}
	return info, nil
}
