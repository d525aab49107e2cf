package streamprobe

import (
	"testing"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/stretchr/testify/require"

	"github.com/user/h264stream/pkg/pcmstream"
)

func TestProbe(t *testing.T) {
	enc := &pcmstream.Encoder{FullRange: true}
	var data []byte
	for i := 0; i < 2; i++ {
		au, err := enc.Encode(pcmstream.TestPattern(64, 48, i))
		require.NoError(t, err)
		data = append(data, au...)
	}

	info, err := New().Probe(data)
	require.NoError(t, err)
	require.Equal(t, 64, info.Width)
	require.Equal(t, 48, info.Height)
	require.Equal(t, 66, info.Profile)
	require.Equal(t, 40, info.Level)
	require.True(t, info.FullRange)
	require.Equal(t, map[string]int{"SPS": 2, "PPS": 2, "IDR": 2}, info.NALUnits)
	require.Equal(t, map[string]int{"I": 2}, info.Slices)
	require.False(t, info.Reordered())
}

func TestProbeBSlices(t *testing.T) {
	enc := &pcmstream.Encoder{}
	nalus, err := enc.EncodeNALUs(pcmstream.Solid(16, 16, 16, 128, 128))
	require.NoError(t, err)

	// non-IDR slice header: first_mb_in_slice 0, slice_type 6 (B)
	bSlice := []byte{0x01, 0x9C, 0x80}
	data, err := h264.AnnexB{nalus[0], nalus[1], bSlice, bSlice}.Marshal()
	require.NoError(t, err)

	info, err := New().Probe(data)
	require.NoError(t, err)
	require.Equal(t, 2, info.Slices["B"])
	require.Equal(t, 2, info.NALUnits["NonIDR"])
	require.True(t, info.Reordered())
}

func TestProbeErrors(t *testing.T) {
	_, err := New().Probe([]byte{0xde, 0xad, 0xbe, 0xef})
	require.ErrorIs(t, err, ErrNoNALUnits)

	_, err = New().Probe([]byte{0, 0, 0, 1, 0x68, 0xce, 0x38, 0x80})
	require.ErrorIs(t, err, ErrNoSPS)

	// truncated SPS
	_, err = New().Probe([]byte{0, 0, 0, 1, 0x67, 0x42})
	require.ErrorIs(t, err, ErrNoSPS)
}
