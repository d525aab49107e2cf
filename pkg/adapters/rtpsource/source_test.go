package rtpsource

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bluenviron/gortsplib/v5/pkg/format/rtph264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/stretchr/testify/require"

	"github.com/user/h264stream/pkg/adapters/logger"
	"github.com/user/h264stream/pkg/pcmstream"
)

func sendAccessUnits(t *testing.T, addr net.Addr, aus [][][]byte) {
	t.Helper()

	conn, err := net.Dial("udp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	enc := &rtph264.Encoder{
		PayloadType:       96,
		PacketizationMode: 1,
	}
	require.NoError(t, enc.Init())

	for _, au := range aus {
		pkts, err := enc.Encode(au)
		require.NoError(t, err)
		for _, pkt := range pkts {
			buf, err := pkt.Marshal()
			require.NoError(t, err)
			_, err = conn.Write(buf)
			require.NoError(t, err)
		}
	}
}

func TestSourceReassemblesAccessUnits(t *testing.T) {
	src, err := Listen("127.0.0.1:0", 1, logger.NewNoop())
	require.NoError(t, err)
	defer src.Close()

	enc := &pcmstream.Encoder{}
	var aus [][][]byte
	for i := 0; i < 3; i++ {
		nalus, err := enc.EncodeNALUs(pcmstream.TestPattern(64, 48, i))
		require.NoError(t, err)
		aus = append(aus, nalus)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan []byte, len(aus))
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(au []byte) error {
			received <- au
			return nil
		})
	}()

	sendAccessUnits(t, src.Addr(), aus)

	for i, nalus := range aus {
		select {
		case au := <-received:
			expected, err := h264.AnnexB(nalus).Marshal()
			require.NoError(t, err)
			require.Equal(t, expected, au, "access unit %d", i)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for access unit %d", i)
		}
	}

	cancel()
	require.NoError(t, <-done)

	stats := src.Stats()
	require.Equal(t, int64(3), stats.AccessUnits)
	require.Greater(t, stats.Packets, int64(3))
	require.Zero(t, stats.Dropped)
}

func TestSourceDropsInvalidPackets(t *testing.T) {
	src, err := Listen("127.0.0.1:0", 1, logger.NewNoop())
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(au []byte) error {
			received <- au
			return nil
		})
	}()

	conn, err := net.Dial("udp", src.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte{0x01, 0x02})
	require.NoError(t, err)
	conn.Close()

	nalus, err := (&pcmstream.Encoder{}).EncodeNALUs(pcmstream.Solid(16, 16, 16, 128, 128))
	require.NoError(t, err)
	sendAccessUnits(t, src.Addr(), [][][]byte{nalus})

	select {
	case <-received:
	case <-ctx.Done():
		t.Fatal("timed out waiting for access unit")
	}
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, int64(1), src.Stats().Dropped)
}

func TestSourceHandlerErrorStopsRun(t *testing.T) {
	src, err := Listen("127.0.0.1:0", 1, logger.NewNoop())
	require.NoError(t, err)
	defer src.Close()

	errStop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- src.Run(context.Background(), func([]byte) error {
			return errStop
		})
	}()

	nalus, err := (&pcmstream.Encoder{}).EncodeNALUs(pcmstream.Solid(16, 16, 16, 128, 128))
	require.NoError(t, err)
	sendAccessUnits(t, src.Addr(), [][][]byte{nalus})

	select {
	case err := <-done:
		require.ErrorIs(t, err, errStop)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestNewRejectsUnsupportedMode(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	_, err = New(conn, 2, logger.NewNoop())
	require.Error(t, err)
}
