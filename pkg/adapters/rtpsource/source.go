// Package rtpsource receives RTP/H.264 over UDP and reassembles access units
// in Annex-B format, ready to be fed to a stream decoder.
package rtpsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gortsplib/v5/pkg/format/rtph264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/pion/rtp"

	"github.com/user/h264stream/pkg/ports"
)

// maxDatagramSize is the largest UDP payload.
const maxDatagramSize = 65535

// Stats counts what a Source has received.
type Stats struct {
	Packets     int64
	AccessUnits int64
	// Dropped counts datagrams that were not valid RTP or could not be depacketized.
	Dropped int64
}

var _ ports.AccessUnitSource = (*Source)(nil)

// Source reads RTP packets from a packet connection.
type Source struct {
	conn   net.PacketConn
	dec    *rtph264.Decoder
	logger ports.Logger

	packets     atomic.Int64
	accessUnits atomic.Int64
	dropped     atomic.Int64
}

// New creates a Source on an existing connection. packetizationMode is the
// RFC 6184 mode of the sender (0 or 1).
func New(conn net.PacketConn, packetizationMode int, logger ports.Logger) (*Source, error) {
	dec := &rtph264.Decoder{PacketizationMode: packetizationMode}
	if err := dec.Init(); err != nil {
		return nil, fmt.Errorf("init RTP/H264 decoder: %w", err)
	}
	return &Source{
		conn:   conn,
		dec:    dec,
		logger: logger.WithComponent("rtp"),
	}, nil
}

// Listen opens a UDP socket on addr and creates a Source on it.
func Listen(addr string, packetizationMode int, logger ports.Logger) (*Source, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s, err := New(conn, packetizationMode, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Addr returns the local address packets are received on.
func (s *Source) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Run receives packets until ctx is cancelled, the connection fails or
// handle returns an error. handle gets every complete access unit; the slice
// is not reused. Cancellation ends Run with a nil error.
func (s *Source) Run(ctx context.Context, handle func(au []byte) error) error {
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	s.logger.Info("Receiving RTP on %s", s.conn.LocalAddr())
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read RTP: %w", err)
		}
		s.packets.Add(1)

		au, err := s.depacketize(buf[:n])
		if err != nil {
			s.dropped.Add(1)
			s.logger.Warn("Dropped RTP packet: %v", err)
			continue
		}
		if au == nil {
			continue
		}

		s.accessUnits.Add(1)
		if err := handle(au); err != nil {
			return err
		}
	}
}

// depacketize returns the Annex-B access unit completed by datagram, or nil
// while more packets are needed.
func (s *Source) depacketize(datagram []byte) ([]byte, error) {
	// the decoder keeps references to payloads of fragmented units
	var pkt rtp.Packet
	if err := pkt.Unmarshal(append([]byte(nil), datagram...)); err != nil {
		return nil, err
	}

	nalus, err := s.dec.Decode(&pkt)
	switch {
	case errors.Is(err, rtph264.ErrMorePacketsNeeded):
		return nil, nil
	case errors.Is(err, rtph264.ErrNonStartingPacketAndNoPrevious):
		s.logger.Debug("Waiting for the start of a fragmented unit")
		return nil, nil
	case err != nil:
		return nil, err
	}

	return h264.AnnexB(nalus).Marshal()
}

// Stats returns the counters accumulated so far.
func (s *Source) Stats() Stats {
	return Stats{
		Packets:     s.packets.Load(),
		AccessUnits: s.accessUnits.Load(),
		Dropped:     s.dropped.Load(),
	}
}

// Close closes the connection.
func (s *Source) Close() error {
	return s.conn.Close()
}
