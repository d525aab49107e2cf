package pcmstream

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/bits"
)

// rbspWriter writes one NAL unit: the header byte followed by a payload with
// emulation prevention bytes inserted as it is written.
type rbspWriter struct {
	buf bytes.Buffer
	*bits.EBSPWriter
}

func newRBSPWriter(header byte) *rbspWriter {
	w := &rbspWriter{}
	w.buf.WriteByte(header)
	w.EBSPWriter = bits.NewEBSPWriter(&w.buf)
	return w
}

func (w *rbspWriter) flag(b bool) {
	if b {
		w.Write(1, 1)
	} else {
		w.Write(0, 1)
	}
}

// se writes v as signed Exp-Golomb.
func (w *rbspWriter) se(v int) {
	if v > 0 {
		w.WriteExpGolomb(uint(2*v - 1))
	} else {
		w.WriteExpGolomb(uint(-2 * v))
	}
}

// finish writes rbsp_trailing_bits and returns the NAL unit.
func (w *rbspWriter) finish() ([]byte, error) {
	w.WriteRbspTrailingBits()
	if err := w.AccError(); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}
