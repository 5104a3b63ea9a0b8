// Package formats parses Ragnarok Online data files used by the world builder.
package formats

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/midgard-gl/pkg/encoding"
)

// reader decodes little-endian fields. The first short read sets err and all
// later reads return zero values.
type reader struct {
	data []byte
	pos  int
	err  error
	what string
}

func (r *reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("reading %s at offset %d", what, r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u8(what string) uint8 {
	if b := r.take(1, what); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16(what string) uint16 {
	if b := r.take(2, what); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32(what string) uint32 {
	if b := r.take(4, what); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) f32(what string) float32 {
	return math.Float32frombits(r.u32(what))
}

func (r *reader) name(n int, what string) string {
	if b := r.take(n, what); b != nil {
		return encoding.FixedString(b)
	}
	return ""
}
