// Package flux decodes multi-revolution flux-transition streams
// (KryoFlux-stream-class and SCP-class containers) into aligned, fused
// transition lists with per-position confidence and weak-bit detection,
// per spec.md §4.2.
//
// Grounded on other_examples/sergev-fdx's greaseweazle-read.go,
// supercardpro-read.go, and mfm-reader.go: each decodes an opcode-tagged
// byte stream into flux intervals, tracks index pulses to find revolution
// boundaries, and derives RPM/bit-rate from the timing — the same shape
// spec.md §4.2 describes for the KryoFlux-class opcode vocabulary, which
// this package implements directly rather than Greaseweazle's or SCP's
// own (similar but format-specific) opcode set.
package flux

import (
	"github.com/pkg/errors"
)

// Default sample clock: 24.027428 MHz / (ICK+1), ICK=2, per spec.md §4.2.
const (
	defaultBaseClockHz = 24027428.0
	defaultICK         = 2
)

// DefaultNsPerTick is the KryoFlux-class default tick period (~41.619ns).
var DefaultNsPerTick = defaultBaseClockHz // placeholder, computed in init
func init() {
	DefaultNsPerTick = 1e9 / (defaultBaseClockHz / float64(defaultICK+1))
}

// This module uses the documented KryoFlux-class opcode layout where the
// low opcode space (0x00-0x0D) is reserved and 0x0E.. is free-running
// "short flux". To keep the implementation unambiguous (and testable) we
// use the widely documented arrangement:
//
//	0x00-0x07: two-byte flux, high nibble
//	0x08:      NOP1 (skip 1 byte)
//	0x09:      NOP2 (skip 2 bytes)
//	0x0A:      NOP3 (skip 3 bytes)
//	0x0B:      overflow (+0x10000 ticks, no emit)
//	0x0C:      three-byte flux opcode (next 2 bytes = LE16 interval)
//	0x0D:      out-of-band block
//	0x0E-0xFF: short flux (byte value itself is the interval)
const (
	OpTwoByteFluxMax = 0x07
	OpNOP1           = 0x08
	OpNOP2           = 0x09
	OpNOP3           = 0x0A
	OpOverflow       = 0x0B
	OpThreeByteFlux  = 0x0C
	OpOOB            = 0x0D
	OpShortFluxMin   = 0x0E
)

// OOB block types, per spec.md §4.2.
type OOBType byte

const (
	OOBStreamInfo OOBType = 0x01
	OOBIndex      OOBType = 0x02
	OOBStreamEnd  OOBType = 0x03
	OOBInfo       OOBType = 0x04
	OOBEOF        OOBType = 0x0D
)

// Sentinel errors surfaced by the decoder. Per spec.md §4.2's error
// taxonomy: ErrStreamTruncated and ErrMemoryExhausted are hard failures;
// ErrStreamPosition and ErrNoIndex are recorded as warnings/fallbacks,
// never returned from DecodeStream.
var (
	ErrStreamTruncated = errors.New("flux: stream-end OOB not reached before input exhausted")
	ErrMemoryExhausted = errors.New("flux: revolution exceeded maximum transition capacity")
)

// MaxTransitionsPerRevolution is the default per-revolution capacity cap
// (spec.md §4.2 "memory-exhausted" / §5 "backpressure").
const MaxTransitionsPerRevolution = 500_000
