package flux

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Options configures stream decoding.
type Options struct {
	// SampleClockHz overrides the default KryoFlux-class sample clock.
	// Zero means "use the default, unless a key-value info OOB block
	// overrides it."
	SampleClockHz float64
}

// OOBBlock is one parsed out-of-band metadata block.
type OOBBlock struct {
	Type    OOBType
	Payload []byte
	// StreamPositionAtEmit is the non-OOB byte counter's value when this
	// block was encountered, used for the integrity check below.
	StreamPositionAtEmit uint32
}

// StreamResult is the raw decode of a flux sample stream, before
// alignment/fusion.
type StreamResult struct {
	// RevolutionTicks holds, per revolution, the list of flux intervals
	// in raw hardware ticks (not yet converted to nanoseconds).
	RevolutionTicks [][]uint64
	// IndexTickTimestamps holds the accumulated-tick value at each index
	// OOB, one per revolution boundary crossed (len ==
	// len(RevolutionTicks) when the stream ends cleanly after an index).
	IndexTickTimestamps []uint64
	OOBBlocks           []OOBBlock
	SampleClockHz       float64

	// Warnings holds non-fatal integrity problems: stream-position
	// mismatches, absence of any index OOB, etc. (spec.md §4.2's
	// "warning, not a hard failure" error kinds.)
	Warnings []string
	// NoIndex is true when zero index OOBs were observed; in that case
	// RevolutionTicks holds exactly one synthetic revolution.
	NoIndex bool
	// ReachedEOF is true if an end-of-file OOB was seen before the input
	// was exhausted.
	ReachedEOF bool
}

// DecodeStream decodes a KryoFlux-class flux sample stream per spec.md
// §4.2's opcode vocabulary. It never fails on data-integrity problems
// (stream-position drift, missing index marks) — those become Warnings —
// but returns ErrStreamTruncated if EOF is hit without a stream-end/EOF
// OOB, and ErrMemoryExhausted if a revolution's transition count would
// exceed maxTransitions (0 means MaxTransitionsPerRevolution).
func DecodeStream(data []byte, opts Options) (*StreamResult, error) {
	maxTransitions := MaxTransitionsPerRevolution

	sampleClockHz := opts.SampleClockHz
	if sampleClockHz == 0 {
		sampleClockHz = defaultBaseClockHz / float64(defaultICK+1)
	}

	res := &StreamResult{SampleClockHz: sampleClockHz}

	var currentRev []uint64
	var accumulator uint64
	var nonOOBCount uint32

	closeRevolution := func() {
		res.RevolutionTicks = append(res.RevolutionTicks, currentRev)
		res.IndexTickTimestamps = append(res.IndexTickTimestamps, accumulator)
		currentRev = nil
	}

	i := 0
	n := len(data)
	for i < n {
		b := data[i]

		switch {
		case b <= OpTwoByteFluxMax:
			if i+1 >= n {
				return res, errors.Wrap(ErrStreamTruncated, "truncated two-byte flux opcode")
			}
			interval := (uint64(b) << 8) | uint64(data[i+1])
			accumulator += interval
			if err := emit(&currentRev, accumulator, maxTransitions); err != nil {
				return res, err
			}
			i += 2
			nonOOBCount += 2

		case b == OpNOP1:
			i += 2
			nonOOBCount += 2

		case b == OpNOP2:
			i += 3
			nonOOBCount += 3

		case b == OpNOP3:
			i += 4
			nonOOBCount += 4

		case b == OpOverflow:
			accumulator += 0x10000
			i++
			nonOOBCount++

		case b == OpThreeByteFlux:
			if i+2 >= n {
				return res, errors.Wrap(ErrStreamTruncated, "truncated three-byte flux opcode")
			}
			interval := uint64(binary.LittleEndian.Uint16(data[i+1 : i+3]))
			accumulator += interval
			if err := emit(&currentRev, accumulator, maxTransitions); err != nil {
				return res, err
			}
			i += 3
			nonOOBCount += 3

		case b == OpOOB:
			if i+3 >= n {
				return res, errors.Wrap(ErrStreamTruncated, "truncated OOB header")
			}
			oobType := OOBType(data[i+1])
			size := int(binary.LittleEndian.Uint16(data[i+2 : i+4]))
			if i+4+size > n {
				return res, errors.Wrap(ErrStreamTruncated, "truncated OOB payload")
			}
			payload := data[i+4 : i+4+size]
			block := OOBBlock{Type: oobType, Payload: append([]byte(nil), payload...), StreamPositionAtEmit: nonOOBCount}
			res.OOBBlocks = append(res.OOBBlocks, block)

			checkStreamPosition(res, block, nonOOBCount)

			switch oobType {
			case OOBIndex:
				closeRevolution()
			case OOBInfo:
				if hz, ok := parseSampleClockHz(payload); ok {
					sampleClockHz = hz
					res.SampleClockHz = hz
				}
			case OOBEOF:
				res.ReachedEOF = true
			}
			i += 4 + size

		default: // short flux, b >= OpShortFluxMin
			accumulator += uint64(b)
			if err := emit(&currentRev, accumulator, maxTransitions); err != nil {
				return res, err
			}
			i++
			nonOOBCount++
		}

		if res.ReachedEOF {
			break
		}
	}

	if currentRev != nil {
		closeRevolution()
	}

	if len(res.IndexTickTimestamps) == 0 {
		res.NoIndex = true
		res.Warnings = append(res.Warnings, "no index OOB observed: treating entire stream as one synthetic revolution")
	}

	if !res.ReachedEOF {
		return res, errors.Wrap(ErrStreamTruncated, "stream exhausted without end-of-file OOB")
	}

	return res, nil
}

// emit appends an interval (and resets the running accumulator the
// caller tracks separately — accumulator itself is not reset here since
// it is cumulative tick time, not a per-sample delta) to rev.
func emit(rev *[]uint64, tickTime uint64, maxTransitions int) error {
	if len(*rev) >= maxTransitions {
		return ErrMemoryExhausted
	}
	*rev = append(*rev, tickTime)
	return nil
}

// checkStreamPosition verifies the stream-info/index/stream-end
// invariant (spec.md §4.2): each such OOB's declared position should
// equal the non-OOB byte counter. We don't know the declared format
// precisely enough to assume one universal layout, so we accept either a
// little-endian u32 at the start of the payload (the common case for
// stream-info/index) and simply skip the check for payload shapes we
// don't recognise (key-value info, stream-end-without-position) rather
// than misreporting a mismatch.
func checkStreamPosition(res *StreamResult, block OOBBlock, nonOOBCount uint32) {
	if block.Type != OOBStreamInfo && block.Type != OOBIndex && block.Type != OOBStreamEnd {
		return
	}
	if len(block.Payload) < 4 {
		return
	}
	declared := binary.LittleEndian.Uint32(block.Payload[:4])
	if declared != nonOOBCount {
		res.Warnings = append(res.Warnings, errors.Errorf(
			"stream-position mismatch at OOB type %d: declared=%d actual=%d", block.Type, declared, nonOOBCount).Error())
	}
}

// parseSampleClockHz looks for a "sck=<hz>" key-value pair in a
// key-value info OOB payload, per spec.md §4.2 ("hardware firmware, host
// date, sample clock in Hz"). Returns ok=false if no such key is present.
func parseSampleClockHz(payload []byte) (float64, bool) {
	s := string(payload)
	const key = "sck="
	idx := strings.Index(s, key)
	if idx < 0 {
		return 0, false
	}
	rest := s[idx+len(key):]
	if end := strings.IndexAny(rest, ",\x00\n"); end >= 0 {
		rest = rest[:end]
	}
	hz, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return 0, false
	}
	return hz, true
}
