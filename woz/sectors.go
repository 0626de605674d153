package woz

import (
	"github.com/diskforge/diskforge/codec"
	"github.com/diskforge/diskforge/model"
)

// Apple II address- and data-field prologues/epilogues. D5 AA 96 marks a
// 16-sector (DOS 3.3/ProDOS) address field; D5 AA AD marks a data field.
// Both end in a DE AA EB epilogue, though decoding tolerates a missing or
// damaged epilogue since nothing downstream depends on it.
var (
	addressPrologue16 = [3]byte{0xd5, 0xaa, 0x96}
	dataPrologue      = [3]byte{0xd5, 0xaa, 0xad}
)

// decode44 reverses the 4-and-4 encoding used for address-field bytes:
// each original byte becomes two on-disk bytes, odd=(v>>1)|0xaa and
// even=v|0xaa.
func decode44(odd, even byte) byte {
	return ((odd << 1) | 1) & even
}

// DecodeSectors scans a nibblized track for Apple II 16-sector address
// and data fields and returns the sectors found, in the order
// encountered. Sectors whose address or data checksum fails are still
// returned, flagged via their Status.
func DecodeSectors(cylinder int, nibbles []byte) []*model.Sector {
	var sectors []*model.Sector
	pos := 0
	for pos < len(nibbles) {
		addrPos := findPattern(nibbles, pos, addressPrologue16[:])
		if addrPos < 0 {
			break
		}
		fieldStart := addrPos + 3
		if fieldStart+8 > len(nibbles) {
			break
		}
		volume := decode44(nibbles[fieldStart], nibbles[fieldStart+1])
		track := decode44(nibbles[fieldStart+2], nibbles[fieldStart+3])
		sectorNum := decode44(nibbles[fieldStart+4], nibbles[fieldStart+5])
		checksum := decode44(nibbles[fieldStart+6], nibbles[fieldStart+7])

		sec := &model.Sector{Cylinder: cylinder, SectorID: int(sectorNum)}
		if checksum != volume^track^sectorNum {
			sec.Status = model.StatusHeaderChecksum
		}

		searchFrom := fieldStart + 8
		dataPos := findPattern(nibbles, searchFrom, dataPrologue[:])
		if dataPos < 0 || dataPos-searchFrom > 64 {
			// Data field didn't immediately follow; treat as missing
			// rather than scanning arbitrarily far into the next sector.
			if sec.Status == model.StatusOK {
				sec.Status = model.StatusDataNotFound
			}
			sectors = append(sectors, sec)
			pos = searchFrom
			continue
		}

		dataStart := dataPos + 3
		payload, checksumOK, ok := decode62(nibbles, dataStart)
		if !ok {
			sec.Status = model.StatusDataNotFound
			pos = dataStart
		} else {
			sec.Payload = payload
			sec.SizeCode, _ = model.SizeCodeForLen(len(payload))
			if !checksumOK && sec.Status == model.StatusOK {
				sec.Status = model.StatusDataChecksum
			}
			pos = dataStart + 343
		}
		sectors = append(sectors, sec)
	}
	return sectors
}

// findPattern finds pat in nibbles at or after from, returning -1 if
// absent.
func findPattern(nibbles []byte, from int, pat []byte) int {
	for i := from; i+len(pat) <= len(nibbles); i++ {
		match := true
		for j, b := range pat {
			if nibbles[i+j] != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// decode62 decodes a standard Apple II 6-and-2 nibblized 343-byte data
// field (342 XOR-chained 6-bit values plus a trailing checksum nibble)
// starting at nibbles[start] into 256 plain data bytes.
func decode62(nibbles []byte, start int) (data []byte, checksumOK bool, ok bool) {
	if start+343 > len(nibbles) {
		return nil, false, false
	}
	raw := make([]byte, 342)
	var chain byte
	for i := 0; i < 342; i++ {
		six, valid := codec.DecodeApple6(nibbles[start+i])
		if !valid {
			return nil, false, false
		}
		val := six ^ chain
		raw[i] = val
		chain = val
	}
	checksumNib, valid := codec.DecodeApple6(nibbles[start+342])
	if !valid {
		return nil, false, false
	}
	checksumOK = checksumNib == chain

	out := make([]byte, 256)
	for j := 0; j < 256; j++ {
		var secondaryIdx, shift int
		switch {
		case j < 86:
			secondaryIdx, shift = j, 0
		case j < 172:
			secondaryIdx, shift = j-86, 2
		default:
			secondaryIdx, shift = j-172, 4
		}
		low2 := (raw[secondaryIdx] >> uint(shift)) & 0x3
		top6 := raw[86+j]
		out[j] = (top6 << 2) | low2
	}
	return out, checksumOK, true
}
