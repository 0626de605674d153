package disk

import (
	"fmt"
	"path"
	"strings"

	"github.com/diskforge/diskforge/helpers"
	"github.com/diskforge/diskforge/types"
)

// Swizzle changes the sector ordering according to the order parameter
// (a physical-to-logical or logical-to-physical map, 16 entries, each of
// 0..15 appearing exactly once).
func Swizzle(diskimage []byte, order []int) ([]byte, error) {
	if len(diskimage) != FloppyDiskBytes {
		return nil, fmt.Errorf("reordering only works on disk images of %d bytes; got %d", FloppyDiskBytes, len(diskimage))
	}
	if err := validateOrder(order); err != nil {
		return nil, fmt.Errorf("called Swizzle with weird order: %w", err)
	}

	result := make([]byte, FloppyDiskBytes)
	for track := 0; track < FloppyTracks; track++ {
		for sector := 0; sector < FloppySectors; sector++ {
			data, err := ReadSector(diskimage, byte(track), byte(sector))
			if err != nil {
				return nil, err
			}
			if err := WriteSector(result, byte(track), byte(order[sector]), data); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// UnSwizzle applies the inverse of order to diskimage.
func UnSwizzle(diskimage []byte, order []int) ([]byte, error) {
	if err := validateOrder(order); err != nil {
		return nil, fmt.Errorf("called UnSwizzle with weird order: %w", err)
	}
	reverseOrder := make([]int, FloppySectors)
	for index, mapping := range order {
		reverseOrder[mapping] = index
	}
	return Swizzle(diskimage, reverseOrder)
}

// validateOrder validates that an order mapping is valid, and maps [0,15] onto
// [0,15] without repeats.
func validateOrder(order []int) error {
	if len(order) != FloppySectors {
		return fmt.Errorf("len=%d; want %d: %v", len(order), FloppySectors, order)
	}
	seen := make(map[int]bool)
	for i, mapping := range order {
		if mapping < 0 || mapping > 15 {
			return fmt.Errorf("mapping %d:%d is not in [0,15]: %v", i, mapping, order)
		}
		if seen[mapping] {
			return fmt.Errorf("mapping %d:%d is a repeat: %v", i, mapping, order)
		}
		seen[mapping] = true
	}
	return nil
}

// OrderFromFilename guesses the disk order from a filename's extension.
func OrderFromFilename(filename string, defaultOrder types.DiskOrder) types.DiskOrder {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".dsk", ".do":
		return types.DiskOrderDO
	case ".po":
		return types.DiskOrderPO
	default:
		return defaultOrder
	}
}

// WriteBack writes a filesystem operator's logical-order bytes back out
// to filename, swizzling to the requested on-disk sector order first.
func WriteBack(filename string, op types.Operator, diskFileOrder types.DiskOrder, overwrite bool) error {
	logicalBytes := op.GetBytes()
	if len(logicalBytes) != FloppyDiskBytes {
		return helpers.WriteOutput(filename, logicalBytes, overwrite)
	}

	physicalBytes, err := Swizzle(logicalBytes, LogicalToPhysicalByName[op.DiskOrder()])
	if err != nil {
		return err
	}
	diskBytes, err := Swizzle(physicalBytes, PhysicalToLogicalByName[diskFileOrder])
	if err != nil {
		return err
	}
	return helpers.WriteOutput(filename, diskBytes, overwrite)
}
