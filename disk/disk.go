// Package disk contains the sector-ordering and block-marshalling
// helpers shared by the Apple II filesystem layer (dos3) and the raw
// container adapters: logical/physical sector interleave maps for both
// DOS-order and ProDOS-order disks, the "swizzle" transform, and
// fixed-size sector/block read-write helpers.
//
// The container-format detection and opening that the original
// disk.OpenImage family of functions did now belongs to the registry
// package (registry.Detect/registry.Open): a fixed list of
// types.OperatorFactory candidates has been replaced by the adapter
// registry's probe-and-score model, which also covers far more than
// Apple II 16-sector floppies. What remains here is the sector-geometry
// math neither package needed to change.
package disk

import "github.com/diskforge/diskforge/types"

// Various DOS 3.3 / ProDOS floppy characteristics.
const (
	FloppyTracks  = 35
	FloppySectors = 16 // Sectors per track
	// FloppyDiskBytes is the number of bytes on a 16-sector Apple II disk.
	FloppyDiskBytes = 143360 // 35 tracks * 16 sectors * 256 bytes
	// FloppyDiskBytes13Sector is the size of an older 13-sector image.
	FloppyDiskBytes13Sector = 116480        // 35 tracks * 13 sectors * 256 bytes
	FloppyTrackBytes        = 256 * FloppySectors // Bytes per track
)

// Block is one ProDOS-style 512-byte block.
type Block [512]byte

// LogicalToPhysicalByName maps a disk order name to its logical-to-physical
// sector map.
var LogicalToPhysicalByName = map[types.DiskOrder][]int{
	types.DiskOrderDO: Dos33LogicalToPhysicalSectorMap,
	types.DiskOrderPO: ProDOSLogicalToPhysicalSectorMap,
}

// PhysicalToLogicalByName maps a disk order name to its physical-to-logical
// sector map.
var PhysicalToLogicalByName = map[types.DiskOrder][]int{
	types.DiskOrderDO: Dos33PhysicalToLogicalSectorMap,
	types.DiskOrderPO: ProDosPhysicalToLogicalSectorMap,
}

// Dos33LogicalToPhysicalSectorMap maps logical sector numbers to physical ones.
// See [UtA2 9-42 - Read Routines].
var Dos33LogicalToPhysicalSectorMap = []int{
	0x00, 0x0D, 0x0B, 0x09, 0x07, 0x05, 0x03, 0x01,
	0x0E, 0x0C, 0x0A, 0x08, 0x06, 0x04, 0x02, 0x0F,
}

// Dos33PhysicalToLogicalSectorMap maps physical sector numbers to logical ones.
// See [UtA2 9-42 - Read Routines].
var Dos33PhysicalToLogicalSectorMap = []int{
	0x00, 0x07, 0x0E, 0x06, 0x0D, 0x05, 0x0C, 0x04,
	0x0B, 0x03, 0x0A, 0x02, 0x09, 0x01, 0x08, 0x0F,
}

// ProDOSLogicalToPhysicalSectorMap maps logical sector numbers to pysical ones.
// See [UtA2e 9-43 - Sectors vs. Blocks].
var ProDOSLogicalToPhysicalSectorMap = []int{
	0x00, 0x02, 0x04, 0x06, 0x08, 0x0A, 0x0C, 0x0E,
	0x01, 0x03, 0x05, 0x07, 0x09, 0x0B, 0x0D, 0x0F,
}

// ProDosPhysicalToLogicalSectorMap maps physical sector numbers to logical ones.
// See [UtA2e 9-43 - Sectors vs. Blocks].
var ProDosPhysicalToLogicalSectorMap = []int{
	0x00, 0x08, 0x01, 0x09, 0x02, 0x0A, 0x03, 0x0B,
	0x04, 0x0C, 0x05, 0x0D, 0x06, 0x0E, 0x07, 0x0F,
}

// TrackSector is a pair of track/sector bytes.
type TrackSector struct {
	Track  byte
	Sector byte
}
