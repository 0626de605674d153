package dos3

import "github.com/diskforge/diskforge/disk"

// NewBlankDisk returns a freshly initialized, empty 35-track/16-sector
// DOS 3.3 disk image: a VTOC pointing at a single empty catalog sector,
// with both of those sectors marked used and everything else free. This
// is the programmatic equivalent of running DOS 3.3's INIT command, used
// both by tests and by the raw-sector adapter's CanCreate path.
func NewBlankDisk() []byte {
	diskbytes := make([]byte, disk.FloppyDiskBytes)

	v := DefaultVTOC()
	if err := v.AllocateSector(VTOCTrack, VTOCSector); err != nil {
		panic(err)
	}
	if err := v.AllocateSector(v.CatalogTrack, v.CatalogSector); err != nil {
		panic(err)
	}

	cs := &CatalogSector{}
	if err := disk.MarshalLogicalSector(diskbytes, cs, v.CatalogTrack, v.CatalogSector); err != nil {
		panic(err)
	}
	if err := writeVTOC(diskbytes, &v); err != nil {
		panic(err)
	}
	return diskbytes
}
