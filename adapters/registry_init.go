package adapters

import "github.com/diskforge/diskforge/registry"

// rawGeometries lists every plain-sector-layout format variant this
// module supports, registered as individual rawAdapter instances. Per
// the "collapse near-identical raw adapters into one data-driven
// adapter" resolution: every row here is data, not code.
var rawGeometries = []rawGeometry{
	{
		Name: "apple-do", Description: "Apple DOS 3.3 order raw disk image",
		Extensions: []string{".do", ".dsk"}, FormatID: "apple-do",
		SizesBytes: []int{143360}, Cylinders: 35, Heads: 1,
		SectorsPerTrack: 16, SectorSize: 256, Interleave: dos33Interleave,
	},
	{
		Name: "apple-po", Description: "ProDOS order raw disk image",
		Extensions: []string{".po", ".dsk"}, FormatID: "apple-po",
		SizesBytes: []int{143360}, Cylinders: 35, Heads: 1,
		SectorsPerTrack: 16, SectorSize: 256, Interleave: prodosInterleave,
	},
	{
		Name: "pc-160k", Description: "PC 5.25\" 160K single-sided disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-160k",
		SizesBytes: []int{163840}, Cylinders: 40, Heads: 1, SectorsPerTrack: 8, SectorSize: 512,
	},
	{
		Name: "pc-180k", Description: "PC 5.25\" 180K single-sided disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-180k",
		SizesBytes: []int{184320}, Cylinders: 40, Heads: 1, SectorsPerTrack: 9, SectorSize: 512,
	},
	{
		Name: "pc-320k", Description: "PC 5.25\" 320K double-sided disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-320k",
		SizesBytes: []int{327680}, Cylinders: 40, Heads: 2, SectorsPerTrack: 8, SectorSize: 512,
	},
	{
		Name: "pc-360k", Description: "PC 5.25\" 360K double-sided disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-360k",
		SizesBytes: []int{368640}, Cylinders: 40, Heads: 2, SectorsPerTrack: 9, SectorSize: 512,
	},
	{
		Name: "pc-720k", Description: "PC 3.5\" 720K disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-720k",
		SizesBytes: []int{737280}, Cylinders: 80, Heads: 2, SectorsPerTrack: 9, SectorSize: 512,
	},
	{
		Name: "pc-1200k", Description: "PC 5.25\" 1.2M disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-1200k",
		SizesBytes: []int{1228800}, Cylinders: 80, Heads: 2, SectorsPerTrack: 15, SectorSize: 512,
	},
	{
		Name: "pc-1440k", Description: "PC 3.5\" 1.44M disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-1440k",
		SizesBytes: []int{1474560}, Cylinders: 80, Heads: 2, SectorsPerTrack: 18, SectorSize: 512,
	},
	{
		Name: "pc-2880k", Description: "PC 3.5\" 2.88M disk image",
		Extensions: []string{".img", ".ima"}, FormatID: "pc-2880k",
		SizesBytes: []int{2949120}, Cylinders: 80, Heads: 2, SectorsPerTrack: 36, SectorSize: 512,
	},
	{
		Name: "trs80-sssd", Description: "TRS-80 single-sided single-density disk image",
		Extensions: []string{".dsk", ".jv1"}, FormatID: "trs80-sssd",
		SizesBytes: []int{89600}, Cylinders: 35, Heads: 1, SectorsPerTrack: 10, SectorSize: 256,
	},
	{
		Name: "amstrad-cpc", Description: "Amstrad CPC plain DSK disk image",
		Extensions: []string{".dsk"}, FormatID: "amstrad-cpc",
		SizesBytes: []int{184320}, Cylinders: 40, Heads: 1, SectorsPerTrack: 9, SectorSize: 512,
	},
	{
		Name: "bbc-micro", Description: "BBC Micro DFS disk image",
		Extensions: []string{".ssd"}, FormatID: "bbc-micro",
		SizesBytes: []int{204800}, Cylinders: 80, Heads: 1, SectorsPerTrack: 10, SectorSize: 256,
	},
	{
		Name: "ti99", Description: "TI-99/4A disk image",
		Extensions: []string{".dsk"}, FormatID: "ti99",
		SizesBytes: []int{368640}, Cylinders: 40, Heads: 2, SectorsPerTrack: 9, SectorSize: 256,
	},
	{
		Name: "pc98-2hd", Description: "NEC PC-98 2HD disk image",
		Extensions: []string{".d88", ".fdi"}, FormatID: "pc98-2hd",
		SizesBytes: []int{1261568}, Cylinders: 77, Heads: 2, SectorsPerTrack: 8, SectorSize: 1024,
	},
	{
		Name: "fds", Description: "Nintendo Famicom Disk System disk-side image",
		Extensions: []string{".fds"}, FormatID: "fds",
		SizesBytes: []int{65500}, Cylinders: 1, Heads: 1, SectorsPerTrack: 1, SectorSize: 65500,
	},
}

func init() {
	for _, g := range rawGeometries {
		registry.Default.Register(rawAdapter{geometry: g})
	}
}
