package dos3

import (
	"fmt"

	"github.com/diskforge/diskforge/disk"
	"github.com/diskforge/diskforge/types"
)

// markUsed marks sector as in-use on this track's free-sector bitmap.
func (t *TrackFreeSectors) markUsed(sector byte) {
	t.mark(sector, false)
}

// markFree marks sector as available on this track's free-sector bitmap.
func (t *TrackFreeSectors) markFree(sector byte) {
	t.mark(sector, true)
}

// mark sets or clears the bit for sector, mirroring prodos.VolumeBitMap's
// mark/IsFree convention but over DOS 3.3's two-byte-per-track layout
// (bytes 0-1 hold sectors 8-15 and 0-7 respectively, set bit means free).
func (t *TrackFreeSectors) mark(sector byte, free bool) {
	bits := byte(1) << (sector % 8)
	idx := 1
	if sector >= 8 {
		idx = 0
	}
	if free {
		t[idx] |= bits
	} else {
		t[idx] &^= bits
	}
}

// AllocateSector marks track/sector as in-use in the VTOC, returning an
// error if it was already allocated or out of range.
func (v *VTOC) AllocateSector(track, sector byte) error {
	if int(track) >= len(v.FreeSectors) {
		return fmt.Errorf("dos3: track %d out of range", track)
	}
	if sector >= 16 {
		return fmt.Errorf("dos3: sector %d out of range", sector)
	}
	if !v.FreeSectors[track].IsFree(sector) {
		return fmt.Errorf("dos3: track %d sector %d is already allocated", track, sector)
	}
	v.FreeSectors[track].markUsed(sector)
	return nil
}

// FreeSector marks track/sector as available in the VTOC.
func (v *VTOC) FreeSector(track, sector byte) error {
	if int(track) >= len(v.FreeSectors) {
		return fmt.Errorf("dos3: track %d out of range", track)
	}
	if sector >= 16 {
		return fmt.Errorf("dos3: sector %d out of range", sector)
	}
	v.FreeSectors[track].markFree(sector)
	return nil
}

// findFreeSector returns the first free sector found searching from
// v.LastTrack outward in v.TrackDirection, the same free-space search
// order DOS 3.3 itself uses, skipping the VTOC/catalog track.
func (v *VTOC) findFreeSector() (track, sector byte, ok bool) {
	dir := int(v.TrackDirection)
	if dir == 0 {
		dir = 1
	}
	t := int(v.LastTrack)
	for i := 0; i < int(v.NumTracks); i++ {
		if t >= 0 && t < len(v.FreeSectors) && byte(t) != VTOCTrack {
			for s := 0; s < int(v.NumSectors); s++ {
				if v.FreeSectors[t].IsFree(byte(s)) {
					return byte(t), byte(s), true
				}
			}
		}
		t += dir
		if t < 0 {
			t = int(v.NumTracks) - 1
		}
		if t >= int(v.NumTracks) {
			t = 0
		}
	}
	return 0, 0, false
}

// readVTOC loads and validates the VTOC from a full disk image.
func readVTOC(diskbytes []byte) (*VTOC, error) {
	v := &VTOC{}
	if err := disk.UnmarshalLogicalSector(diskbytes, v, VTOCTrack, VTOCSector); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VTOC sector: %v", err)
	}
	return v, nil
}

// writeVTOC marshals v back to its fixed track/sector on diskbytes.
func writeVTOC(diskbytes []byte, v *VTOC) error {
	return disk.MarshalLogicalSector(diskbytes, v)
}

// EncodeFilename converts a plain-ASCII filename (up to 30 characters)
// into DOS 3.3's high-bit-set, space-padded, fixed 30-byte on-disk
// representation (the inverse of FileDesc.FilenameString).
func EncodeFilename(name string) ([30]byte, error) {
	if len(name) > 30 {
		return [30]byte{}, fmt.Errorf("dos3: filename %q longer than 30 characters", name)
	}
	var out [30]byte
	for i := range out {
		out[i] = ' ' + 0x80
	}
	for i := 0; i < len(name); i++ {
		out[i] = name[i] + 0x80
	}
	return out, nil
}

// sectorsNeeded returns how many 256-byte data sectors and T/S-list
// sectors storing length bytes of file contents requires.
func sectorsNeeded(length int) (data, tsList int) {
	data = (length + 255) / 256
	if data == 0 {
		data = 1
	}
	tsList = (data + 121) / 122
	if tsList == 0 {
		tsList = 1
	}
	return data, tsList
}

// filetypeByte maps a types.Filetype to its DOS 3.3 on-disk filetype
// nibble (the inverse of FileDesc.descriptor's switch).
func filetypeByte(t types.Filetype) (Filetype, error) {
	switch t {
	case types.FiletypeASCIIText:
		return FiletypeText, nil
	case types.FiletypeIntegerBASIC:
		return FiletypeInteger, nil
	case types.FiletypeApplesoftBASIC:
		return FiletypeApplesoft, nil
	case types.FiletypeBinary:
		return FiletypeBinary, nil
	case types.FiletypeS:
		return FiletypeS, nil
	case types.FiletypeRelocatable:
		return FiletypeRelocatable, nil
	case types.FiletypeNewA:
		return FiletypeA, nil
	case types.FiletypeNewB:
		return FiletypeB, nil
	default:
		return 0, fmt.Errorf("dos3: unsupported filetype %v", t)
	}
}

// encodeFileContents lays out fileInfo's data the way DOS 3.3 stores it
// on disk for the given filetype: a 2-byte little-endian length prefix
// for text/tokenized-BASIC/binary files, and a leading 2-byte load
// address for binary files, per dos3.go's (operator).GetFile inverse.
func encodeFileContents(ft Filetype, fi types.FileInfo) []byte {
	switch ft &^ FiletypeLocked {
	case FiletypeBinary:
		out := make([]byte, 0, len(fi.Data)+4)
		out = append(out, byte(fi.StartAddress), byte(fi.StartAddress>>8))
		out = append(out, byte(len(fi.Data)), byte(len(fi.Data)>>8))
		out = append(out, fi.Data...)
		return out
	case FiletypeText:
		return fi.Data
	default: // Applesoft/Integer BASIC and everything else: length-prefixed.
		out := make([]byte, 0, len(fi.Data)+2)
		out = append(out, byte(len(fi.Data)), byte(len(fi.Data)>>8))
		out = append(out, fi.Data...)
		return out
	}
}

// CreateFile allocates sectors for fileInfo's contents, writes its
// track/sector list(s) and data, and appends a catalog entry, returning
// true if an existing same-named file of that name was overwritten.
func CreateFile(diskbytes []byte, fileInfo types.FileInfo, overwrite bool) (existed bool, err error) {
	existed, err = fileExists(diskbytes, fileInfo.Descriptor.Name)
	if err != nil {
		return false, err
	}
	if existed {
		if !overwrite {
			return true, fmt.Errorf("dos3: file %q already exists", fileInfo.Descriptor.Name)
		}
		if _, err := DeleteFile(diskbytes, fileInfo.Descriptor.Name); err != nil {
			return existed, err
		}
	}

	v, err := readVTOC(diskbytes)
	if err != nil {
		return existed, err
	}

	ft, err := filetypeByte(fileInfo.Descriptor.Type)
	if err != nil {
		return existed, err
	}
	if fileInfo.Descriptor.Locked {
		ft |= FiletypeLocked
	}

	contents := encodeFileContents(ft, fileInfo)
	dataSectorCount, tslCount := sectorsNeeded(len(contents))

	dataSectors := make([]disk.TrackSector, dataSectorCount)
	for i := range dataSectors {
		t, s, ok := v.findFreeSector()
		if !ok {
			return existed, fmt.Errorf("dos3: disk full allocating file %q", fileInfo.Descriptor.Name)
		}
		if err := v.AllocateSector(t, s); err != nil {
			return existed, err
		}
		dataSectors[i] = disk.TrackSector{Track: t, Sector: s}
		start := i * 256
		end := start + 256
		buf := make([]byte, 256)
		if start < len(contents) {
			copy(buf, contents[start:min(end, len(contents))])
		}
		if err := disk.WriteSector(diskbytes, t, s, buf); err != nil {
			return existed, err
		}
	}

	tslSectors := make([]disk.TrackSector, tslCount)
	for i := range tslSectors {
		t, s, ok := v.findFreeSector()
		if !ok {
			return existed, fmt.Errorf("dos3: disk full allocating T/S list for %q", fileInfo.Descriptor.Name)
		}
		if err := v.AllocateSector(t, s); err != nil {
			return existed, err
		}
		tslSectors[i] = disk.TrackSector{Track: t, Sector: s}
	}

	for i, ts := range tslSectors {
		tsl := TrackSectorList{
			SectorOffset: uint16(i * 122),
		}
		if i+1 < len(tslSectors) {
			tsl.NextTrack = tslSectors[i+1].Track
			tsl.NextSector = tslSectors[i+1].Sector
		}
		for j := 0; j < 122; j++ {
			idx := i*122 + j
			if idx < len(dataSectors) {
				tsl.TrackSectors[j] = dataSectors[idx]
			}
		}
		if err := disk.MarshalLogicalSector(diskbytes, &tsl, ts.Track, ts.Sector); err != nil {
			return existed, err
		}
	}

	filename, err := EncodeFilename(fileInfo.Descriptor.Name)
	if err != nil {
		return existed, err
	}
	fd := FileDesc{
		TrackSectorListTrack:  tslSectors[0].Track,
		TrackSectorListSector: tslSectors[0].Sector,
		Filetype:              ft,
		Filename:              filename,
		SectorCount:           uint16(dataSectorCount + tslCount),
	}

	if err := appendCatalogEntry(diskbytes, v, fd); err != nil {
		return existed, err
	}
	return existed, writeVTOC(diskbytes, v)
}

// fileExists reports whether a normal (non-deleted) catalog entry with
// the given name exists.
func fileExists(diskbytes []byte, filename string) (bool, error) {
	files, _, err := ReadCatalog(diskbytes, false)
	if err != nil {
		return false, err
	}
	for _, fd := range files {
		if fd.FilenameString() == filename {
			return true, nil
		}
	}
	return false, nil
}

// appendCatalogEntry writes fd into the first free (unused or deleted)
// File Descriptive Entry slot in the catalog chain, extending the chain
// with a freshly allocated sector if every existing one is full.
func appendCatalogEntry(diskbytes []byte, v *VTOC, fd FileDesc) error {
	track, sector := v.CatalogTrack, v.CatalogSector
	var last *CatalogSector
	var lastTrack, lastSector byte
	for track != 0 || sector != 0 {
		cs := &CatalogSector{}
		if err := disk.UnmarshalLogicalSector(diskbytes, cs, track, sector); err != nil {
			return err
		}
		for i := range cs.FileDescs {
			if cs.FileDescs[i].Status() != FileDescStatusNormal {
				cs.FileDescs[i] = fd
				return disk.MarshalLogicalSector(diskbytes, cs, track, sector)
			}
		}
		last = cs
		lastTrack, lastSector = track, sector
		track, sector = cs.NextTrack, cs.NextSector
	}

	t, s, ok := v.findFreeSector()
	if !ok {
		return fmt.Errorf("dos3: disk full; cannot extend catalog")
	}
	if err := v.AllocateSector(t, s); err != nil {
		return err
	}
	newCS := &CatalogSector{}
	newCS.FileDescs[0] = fd
	if err := disk.MarshalLogicalSector(diskbytes, newCS, t, s); err != nil {
		return err
	}
	if last != nil {
		last.NextTrack, last.NextSector = t, s
		return disk.MarshalLogicalSector(diskbytes, last, lastTrack, lastSector)
	}
	v.CatalogTrack, v.CatalogSector = t, s
	return nil
}

// DeleteFile deletes a file by name, freeing its data and track/sector
// list sectors and marking its catalog entry deleted the way DOS 3.3
// itself does: set the T/S-list track to 0xFF and stash the original
// track number in the last byte of the filename field (FileDesc.Status
// and FilenameString already understand this convention).
func DeleteFile(diskbytes []byte, filename string) (bool, error) {
	v, err := readVTOC(diskbytes)
	if err != nil {
		return false, err
	}

	track, sector := v.CatalogTrack, v.CatalogSector
	for track != 0 || sector != 0 {
		cs := &CatalogSector{}
		if err := disk.UnmarshalLogicalSector(diskbytes, cs, track, sector); err != nil {
			return false, err
		}
		for i := range cs.FileDescs {
			fd := &cs.FileDescs[i]
			if fd.Status() != FileDescStatusNormal || fd.FilenameString() != filename {
				continue
			}

			if err := freeFileSectors(diskbytes, v, *fd); err != nil {
				return false, err
			}

			origTrack := fd.TrackSectorListTrack
			fd.TrackSectorListTrack = 0xff
			fd.Filename[29] = origTrack

			if err := disk.MarshalLogicalSector(diskbytes, cs, track, sector); err != nil {
				return false, err
			}
			return true, writeVTOC(diskbytes, v)
		}
		track, sector = cs.NextTrack, cs.NextSector
	}
	return false, nil
}

// freeFileSectors walks fd's track/sector list chain, freeing every
// data sector and T/S-list sector it references.
func freeFileSectors(diskbytes []byte, v *VTOC, fd FileDesc) error {
	nextTrack, nextSector := fd.TrackSectorListTrack, fd.TrackSectorListSector
	seen := map[disk.TrackSector]bool{}
	for nextTrack != 0 || nextSector != 0 {
		ts := disk.TrackSector{Track: nextTrack, Sector: nextSector}
		if seen[ts] {
			return fmt.Errorf("dos3: T/S list loop detected freeing file")
		}
		seen[ts] = true

		tsl := &TrackSectorList{}
		if err := disk.UnmarshalLogicalSector(diskbytes, tsl, nextTrack, nextSector); err != nil {
			return err
		}
		for _, dts := range tsl.TrackSectors {
			if dts.Track == 0 && dts.Sector == 0 {
				continue
			}
			if err := v.FreeSector(dts.Track, dts.Sector); err != nil {
				return err
			}
		}
		if err := v.FreeSector(nextTrack, nextSector); err != nil {
			return err
		}
		nextTrack, nextSector = tsl.NextTrack, tsl.NextSector
	}
	return nil
}

// CheckIntegrity walks the catalog and every file's track/sector list,
// cross-checking referenced sectors against the VTOC's free-sector
// bitmap, and reports every discrepancy found rather than stopping at
// the first one: a sector marked free but referenced by a file, a
// sector referenced by more than one file, or a T/S-list chain cycle.
func CheckIntegrity(diskbytes []byte) []error {
	var errs []error

	v, err := readVTOC(diskbytes)
	if err != nil {
		return []error{err}
	}

	referenced := map[disk.TrackSector]string{}
	files, _, err := ReadCatalog(diskbytes, false)
	if err != nil {
		return append(errs, err)
	}

	for _, fd := range files {
		name := fd.FilenameString()
		nextTrack, nextSector := fd.TrackSectorListTrack, fd.TrackSectorListSector
		seen := map[disk.TrackSector]bool{}
		for nextTrack != 0 || nextSector != 0 {
			ts := disk.TrackSector{Track: nextTrack, Sector: nextSector}
			if seen[ts] {
				errs = append(errs, fmt.Errorf("file %q: T/S list cycle at track %d sector %d", name, ts.Track, ts.Sector))
				break
			}
			seen[ts] = true
			if owner, ok := referenced[ts]; ok {
				errs = append(errs, fmt.Errorf("track %d sector %d claimed by both %q and %q", ts.Track, ts.Sector, owner, name))
			}
			referenced[ts] = name
			if v.FreeSectors[ts.Track].IsFree(ts.Sector) {
				errs = append(errs, fmt.Errorf("file %q: track %d sector %d is marked free in the VTOC but holds its T/S list", name, ts.Track, ts.Sector))
			}

			tsl := &TrackSectorList{}
			if err := disk.UnmarshalLogicalSector(diskbytes, tsl, nextTrack, nextSector); err != nil {
				errs = append(errs, err)
				break
			}
			for _, dts := range tsl.TrackSectors {
				if dts.Track == 0 && dts.Sector == 0 {
					continue
				}
				if owner, ok := referenced[dts]; ok {
					errs = append(errs, fmt.Errorf("track %d sector %d claimed by both %q and %q", dts.Track, dts.Sector, owner, name))
				}
				referenced[dts] = name
				if int(dts.Track) >= len(v.FreeSectors) || dts.Sector >= 16 {
					errs = append(errs, fmt.Errorf("file %q: track/sector %d/%d out of range", name, dts.Track, dts.Sector))
					continue
				}
				if v.FreeSectors[dts.Track].IsFree(dts.Sector) {
					errs = append(errs, fmt.Errorf("file %q: track %d sector %d is marked free in the VTOC but holds file data", name, dts.Track, dts.Sector))
				}
			}
			nextTrack, nextSector = tsl.NextTrack, tsl.NextSector
		}
	}

	return errs
}
