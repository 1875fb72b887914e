package esmsg

import "time"

// File sub-record layout: three slots, then the stat block out of line.
const (
	fileSlotPath      = 0 // string ref
	fileSlotTruncated = 1 // bool
	fileSlotStat      = 2 // offset of the 128-byte stat block
)

// File describes a file involved in an event. Borrowed from the record;
// the path aliases the record buffer.
type File struct {
	r   *Record
	off uint32
}

func (r *Record) fileAt(off uint32) File { return File{r: r, off: off} }

func (f File) slot(i int) uint64 { return f.r.u64(int(f.off) + 8*i) }

// Path is the file's path at event time. May be empty for files the kernel
// could not resolve.
func (f File) Path() string { return f.r.str(f.slot(fileSlotPath)) }

// PathTruncated reports whether Path was cut off at the kernel's limit.
func (f File) PathTruncated() bool { return f.slot(fileSlotTruncated) != 0 }

// Stat is the file's metadata snapshot at event time.
func (f File) Stat() Stat {
	return Stat{r: f.r, off: requireOff(uint32(f.slot(fileSlotStat)), "stat")}
}

// Flattened stat block layout, 128 bytes.
const (
	statDev       = 0   // i32
	statMode      = 4   // u32
	statNlink     = 8   // u32
	statGen       = 12  // u32
	statIno       = 16  // u64
	statUID       = 24  // u32
	statGID       = 28  // u32
	statRdev      = 32  // i32
	statFlags     = 36  // u32
	statAtimeSec  = 40  // i64 (+8 nsec)
	statMtimeSec  = 56  // i64 (+8 nsec)
	statCtimeSec  = 72  // i64 (+8 nsec)
	statBtimeSec  = 88  // i64 (+8 nsec)
	statSize      = 104 // i64
	statBlocks    = 112 // i64
	statBlksize   = 120 // i32
	statBlockSize = 128
)

// Stat mirrors the stat(2) block the kernel captured for a file.
type Stat struct {
	r   *Record
	off uint32
}

func (s Stat) u32at(field int) uint32 { return s.r.u32(int(s.off) + field) }
func (s Stat) i64at(field int) int64  { return s.r.i64(int(s.off) + field) }

func (s Stat) timeAt(field int) time.Time {
	return time.Unix(s.i64at(field), s.i64at(field+8))
}

// Dev is the device number of the containing filesystem.
func (s Stat) Dev() int32 { return int32(s.u32at(statDev)) }

// Mode is the file type and permission bits.
func (s Stat) Mode() uint32 { return s.u32at(statMode) }

// Nlink is the hard link count.
func (s Stat) Nlink() uint32 { return s.u32at(statNlink) }

// Gen is the file generation number.
func (s Stat) Gen() uint32 { return s.u32at(statGen) }

// Ino is the inode number.
func (s Stat) Ino() uint64 { return s.r.u64(int(s.off) + statIno) }

// UID is the owning user id.
func (s Stat) UID() uint32 { return s.u32at(statUID) }

// GID is the owning group id.
func (s Stat) GID() uint32 { return s.u32at(statGID) }

// Rdev is the device number for device special files.
func (s Stat) Rdev() int32 { return int32(s.u32at(statRdev)) }

// Flags are the BSD file flags.
func (s Stat) Flags() uint32 { return s.u32at(statFlags) }

// Atime is the last access time.
func (s Stat) Atime() time.Time { return s.timeAt(statAtimeSec) }

// Mtime is the last modification time.
func (s Stat) Mtime() time.Time { return s.timeAt(statMtimeSec) }

// Ctime is the last status change time.
func (s Stat) Ctime() time.Time { return s.timeAt(statCtimeSec) }

// Btime is the creation time.
func (s Stat) Btime() time.Time { return s.timeAt(statBtimeSec) }

// Size is the file size in bytes.
func (s Stat) Size() int64 { return s.i64at(statSize) }

// Blocks is the allocated block count.
func (s Stat) Blocks() int64 { return s.i64at(statBlocks) }

// Blksize is the preferred I/O block size.
func (s Stat) Blksize() int32 { return int32(s.u32at(statBlksize)) }

// Statfs describes a mounted filesystem, as carried by the mount family of
// events. Five slots.
const (
	statfsSlotTypeName = 0 // string ref
	statfsSlotMntOn    = 1 // string ref
	statfsSlotMntFrom  = 2 // string ref
	statfsSlotFlags    = 3 // u64
	statfsSlotOwner    = 4 // u64
)

type Statfs struct {
	r   *Record
	off uint32
}

func (s Statfs) slot(i int) uint64 { return s.r.u64(int(s.off) + 8*i) }

// TypeName is the filesystem type name (hfs, apfs, smbfs, ...).
func (s Statfs) TypeName() string { return s.r.str(s.slot(statfsSlotTypeName)) }

// MountedOn is the directory the filesystem is mounted on.
func (s Statfs) MountedOn() string { return s.r.str(s.slot(statfsSlotMntOn)) }

// MountedFrom is the mounted filesystem's source.
func (s Statfs) MountedFrom() string { return s.r.str(s.slot(statfsSlotMntFrom)) }

// Flags are the mount flags.
func (s Statfs) Flags() uint64 { return s.slot(statfsSlotFlags) }

// Owner is the uid that mounted the filesystem.
func (s Statfs) Owner() uint32 { return uint32(s.slot(statfsSlotOwner)) }
