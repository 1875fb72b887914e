package esmsg

import "time"

// DestinationType tags which union arm a rename/create/copyfile-like
// payload carries: a file that already exists, or a (directory, name)
// pair for one that does not yet.
type DestinationType uint32

const (
	DestinationExistingFile DestinationType = 0
	DestinationNewPath      DestinationType = 1
)

// Open reports a file being opened. The lone kind answered with a flag
// mask instead of allow/deny.
type Open struct{ payload }

// FFlag is the requested open flags, in fflag form.
func (e Open) FFlag() int32 { return e.i32f(0) }

// File is the file being opened.
func (e Open) File() File { return e.file(1, "open file") }

// Close reports a file descriptor being closed.
type Close struct{ payload }

// Modified reports whether the file was written through this descriptor.
func (e Close) Modified() bool { return e.boolf(0) }

// Target is the file being closed.
func (e Close) Target() File { return e.file(1, "close target") }

// WasMappedWritable reports whether the file was mapped writable during
// this descriptor's lifetime, on version 6 and later.
func (e Close) WasMappedWritable() (bool, bool) {
	if e.r.version < 6 {
		return false, false
	}
	return e.boolf(2), true
}

// Create payload slots. The destination union is flattened; only the arm
// the tag selects may be read.
const (
	createSlotDestType = 0
	createSlotExisting = 1 // file, existing-file arm
	createSlotDir      = 2 // file, new-path arm
	createSlotFilename = 3 // string ref, new-path arm
	createSlotMode     = 4 // u32, new-path arm
	createSlotACL      = 5 // byte ref, v2+, optional
)

// Create reports a filesystem object being created.
type Create struct{ payload }

// DestinationType tags which destination arm is active.
func (e Create) DestinationType() DestinationType {
	return DestinationType(e.u32f(createSlotDestType))
}

// ExistingFile is the created object once it exists. Panics unless the
// destination tag says so; branch on DestinationType first.
func (e Create) ExistingFile() File {
	if e.DestinationType() != DestinationExistingFile {
		panic("esmsg: create destination is a new path, not an existing file")
	}
	return e.file(createSlotExisting, "create existing file")
}

// NewPath is the (directory, filename, mode) triple for an object that
// does not exist yet. Panics unless the destination tag says so.
func (e Create) NewPath() (dir File, filename string, mode uint32) {
	if e.DestinationType() != DestinationNewPath {
		panic("esmsg: create destination is an existing file, not a new path")
	}
	return e.file(createSlotDir, "create directory"), e.strf(createSlotFilename), e.u32f(createSlotMode)
}

// ACL is the flattened ACL the object is created with, on version 2 and
// later; absent when none was supplied.
func (e Create) ACL() ([]byte, bool) {
	if e.r.version < 2 {
		return nil, false
	}
	b := e.spanf(createSlotACL)
	return b, b != nil
}

// Rename payload slots; same flattened-union convention as Create.
const (
	renameSlotSource   = 0
	renameSlotDestType = 1
	renameSlotExisting = 2
	renameSlotDir      = 3
	renameSlotFilename = 4
)

// Rename reports a file being renamed.
type Rename struct{ payload }

// Source is the file being renamed.
func (e Rename) Source() File { return e.file(renameSlotSource, "rename source") }

// DestinationType tags which destination arm is active.
func (e Rename) DestinationType() DestinationType {
	return DestinationType(e.u32f(renameSlotDestType))
}

// ExistingFile is the destination file that will be overwritten. Panics
// unless the destination tag says so.
func (e Rename) ExistingFile() File {
	if e.DestinationType() != DestinationExistingFile {
		panic("esmsg: rename destination is a new path, not an existing file")
	}
	return e.file(renameSlotExisting, "rename existing file")
}

// NewPath is the (directory, filename) pair of a destination that does not
// exist. Panics unless the destination tag says so.
func (e Rename) NewPath() (dir File, filename string) {
	if e.DestinationType() != DestinationNewPath {
		panic("esmsg: rename destination is an existing file, not a new path")
	}
	return e.file(renameSlotDir, "rename directory"), e.strf(renameSlotFilename)
}

// Unlink reports a file being removed.
type Unlink struct{ payload }

// Target is the file being removed.
func (e Unlink) Target() File { return e.file(0, "unlink target") }

// ParentDir is the directory the file is removed from.
func (e Unlink) ParentDir() File { return e.file(1, "unlink parent dir") }

// Link reports a hard link being created.
type Link struct{ payload }

// Source is the existing file.
func (e Link) Source() File { return e.file(0, "link source") }

// TargetDir is the directory the new link lands in.
func (e Link) TargetDir() File { return e.file(1, "link target dir") }

// TargetFilename is the name of the new link.
func (e Link) TargetFilename() string { return e.strf(2) }

// Clone reports a clonefile(2) call.
type Clone struct{ payload }

// Source is the file being cloned.
func (e Clone) Source() File { return e.file(0, "clone source") }

// TargetDir is the directory receiving the clone.
func (e Clone) TargetDir() File { return e.file(1, "clone target dir") }

// TargetName is the clone's name.
func (e Clone) TargetName() string { return e.strf(2) }

// Copyfile reports a copyfile(2) call.
type Copyfile struct{ payload }

// Source is the file being copied.
func (e Copyfile) Source() File { return e.file(0, "copyfile source") }

// TargetFile is the destination file when it already exists.
func (e Copyfile) TargetFile() (File, bool) { return e.optFile(1) }

// TargetDir is the directory receiving the copy.
func (e Copyfile) TargetDir() File { return e.file(2, "copyfile target dir") }

// TargetName is the copy's name.
func (e Copyfile) TargetName() string { return e.strf(3) }

// Mode is the mode argument of the call.
func (e Copyfile) Mode() uint32 { return e.u32f(4) }

// Flags are the copyfile flags.
func (e Copyfile) Flags() int32 { return e.i32f(5) }

// Exchangedata reports an exchangedata(2) call swapping two files' data.
type Exchangedata struct{ payload }

// File1 is the first file.
func (e Exchangedata) File1() File { return e.file(0, "exchangedata file1") }

// File2 is the second file.
func (e Exchangedata) File2() File { return e.file(1, "exchangedata file2") }

// Write reports a file being written.
type Write struct{ payload }

// Target is the written file.
func (e Write) Target() File { return e.file(0, "write target") }

// Truncate reports a file being truncated.
type Truncate struct{ payload }

// Target is the truncated file.
func (e Truncate) Target() File { return e.file(0, "truncate target") }

// Lookup reports a name lookup relative to a directory. The target may not
// exist; only the source directory is a live file.
type Lookup struct{ payload }

// SourceDir is the directory the lookup starts from.
func (e Lookup) SourceDir() File { return e.file(0, "lookup source dir") }

// RelativeTarget is the path being looked up, relative to SourceDir.
func (e Lookup) RelativeTarget() string { return e.strf(1) }

// Chdir reports a working-directory change.
type Chdir struct{ payload }

// Target is the new working directory.
func (e Chdir) Target() File { return e.file(0, "chdir target") }

// StatEvent reports a stat(2)-family call. Named to keep the Stat metadata
// view free for the stat block itself.
type StatEvent struct{ payload }

// Target is the file being stat'ed.
func (e StatEvent) Target() File { return e.file(0, "stat target") }

// Chroot reports a chroot(2) call.
type Chroot struct{ payload }

// Target is the new root directory.
func (e Chroot) Target() File { return e.file(0, "chroot target") }

// Access reports an access(2) check.
type Access struct{ payload }

// Mode is the access mode being checked.
func (e Access) Mode() int32 { return e.i32f(0) }

// Target is the checked file.
func (e Access) Target() File { return e.file(1, "access target") }

// Readlink reports a symlink being read.
type Readlink struct{ payload }

// Source is the symlink.
func (e Readlink) Source() File { return e.file(0, "readlink source") }

// Readdir reports a directory listing.
type Readdir struct{ payload }

// Target is the directory being listed.
func (e Readdir) Target() File { return e.file(0, "readdir target") }

// Dup reports a file descriptor being duplicated.
type Dup struct{ payload }

// Target is the file behind the duplicated descriptor.
func (e Dup) Target() File { return e.file(0, "dup target") }

// Fcntl reports an fcntl(2) call on a file.
type Fcntl struct{ payload }

// Target is the file the descriptor refers to.
func (e Fcntl) Target() File { return e.file(0, "fcntl target") }

// Cmd is the fcntl command.
func (e Fcntl) Cmd() int32 { return e.i32f(1) }

// Fsgetpath reports a path being resolved from a filesystem id.
type Fsgetpath struct{ payload }

// Target is the resolved file.
func (e Fsgetpath) Target() File { return e.file(0, "fsgetpath target") }

// Utimes reports file timestamps being set.
type Utimes struct{ payload }

// Target is the file whose times change.
func (e Utimes) Target() File { return e.file(0, "utimes target") }

// Atime is the new access time.
func (e Utimes) Atime() time.Time { return time.Unix(e.i64f(1), e.i64f(2)) }

// Mtime is the new modification time.
func (e Utimes) Mtime() time.Time { return time.Unix(e.i64f(3), e.i64f(4)) }

// Settime reports the system clock being set. Carries no payload fields;
// the acting process is the story.
type Settime struct{ payload }

// Mmap reports a file being memory-mapped.
type Mmap struct{ payload }

// Protection is the requested protection bits.
func (e Mmap) Protection() int32 { return e.i32f(0) }

// MaxProtection is the maximum protection the mapping may grow to.
func (e Mmap) MaxProtection() int32 { return e.i32f(1) }

// Flags are the mmap flags.
func (e Mmap) Flags() int32 { return e.i32f(2) }

// FilePos is the mapped region's offset into the file.
func (e Mmap) FilePos() uint64 { return e.u64f(3) }

// Source is the mapped file.
func (e Mmap) Source() File { return e.file(4, "mmap source") }

// Mprotect reports a memory region's protection changing.
type Mprotect struct{ payload }

// Protection is the new protection bits.
func (e Mprotect) Protection() int32 { return e.i32f(0) }

// Address is the start of the affected region.
func (e Mprotect) Address() uint64 { return e.u64f(1) }

// Size is the length of the affected region.
func (e Mprotect) Size() uint64 { return e.u64f(2) }
