package esmsg

import (
	"encoding/binary"
	"time"
)

// Builder assembles flattened records in the shim's wire layout. Tests use
// it to synthesize events; replay tooling uses it to re-emit captured
// streams. All appended data lands past the header, so a zero offset keeps
// meaning "absent".
type Builder struct {
	buf []byte
}

// NewBuilder starts a record of the given schema version and kind. The
// action defaults to auth for auth kinds and notify for everything else.
func NewBuilder(version uint32, kind EventType) *Builder {
	b := &Builder{buf: make([]byte, headerSize)}
	b.putU32(hdrVersion, version)
	b.putU32(hdrKind, uint32(kind))
	if kind.IsAuth() {
		b.putU32(hdrAction, uint32(ActionAuth))
	} else {
		b.putU32(hdrAction, uint32(ActionNotify))
	}
	return b
}

func (b *Builder) putU32(off int, v uint32) { binary.LittleEndian.PutUint32(b.buf[off:], v) }
func (b *Builder) putU64(off int, v uint64) { binary.LittleEndian.PutUint64(b.buf[off:], v) }

func (b *Builder) append(p []byte) uint32 {
	off := uint32(len(b.buf))
	b.buf = append(b.buf, p...)
	return off
}

// SetTime sets the wall-clock timestamp.
func (b *Builder) SetTime(t time.Time) *Builder {
	b.putU64(hdrTimeSec, uint64(t.Unix()))
	b.putU64(hdrTimeNsec, uint64(t.Nanosecond()))
	return b
}

// SetMachTime sets the monotonic timestamp.
func (b *Builder) SetMachTime(v uint64) *Builder { b.putU64(hdrMachTime, v); return b }

// SetDeadline sets the auth reply deadline.
func (b *Builder) SetDeadline(v uint64) *Builder { b.putU64(hdrDeadline, v); return b }

// SetSeqNum sets the per-kind sequence number.
func (b *Builder) SetSeqNum(v uint64) *Builder { b.putU64(hdrSeqNum, v); return b }

// SetGlobalSeqNum sets the global sequence number.
func (b *Builder) SetGlobalSeqNum(v uint64) *Builder { b.putU64(hdrGlobalSeqNum, v); return b }

// SetAction overrides the default action classification.
func (b *Builder) SetAction(a ActionType) *Builder {
	b.putU32(hdrAction, uint32(a))
	return b
}

// SetAuthResult attaches a kernel verdict, for notify records.
func (b *Builder) SetAuthResult(flags bool, value uint32) *Builder {
	if flags {
		b.putU32(hdrResultType, 1)
	} else {
		b.putU32(hdrResultType, 0)
	}
	b.putU32(hdrResult, value)
	return b
}

// SetThread attaches an acting thread.
func (b *Builder) SetThread(id uint64) *Builder {
	var blob [8]byte
	binary.LittleEndian.PutUint64(blob[:], id)
	b.putU32(hdrThreadOff, b.append(blob[:]))
	return b
}

// String appends string data and returns its ref slot value. The empty
// string encodes as the absent ref.
func (b *Builder) String(s string) uint64 {
	if s == "" {
		return 0
	}
	off := b.append([]byte(s))
	return uint64(off) | uint64(len(s))<<32
}

// Bytes appends a byte span and returns its ref slot value.
func (b *Builder) Bytes(p []byte) uint64 {
	if len(p) == 0 {
		return 0
	}
	off := b.append(p)
	return uint64(off) | uint64(len(p))<<32
}

// Token appends an audit token blob and returns its offset.
func (b *Builder) Token(t AuditToken) uint32 {
	var blob [32]byte
	for i, v := range t {
		binary.LittleEndian.PutUint32(blob[i*4:], v)
	}
	return b.append(blob[:])
}

// StringArray appends a packed string array and returns its offset. A zero
// return means the array is empty; pair it with a zero count slot.
func (b *Builder) StringArray(items []string) uint32 {
	if len(items) == 0 {
		return 0
	}
	refs := make([]uint64, len(items))
	for i, s := range items {
		refs[i] = b.String(s)
	}
	arr := make([]byte, 8*len(refs))
	for i, r := range refs {
		binary.LittleEndian.PutUint64(arr[i*8:], r)
	}
	return b.append(arr)
}

// StatSpec carries the stat fields a test or replay cares about; the rest
// of the block stays zero.
type StatSpec struct {
	Dev     int32
	Mode    uint32
	Nlink   uint32
	Ino     uint64
	UID     uint32
	GID     uint32
	Size    int64
	Mtime   time.Time
	Blksize int32
}

func (b *Builder) statBlock(s StatSpec) uint32 {
	blob := make([]byte, statBlockSize)
	binary.LittleEndian.PutUint32(blob[statDev:], uint32(s.Dev))
	binary.LittleEndian.PutUint32(blob[statMode:], s.Mode)
	binary.LittleEndian.PutUint32(blob[statNlink:], s.Nlink)
	binary.LittleEndian.PutUint64(blob[statIno:], s.Ino)
	binary.LittleEndian.PutUint32(blob[statUID:], s.UID)
	binary.LittleEndian.PutUint32(blob[statGID:], s.GID)
	binary.LittleEndian.PutUint64(blob[statSize:], uint64(s.Size))
	binary.LittleEndian.PutUint32(blob[statBlksize:], uint32(s.Blksize))
	if !s.Mtime.IsZero() {
		binary.LittleEndian.PutUint64(blob[statMtimeSec:], uint64(s.Mtime.Unix()))
		binary.LittleEndian.PutUint64(blob[statMtimeSec+8:], uint64(s.Mtime.Nanosecond()))
	}
	return b.append(blob)
}

// File appends a file sub-record and returns its offset for a payload
// slot.
func (b *Builder) File(path string, st StatSpec) uint32 {
	return b.FileFull(path, false, st)
}

// FileFull is File with control over the truncation flag.
func (b *Builder) FileFull(path string, truncated bool, st StatSpec) uint32 {
	pathRef := b.String(path)
	statOff := b.statBlock(st)
	slots := make([]byte, 24)
	binary.LittleEndian.PutUint64(slots[0:], pathRef)
	if truncated {
		binary.LittleEndian.PutUint64(slots[8:], 1)
	}
	binary.LittleEndian.PutUint64(slots[16:], uint64(statOff))
	return b.append(slots)
}

// Statfs appends a filesystem description and returns its offset.
func (b *Builder) Statfs(typeName, mountedOn, mountedFrom string, flags uint64, owner uint32) uint32 {
	s := []uint64{
		b.String(typeName),
		b.String(mountedOn),
		b.String(mountedFrom),
		flags,
		uint64(owner),
	}
	return b.slots(s)
}

// ProcessSpec describes a process sub-record to append. Zero-value fields
// encode as absent where the layout allows it.
type ProcessSpec struct {
	Token            AuditToken
	Ppid             int32
	OriginalPpid     int32
	GroupID          int32
	SessionID        int32
	CSFlags          uint32
	PlatformBinary   bool
	ESClient         bool
	CDHash           [20]byte
	SigningID        string
	TeamID           string
	ExecutablePath   string
	ExecutableStat   StatSpec
	TTYPath          string
	StartTime        time.Time
	ResponsibleToken *AuditToken
	ParentToken      *AuditToken
}

// Process appends a process sub-record and returns its offset.
func (b *Builder) Process(spec ProcessSpec) uint32 {
	tokOff := b.Token(spec.Token)
	cdOff := b.append(spec.CDHash[:])
	signRef := b.String(spec.SigningID)
	teamRef := b.String(spec.TeamID)
	exeOff := b.File(spec.ExecutablePath, spec.ExecutableStat)
	var ttyOff uint32
	if spec.TTYPath != "" {
		ttyOff = b.File(spec.TTYPath, StatSpec{})
	}
	var respOff, parentOff uint32
	if spec.ResponsibleToken != nil {
		respOff = b.Token(*spec.ResponsibleToken)
	}
	if spec.ParentToken != nil {
		parentOff = b.Token(*spec.ParentToken)
	}
	var startSec, startUsec uint64
	if !spec.StartTime.IsZero() {
		startSec = uint64(spec.StartTime.Unix())
		startUsec = uint64(spec.StartTime.Nanosecond() / 1000)
	}
	return b.slots([]uint64{
		uint64(tokOff),
		uint64(uint32(spec.Ppid)),
		uint64(uint32(spec.OriginalPpid)),
		uint64(uint32(spec.GroupID)),
		uint64(uint32(spec.SessionID)),
		uint64(spec.CSFlags),
		boolSlot(spec.PlatformBinary),
		boolSlot(spec.ESClient),
		uint64(cdOff),
		signRef,
		teamRef,
		uint64(exeOff),
		uint64(ttyOff),
		startSec,
		startUsec,
		uint64(respOff),
		uint64(parentOff),
	})
}

// SetProcess installs the acting-process sub-record.
func (b *Builder) SetProcess(off uint32) *Builder {
	b.putU32(hdrProcessOff, off)
	return b
}

// ActingProcess is shorthand for Process followed by SetProcess.
func (b *Builder) ActingProcess(spec ProcessSpec) *Builder {
	return b.SetProcess(b.Process(spec))
}

// Event installs the payload slot array.
func (b *Builder) Event(slots ...uint64) *Builder {
	b.putU32(hdrEventOff, b.slots(slots))
	return b
}

// FdSpec describes one packed file descriptor entry.
type FdSpec struct {
	Fd     int32
	Type   uint32
	PipeID uint64
}

// Fds appends a packed descriptor array and returns its offset.
func (b *Builder) Fds(fds []FdSpec) uint32 {
	if len(fds) == 0 {
		return 0
	}
	arr := make([]byte, fdEntrySize*len(fds))
	for i, f := range fds {
		binary.LittleEndian.PutUint64(arr[i*fdEntrySize:], uint64(uint32(f.Fd)))
		binary.LittleEndian.PutUint64(arr[i*fdEntrySize+8:], uint64(f.Type))
		binary.LittleEndian.PutUint64(arr[i*fdEntrySize+16:], f.PipeID)
	}
	return b.append(arr)
}

func (b *Builder) slots(vals []uint64) uint32 {
	blob := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(blob[i*8:], v)
	}
	return b.append(blob)
}

func boolSlot(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// Build returns the finished buffer. The builder must not be reused after.
func (b *Builder) Build() []byte { return b.buf }
