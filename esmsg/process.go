package esmsg

import "time"

// Process sub-record layout: 17 slots. Version-gated fields are physically
// present in every flattened sub-record; gating happens in the accessors
// against the record's snapshotted version, mirroring how the native struct
// only grows at its tail.
const (
	procSlotAuditToken       = 0  // offset of 32-byte token blob
	procSlotPpid             = 1  // i64
	procSlotOriginalPpid     = 2  // i64
	procSlotGroupID          = 3  // i64
	procSlotSessionID        = 4  // i64
	procSlotCSFlags          = 5  // u64
	procSlotIsPlatformBinary = 6  // bool
	procSlotIsESClient       = 7  // bool
	procSlotCDHash           = 8  // offset of 20-byte blob
	procSlotSigningID        = 9  // string ref
	procSlotTeamID           = 10 // string ref
	procSlotExecutable       = 11 // file offset, never 0
	procSlotTTY              = 12 // file offset, 0 = absent, v2+
	procSlotStartTimeSec     = 13 // i64, v3+
	procSlotStartTimeUsec    = 14 // i64, v3+
	procSlotResponsibleToken = 15 // token blob offset, v4+
	procSlotParentToken      = 16 // token blob offset, v4+
)

// Process identifies the process behind an event, or a target process
// inside a payload. Borrowed from the record.
type Process struct {
	r   *Record
	off uint32
}

func (r *Record) procAt(off uint32) Process { return Process{r: r, off: off} }

func (p Process) slot(i int) uint64 { return p.r.u64(int(p.off) + 8*i) }

// AuditToken is the process's opaque identity token. Field extraction lives
// on AuditToken itself.
func (p Process) AuditToken() AuditToken {
	return p.r.token(requireOff(uint32(p.slot(procSlotAuditToken)), "audit token"))
}

// PID is shorthand for AuditToken().PID().
func (p Process) PID() uint32 { return p.AuditToken().PID() }

// PPID is the parent pid at event time. Note that this is the current
// parent, which changes on reparenting; OriginalPpid does not.
func (p Process) PPID() int32 { return int32(p.slot(procSlotPpid)) }

// OriginalPpid is the parent pid at spawn time.
func (p Process) OriginalPpid() int32 { return int32(p.slot(procSlotOriginalPpid)) }

// GroupID is the process group id.
func (p Process) GroupID() int32 { return int32(p.slot(procSlotGroupID)) }

// SessionID is the process session id.
func (p Process) SessionID() int32 { return int32(p.slot(procSlotSessionID)) }

// CodesigningFlags are the CS_* status flags of the process.
func (p Process) CodesigningFlags() uint32 { return uint32(p.slot(procSlotCSFlags)) }

// IsPlatformBinary reports whether the executable is signed by Apple as
// part of the OS.
func (p Process) IsPlatformBinary() bool { return p.slot(procSlotIsPlatformBinary) != 0 }

// IsESClient reports whether the process is itself an endpoint-security
// client.
func (p Process) IsESClient() bool { return p.slot(procSlotIsESClient) != 0 }

// CDHash is the code directory hash of the executable.
func (p Process) CDHash() [20]byte {
	var h [20]byte
	copy(h[:], p.r.blob(requireOff(uint32(p.slot(procSlotCDHash)), "cdhash"), 20))
	return h
}

// SigningID is the code-signing identifier, empty for unsigned code.
func (p Process) SigningID() string { return p.r.str(p.slot(procSlotSigningID)) }

// TeamID is the signing team identifier, empty for platform and unsigned
// code.
func (p Process) TeamID() string { return p.r.str(p.slot(procSlotTeamID)) }

// Executable is the file backing the process image. The ABI guarantees it.
func (p Process) Executable() File {
	return p.r.fileAt(requireOff(uint32(p.slot(procSlotExecutable)), "executable"))
}

// TTY is the controlling terminal's device file, on version 2 and later.
func (p Process) TTY() (File, bool) {
	if p.r.version < 2 {
		return File{}, false
	}
	off := uint32(p.slot(procSlotTTY))
	if off == 0 {
		return File{}, false
	}
	return p.r.fileAt(off), true
}

// StartTime is the process start time, on version 3 and later.
func (p Process) StartTime() (time.Time, bool) {
	if p.r.version < 3 {
		return time.Time{}, false
	}
	sec := int64(p.slot(procSlotStartTimeSec))
	usec := int64(p.slot(procSlotStartTimeUsec))
	return time.Unix(sec, usec*1000), true
}

// ResponsibleAuditToken identifies the process responsible for this one
// (e.g. the app that spawned a helper), on version 4 and later.
func (p Process) ResponsibleAuditToken() (AuditToken, bool) {
	if p.r.version < 4 {
		return AuditToken{}, false
	}
	off := uint32(p.slot(procSlotResponsibleToken))
	if off == 0 {
		return AuditToken{}, false
	}
	return p.r.token(off), true
}

// ParentAuditToken identifies the parent process, on version 4 and later.
func (p Process) ParentAuditToken() (AuditToken, bool) {
	if p.r.version < 4 {
		return AuditToken{}, false
	}
	off := uint32(p.slot(procSlotParentToken))
	if off == 0 {
		return AuditToken{}, false
	}
	return p.r.token(off), true
}
