// Package esmsg decodes flattened endpoint-security messages.
//
// The native shim delivers each kernel message as one contiguous
// little-endian buffer: a fixed header, then sub-records and variable-length
// data addressed by 32-bit offsets from the start of the buffer. Offset zero
// falls inside the header and therefore doubles as "absent". Nothing in this
// package copies payload bytes; every string and view aliases the record's
// buffer and must not be retained past Release.
package esmsg

import (
	"fmt"
	"time"
)

// Flattened header layout. All multi-byte fields are little-endian.
const (
	hdrVersion      = 0  // u32
	hdrKind         = 4  // u32
	hdrTimeSec      = 8  // i64
	hdrTimeNsec     = 16 // i64
	hdrMachTime     = 24 // u64
	hdrDeadline     = 32 // u64
	hdrSeqNum       = 40 // u64
	hdrGlobalSeqNum = 48 // u64
	hdrAction       = 56 // u32
	hdrResultType   = 60 // u32, notify records only
	hdrResult       = 64 // u32, notify records only
	hdrThreadOff    = 68 // u32, 0 = absent
	hdrProcessOff   = 72 // u32, never 0
	hdrEventOff     = 76 // u32, 0 = kind carries no payload bytes
	headerSize      = 88
)

// ActionType distinguishes requests the client must answer from
// notifications that have already happened.
type ActionType uint32

const (
	ActionAuth   ActionType = 0
	ActionNotify ActionType = 1
)

// AuthResult is the verdict attached to a notify record whose auth
// counterpart was answered, as reported back by the kernel.
type AuthResult struct {
	// Flags reports whether Value is a permission bitmask rather than an
	// allow/deny code.
	Flags bool
	Value uint32
}

// Record is one decoded endpoint-security message. The schema version is
// snapshotted at decode time; accessors gate on the snapshot, so records
// decoded before a version change keep their field visibility.
type Record struct {
	buf     []byte
	version uint32

	state    *lifeState
	released bool
}

// Version is the message schema version, which decides which optional
// fields are present. It only grows across OS releases.
func (r *Record) Version() uint32 { return r.version }

// Kind is the event discriminant. The payload union must only ever be read
// through the wrapper this tag selects.
func (r *Record) Kind() EventType { return EventType(r.u32(hdrKind)) }

// Time is the wall-clock time the event was generated.
func (r *Record) Time() time.Time {
	return time.Unix(r.i64(hdrTimeSec), r.i64(hdrTimeNsec))
}

// MachTime is the monotonic hardware clock value at event generation.
func (r *Record) MachTime() uint64 { return r.u64(hdrMachTime) }

// Deadline is the mach time by which an auth record must be answered.
// Missing it gets the client killed by the OS; this layer only exposes the
// value, enforcing it is the caller's business.
func (r *Record) Deadline() uint64 { return r.u64(hdrDeadline) }

// SeqNum is the per-kind sequence number, available on version 2 and later.
func (r *Record) SeqNum() (uint64, bool) {
	if r.version < 2 {
		return 0, false
	}
	return r.u64(hdrSeqNum), true
}

// GlobalSeqNum is the per-client sequence number, available on version 4
// and later.
func (r *Record) GlobalSeqNum() (uint64, bool) {
	if r.version < 4 {
		return 0, false
	}
	return r.u64(hdrGlobalSeqNum), true
}

// Action reports whether this record is an auth request or a notification.
func (r *Record) Action() ActionType { return ActionType(r.u32(hdrAction)) }

// AuthResult returns the kernel's verdict for notify records. Auth records
// have no result; they are the question, not the answer.
func (r *Record) AuthResult() (AuthResult, bool) {
	if r.Action() != ActionNotify {
		return AuthResult{}, false
	}
	return AuthResult{
		Flags: r.u32(hdrResultType) == 1,
		Value: r.u32(hdrResult),
	}, true
}

// Process is the process that performed the action. Always present.
func (r *Record) Process() Process {
	off := r.u32(hdrProcessOff)
	if off == 0 {
		panic("esmsg: record has no acting process sub-record")
	}
	return Process{r: r, off: off}
}

// Thread is the thread that performed the action, available on version 4
// and later. Not all events carry one even then.
func (r *Record) Thread() (Thread, bool) {
	if r.version < 4 {
		return Thread{}, false
	}
	off := r.u32(hdrThreadOff)
	if off == 0 {
		return Thread{}, false
	}
	return Thread{r: r, off: off}, true
}

func (r *Record) eventOff() uint32 { return r.u32(hdrEventOff) }

func validate(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("esmsg: short record: %d bytes, header needs %d", len(buf), headerSize)
	}
	return nil
}

// Thread identifies the acting thread of a record.
type Thread struct {
	r   *Record
	off uint32
}

// ID is the unique thread id of the acting thread.
func (t Thread) ID() uint64 { return t.r.u64(int(t.off)) }
