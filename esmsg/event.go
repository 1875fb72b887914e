package esmsg

import "fmt"

// Event is the decoded payload of a record: exactly one wrapper type per
// kind, selected by the record's tag. All wrappers borrow from the record
// and are only valid until it is released.
type Event interface {
	Kind() EventType
	Record() *Record
}

// Event decodes the record's payload. Unknown tags — kinds added by an OS
// newer than this table — return nil; callers treat that as "ignore and
// continue", never as fatal.
//
// A zero payload offset is only legal for the kinds whose payload struct is
// empty. For every other kind the slot array would alias the record header,
// so the missing offset panics like any other broken required sub-record.
func (r *Record) Event() Event {
	k := r.Kind()
	if !k.Known() {
		return nil
	}
	off := r.eventOff()
	if !payloadFree[k] {
		off = requireOff(off, k.String()+" payload")
	}
	return kinds[k].decode(payload{r: r, off: off})
}

// ResponseKind selects which of the two mutually exclusive reply calls an
// auth record demands. The kernel rejects the wrong one, so this table must
// match the OS's, per kind.
type ResponseKind int

const (
	// ResponseAuth answers with a single allow/deny verdict.
	ResponseAuth ResponseKind = iota + 1
	// ResponseFlags answers with a bitmask of permitted operations.
	ResponseFlags
)

// Response tells the caller how an auth record must be answered. For flag
// responses, Flags echoes the operation's requested flags so a reply mask
// can be built relative to them.
type Response struct {
	Kind  ResponseKind
	Flags int32
}

// ExpectedResponse classifies the reply protocol for this record's kind.
// Notify kinds, and kinds this table does not know, want no reply at all.
func (r *Record) ExpectedResponse() (Response, bool) {
	k := r.Kind()
	if !k.Known() {
		return Response{}, false
	}
	switch kinds[k].response {
	case respAuth:
		return Response{Kind: ResponseAuth}, true
	case respFlags:
		// The lone flag-response kind. The platform defines this per kind
		// as policy; it is carried here as data, not derived.
		open, ok := r.Event().(Open)
		if !ok {
			panic(fmt.Sprintf("esmsg: flag-response kind %v did not decode to an open event", k))
		}
		return Response{Kind: ResponseFlags, Flags: open.FFlag()}, true
	default:
		return Response{}, false
	}
}

// payload is the base of every event wrapper: the owning record plus the
// offset of this payload's slot array.
type payload struct {
	r   *Record
	off uint32
}

// Record returns the record this payload borrows from.
func (p payload) Record() *Record { return p.r }

// Kind returns the owning record's kind tag.
func (p payload) Kind() EventType { return p.r.Kind() }

func (p payload) slot(i int) uint64 { return p.r.u64(int(p.off) + 8*i) }

// Typed slot readers shared by all wrappers.

func (p payload) u32f(i int) uint32  { return uint32(p.slot(i)) }
func (p payload) i32f(i int) int32   { return int32(uint32(p.slot(i))) }
func (p payload) u64f(i int) uint64  { return p.slot(i) }
func (p payload) i64f(i int) int64   { return int64(p.slot(i)) }
func (p payload) boolf(i int) bool   { return p.slot(i) != 0 }
func (p payload) strf(i int) string  { return p.r.str(p.slot(i)) }
func (p payload) spanf(i int) []byte { return p.r.span(p.slot(i)) }

func (p payload) file(i int, what string) File {
	return p.r.fileAt(requireOff(uint32(p.slot(i)), what))
}

func (p payload) optFile(i int) (File, bool) {
	off := uint32(p.slot(i))
	if off == 0 {
		return File{}, false
	}
	return p.r.fileAt(off), true
}

func (p payload) proc(i int, what string) Process {
	return p.r.procAt(requireOff(uint32(p.slot(i)), what))
}

func (p payload) optProc(i int) (Process, bool) {
	off := uint32(p.slot(i))
	if off == 0 {
		return Process{}, false
	}
	return p.r.procAt(off), true
}

func (p payload) tokenf(i int, what string) AuditToken {
	return p.r.token(requireOff(uint32(p.slot(i)), what))
}

func (p payload) optToken(i int) (AuditToken, bool) {
	off := uint32(p.slot(i))
	if off == 0 {
		return AuditToken{}, false
	}
	return p.r.token(off), true
}

// strings builds an iterator over a packed string array described by a
// count slot and an array-offset slot.
func (p payload) strings(countSlot, arrSlot int) Iter[string] {
	return p.r.stringArray(uint32(p.slot(arrSlot)), int(p.slot(countSlot)))
}
