package esmsg

import (
	"encoding/binary"
	"fmt"
)

// AuditToken identifies a Mach task to the BSM audit system. The kernel
// treats it as opaque, but the field positions are stable in practice and
// every endpoint-security consumer extracts them the same way.
type AuditToken [8]uint32

func (r *Record) token(off uint32) AuditToken {
	b := r.blob(off, 32)
	var t AuditToken
	for i := range t {
		t[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return t
}

// AUID is the audit user id, or ^0 for unaudited processes.
func (t AuditToken) AUID() uint32 { return t[0] }

// EUID is the effective user id.
func (t AuditToken) EUID() uint32 { return t[1] }

// EGID is the effective group id.
func (t AuditToken) EGID() uint32 { return t[2] }

// RUID is the real user id.
func (t AuditToken) RUID() uint32 { return t[3] }

// RGID is the real group id.
func (t AuditToken) RGID() uint32 { return t[4] }

// PID is the process id.
func (t AuditToken) PID() uint32 { return t[5] }

// ASID is the audit session id.
func (t AuditToken) ASID() uint32 { return t[6] }

// PIDVersion disambiguates reused pids; a (pid, pidversion) pair names one
// process incarnation exactly.
func (t AuditToken) PIDVersion() uint32 { return t[7] }

func (t AuditToken) String() string {
	return fmt.Sprintf("pid=%d.%d euid=%d", t.PID(), t.PIDVersion(), t.EUID())
}
