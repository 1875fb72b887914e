package esmsg

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Raw buffer readers. Out-of-range offsets mean the shim handed us a buffer
// that violates its own framing; that is not recoverable, so these panic
// with context instead of corrupting silently.

func (r *Record) u32(off int) uint32 {
	r.check(off, 4)
	return binary.LittleEndian.Uint32(r.buf[off:])
}

func (r *Record) u64(off int) uint64 {
	r.check(off, 8)
	return binary.LittleEndian.Uint64(r.buf[off:])
}

func (r *Record) i64(off int) int64 { return int64(r.u64(off)) }

func (r *Record) check(off, n int) {
	if off < 0 || off+n > len(r.buf) {
		panic(fmt.Sprintf("esmsg: read of %d bytes at offset %d outside %d-byte record", n, off, len(r.buf)))
	}
}

// A ref packs an (offset, length) pair into one 8-byte slot: offset in the
// low half, length in the high half.
func refOff(ref uint64) uint32 { return uint32(ref) }
func refLen(ref uint64) uint32 { return uint32(ref >> 32) }

// str resolves a length-qualified string ref. Zero length yields the empty
// string no matter what the offset says, which handles producers that pair
// a live pointer with a zero length. The returned string aliases the record
// buffer and must not outlive it.
func (r *Record) str(ref uint64) string {
	n := int(refLen(ref))
	if n == 0 {
		return ""
	}
	off := int(refOff(ref))
	r.check(off, n)
	return unsafe.String(&r.buf[off], n)
}

// span resolves a length-qualified byte ref. Same aliasing rules as str.
func (r *Record) span(ref uint64) []byte {
	n := int(refLen(ref))
	if n == 0 {
		return nil
	}
	off := int(refOff(ref))
	r.check(off, n)
	return r.buf[off : off+n : off+n]
}

// blob reads exactly n bytes at off, for fixed-size out-of-line structures
// like audit tokens and cdhashes.
func (r *Record) blob(off uint32, n int) []byte {
	r.check(int(off), n)
	return r.buf[off : int(off)+n : int(off)+n]
}

// requireOff enforces the never-absent contract on sub-record offsets the
// ABI documents as non-null. A zero offset here means the decoder read the
// wrong union arm or the producer broke its contract.
func requireOff(off uint32, what string) uint32 {
	if off == 0 {
		panic(fmt.Sprintf("esmsg: required %s sub-record is absent", what))
	}
	return off
}
