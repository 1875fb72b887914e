package esmsg

import (
	"sync/atomic"

	"es-recorder/esversion"
)

// Kernel abstracts the native message-lifetime calls the shim performs on
// our behalf. Handles are shim-side identifiers for the original kernel
// message; the flattened bytes travel separately.
type Kernel interface {
	// Copy deep-duplicates the native message and returns the duplicate's
	// handle. Only used on 10.15, where the kernel does not refcount and
	// the delivered message dies when the handler returns.
	Copy(handle uint64) uint64
	// Free releases a duplicate made by Copy.
	Free(handle uint64)
	// Retain bumps the kernel-side reference count of the delivered
	// message. 11.0 and later.
	Retain(handle uint64)
	// Release drops a reference taken by Retain.
	Release(handle uint64)
}

type lifecycleRegime int

const (
	// regimeCopy: acquire duplicates, release frees the duplicate.
	regimeCopy lifecycleRegime = iota
	// regimeRetain: acquire and release map to the kernel refcount.
	regimeRetain
)

// lifeState is shared between a record and its clones: one native acquire
// on construction, one native release when the last holder goes away,
// regardless of how many clones were made in between.
type lifeState struct {
	k      Kernel
	handle uint64
	regime lifecycleRegime
	refs   atomic.Int32
}

// NewRecord takes ownership of a delivered message. The regime is fixed at
// build time (see the es_legacy_lifecycle tag), not probed per call, so the
// hot delivery path carries no version check. version is the negotiated
// schema version reported by the shim.
func NewRecord(k Kernel, handle uint64, version uint32, buf []byte) (*Record, error) {
	return newRecord(k, handle, version, buf, buildRegime)
}

func newRecord(k Kernel, handle uint64, version uint32, buf []byte, regime lifecycleRegime) (*Record, error) {
	if err := validate(buf); err != nil {
		return nil, err
	}
	st := &lifeState{k: k, handle: handle, regime: regime}
	st.refs.Store(1)
	switch regime {
	case regimeCopy:
		st.handle = k.Copy(handle)
	case regimeRetain:
		k.Retain(handle)
	}
	return &Record{buf: buf, version: version, state: st}, nil
}

// Clone returns an independent handle on the same record. O(1) in both
// regimes: clones share the acquired native reference and the flattened
// buffer. Each clone must be Released exactly once.
func (r *Record) Clone() *Record {
	if r.released {
		panic("esmsg: Clone of released record")
	}
	r.state.refs.Add(1)
	return &Record{buf: r.buf, version: r.version, state: r.state}
}

// Release gives up this handle. The native reference is dropped when the
// last handle goes; releasing the same handle twice is a protocol violation
// against the kernel and panics rather than corrupting the refcount.
func (r *Record) Release() {
	if r.released {
		panic("esmsg: record released twice")
	}
	r.released = true
	if r.state.refs.Add(-1) != 0 {
		return
	}
	switch r.state.regime {
	case regimeCopy:
		r.state.k.Free(r.state.handle)
	case regimeRetain:
		r.state.k.Release(r.state.handle)
	}
}

// Handle is the native-side identifier of this record's acquired
// reference. Response frames cite it; it is meaningless outside the
// session the record arrived on.
func (r *Record) Handle() uint64 { return r.state.handle }

// NegotiatedVersion derives the schema version a fresh connection will see
// from the configured OS release. Used by the shim connection when it does
// not report one explicitly.
func NegotiatedVersion() uint32 {
	switch {
	case esversion.AtLeast(13, 3, 0):
		return 7
	case esversion.AtLeast(13, 0, 0):
		return 6
	case esversion.AtLeast(12, 3, 0):
		return 5
	case esversion.AtLeast(11, 0, 0):
		return 4
	case esversion.AtLeast(10, 15, 4):
		return 3
	case esversion.AtLeast(10, 15, 1):
		return 2
	default:
		return 1
	}
}
