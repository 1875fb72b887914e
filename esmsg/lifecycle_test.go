package esmsg

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/esversion"
)

// nopKernel satisfies Kernel for tests that only care about decoding.
type nopKernel struct{}

func (nopKernel) Copy(handle uint64) uint64 { return handle }
func (nopKernel) Free(uint64)               {}
func (nopKernel) Retain(uint64)             {}
func (nopKernel) Release(uint64)            {}

// fakeKernel counts native lifetime calls and tracks per-handle balance.
type fakeKernel struct {
	mu         sync.Mutex
	nextHandle uint64
	copies     int
	frees      []uint64
	retains    []uint64
	releases   []uint64
}

func (k *fakeKernel) Copy(handle uint64) uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.copies++
	k.nextHandle++
	return 1000 + k.nextHandle
}

func (k *fakeKernel) Free(handle uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.frees = append(k.frees, handle)
}

func (k *fakeKernel) Retain(handle uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.retains = append(k.retains, handle)
}

func (k *fakeKernel) Release(handle uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.releases = append(k.releases, handle)
}

func lifecycleBuf() []byte {
	b := NewBuilder(4, NotifyExit)
	b.ActingProcess(baseProcess()).Event(0)
	return b.Build()
}

func TestCopyRegimeSingleAcquireRelease(t *testing.T) {
	k := &fakeKernel{}
	r, err := newRecord(k, 7, 4, lifecycleBuf(), regimeCopy)
	require.NoError(t, err)

	c1 := r.Clone()
	c2 := c1.Clone()

	assert.Equal(t, 1, k.copies, "clones share the one duplicate")
	assert.Empty(t, k.frees)

	c1.Release()
	r.Release()
	assert.Empty(t, k.frees, "duplicate lives until the last holder goes")

	c2.Release()
	require.Len(t, k.frees, 1)
	assert.Equal(t, uint64(1001), k.frees[0], "frees the duplicate, not the delivered handle")
	assert.Empty(t, k.retains)
	assert.Empty(t, k.releases)
}

func TestRetainRegimeSingleAcquireRelease(t *testing.T) {
	k := &fakeKernel{}
	r, err := newRecord(k, 7, 4, lifecycleBuf(), regimeRetain)
	require.NoError(t, err)

	c1 := r.Clone()
	c2 := r.Clone()

	require.Len(t, k.retains, 1)
	assert.Equal(t, uint64(7), k.retains[0])
	assert.Empty(t, k.releases)

	r.Release()
	c2.Release()
	assert.Empty(t, k.releases)

	c1.Release()
	require.Len(t, k.releases, 1)
	assert.Equal(t, uint64(7), k.releases[0])
	assert.Equal(t, 0, k.copies)
	assert.Empty(t, k.frees)
}

func TestDoubleReleasePanics(t *testing.T) {
	k := &fakeKernel{}
	r, err := newRecord(k, 7, 4, lifecycleBuf(), regimeRetain)
	require.NoError(t, err)

	clone := r.Clone()
	r.Release()
	assert.Panics(t, func() { r.Release() }, "each handle releases exactly once")

	// The panic must not have touched the shared refcount.
	assert.Empty(t, k.releases)
	clone.Release()
	assert.Len(t, k.releases, 1)
}

func TestCloneAfterReleasePanics(t *testing.T) {
	k := &fakeKernel{}
	r, err := newRecord(k, 7, 4, lifecycleBuf(), regimeRetain)
	require.NoError(t, err)

	keep := r.Clone()
	r.Release()
	assert.Panics(t, func() { r.Clone() })
	keep.Release()
}

func TestCloneSharesDecodedState(t *testing.T) {
	k := &fakeKernel{}
	r, err := newRecord(k, 7, 4, lifecycleBuf(), regimeRetain)
	require.NoError(t, err)

	clone := r.Clone()
	r.Release()

	// The clone stays fully readable after the original handle is gone.
	assert.Equal(t, NotifyExit, clone.Kind())
	assert.Equal(t, uint32(1234), clone.Process().PID())
	clone.Release()
	assert.Len(t, k.releases, 1)
}

func TestNegotiatedVersionTracksRelease(t *testing.T) {
	defer esversion.Set(10, 15, 0)

	for _, tc := range []struct {
		major, minor, patch uint32
		want                uint32
	}{
		{10, 15, 0, 1},
		{10, 15, 1, 2},
		{10, 15, 4, 3},
		{11, 0, 0, 4},
		{12, 3, 0, 5},
		{13, 0, 0, 6},
		{13, 3, 0, 7},
		{14, 4, 0, 7},
	} {
		esversion.Set(tc.major, tc.minor, tc.patch)
		assert.Equal(t, tc.want, NegotiatedVersion(),
			"release %d.%d.%d", tc.major, tc.minor, tc.patch)
	}
}
