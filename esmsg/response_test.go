package esmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseClassificationAllKinds(t *testing.T) {
	// Payload big enough for every wrapper's slot array; all-zero slots are
	// valid for classification since only the open event is decoded on this
	// path.
	slots := make([]uint64, 16)

	for k := EventType(0); k < NumKinds; k++ {
		b := NewBuilder(7, k)
		b.ActingProcess(baseProcess()).Event(slots...)
		r := decode(t, b)

		require.True(t, k.Known(), "kind %d", k)
		assert.NotEqual(t, "unknown", k.String(), "kind %d", k)

		resp, ok := r.ExpectedResponse()
		switch {
		case k == AuthOpen:
			require.True(t, ok)
			assert.Equal(t, ResponseFlags, resp.Kind, "open answers with a flag mask")
		case k.IsAuth():
			require.True(t, ok, "kind %v", k)
			assert.Equal(t, ResponseAuth, resp.Kind, "kind %v", k)
		default:
			assert.False(t, ok, "notify kind %v wants no reply", k)
		}
	}
}

func TestOpenFlagResponseEchoesFFlag(t *testing.T) {
	b := NewBuilder(4, AuthOpen)
	b.ActingProcess(baseProcess())
	fileOff := b.File("/etc/hosts", StatSpec{})
	b.Event(uint64(uint32(0x0006)), uint64(fileOff))
	r := decode(t, b)

	resp, ok := r.ExpectedResponse()
	require.True(t, ok)
	assert.Equal(t, ResponseFlags, resp.Kind)
	assert.Equal(t, int32(0x0006), resp.Flags)

	ev, ok := r.Event().(Open)
	require.True(t, ok)
	assert.Equal(t, int32(0x0006), ev.FFlag())
	assert.Equal(t, "/etc/hosts", ev.File().Path())
}

func TestEveryKindDecodes(t *testing.T) {
	// Decoding must hand back a non-nil wrapper whose Kind echoes the tag
	// for every kind in the table. Field accessors are exercised by the
	// per-event tests; this guards the table wiring itself.
	slots := make([]uint64, 16)
	for k := EventType(0); k < NumKinds; k++ {
		b := NewBuilder(7, k)
		b.ActingProcess(baseProcess()).Event(slots...)
		ev := decode(t, b).Event()
		require.NotNil(t, ev, "kind %v", k)
		assert.Equal(t, k, ev.Kind(), "kind %v", k)
	}
}

func TestAuthNotifyPairsShareWrapper(t *testing.T) {
	slots := make([]uint64, 16)
	for _, pair := range []struct {
		auth, notify EventType
	}{
		{AuthExec, NotifyExec},
		{AuthOpen, NotifyOpen},
		{AuthRename, NotifyRename},
		{AuthUnlink, NotifyUnlink},
		{AuthGetTask, NotifyGetTask},
	} {
		ab := NewBuilder(7, pair.auth)
		ab.ActingProcess(baseProcess()).Event(slots...)
		nb := NewBuilder(7, pair.notify)
		nb.ActingProcess(baseProcess()).Event(slots...)
		assert.IsType(t, decode(t, ab).Event(), decode(t, nb).Event(),
			"%v and %v", pair.auth, pair.notify)
	}
}
