package network

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/esmsg"
)

type nopKernel struct{}

func (nopKernel) Copy(handle uint64) uint64 { return handle }
func (nopKernel) Free(uint64)               {}
func (nopKernel) Retain(uint64)             {}
func (nopKernel) Release(uint64)            {}

func decode(t *testing.T, b *esmsg.Builder) *esmsg.Record {
	t.Helper()
	buf := b.Build()
	rec, err := esmsg.NewRecord(nopKernel{}, 1, binary.LittleEndian.Uint32(buf), buf)
	require.NoError(t, err)
	t.Cleanup(rec.Release)
	return rec
}

func actingProcess(b *esmsg.Builder, pid uint32, path string) {
	b.ActingProcess(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, pid, 100005, 1},
		SigningID:      "com.example.agent",
		ExecutablePath: path,
	})
}

func TestCreateBindInfo(t *testing.T) {
	b := esmsg.NewBuilder(4, esmsg.NotifyUipcBind)
	actingProcess(b, 700, "/usr/local/bin/agentd")
	dirOff := b.File("/var/run", esmsg.StatSpec{})
	nameRef := b.String("agent.sock")
	b.Event(uint64(dirOff), nameRef, 0o600)

	rec := decode(t, b)
	ev, ok := rec.Event().(esmsg.UipcBind)
	require.True(t, ok)

	info := CreateBindInfo(rec, ev)
	assert.Equal(t, uint32(700), info.PID)
	assert.Equal(t, "agentd", info.ProcessName)
	assert.Equal(t, "/var/run/agent.sock", info.Path)
	assert.Equal(t, OpBind, info.Operation)
	assert.Equal(t, uint32(0o600), info.Mode)
}

func TestCreateConnectInfo(t *testing.T) {
	b := esmsg.NewBuilder(4, esmsg.NotifyUipcConnect)
	actingProcess(b, 701, "/usr/bin/client")
	fileOff := b.File("/var/run/agent.sock", esmsg.StatSpec{Mode: 0o140600})
	b.Event(uint64(fileOff), 1, 1, 0)

	rec := decode(t, b)
	ev, ok := rec.Event().(esmsg.UipcConnect)
	require.True(t, ok)

	info := CreateConnectInfo(rec, ev)
	assert.Equal(t, uint32(701), info.PID)
	assert.Equal(t, "/var/run/agent.sock", info.Path)
	assert.Equal(t, OpConnect, info.Operation)
	assert.Equal(t, int32(1), info.Domain)
	assert.Equal(t, int32(1), info.SockType)
}

func TestEndpointMapIndexes(t *testing.T) {
	em := NewEndpointMap(8)
	em.Add(&EndpointInfo{PID: 1, Path: "/tmp/a.sock", Operation: OpBind})
	em.Add(&EndpointInfo{PID: 2, Path: "/tmp/a.sock", Operation: OpConnect})
	em.Add(&EndpointInfo{PID: 2, Path: "/tmp/b.sock", Operation: OpConnect})

	byPath := em.ByPath("/tmp/a.sock")
	require.Len(t, byPath, 2)
	assert.Equal(t, OpBind, byPath[0].Operation)

	byPID := em.ByPID(2)
	assert.Len(t, byPID, 2)

	listeners := em.Listeners()
	require.Len(t, listeners, 1)
	assert.Equal(t, uint32(1), listeners[0].PID)

	em.Forget(2)
	assert.Empty(t, em.ByPID(2))
	assert.Len(t, em.ByPath("/tmp/a.sock"), 2, "path history survives process exit")
}

func TestEndpointMapBoundedPerPath(t *testing.T) {
	em := NewEndpointMap(2)
	for pid := uint32(1); pid <= 5; pid++ {
		em.Add(&EndpointInfo{PID: pid, Path: "/tmp/s.sock", Operation: OpConnect})
	}
	list := em.ByPath("/tmp/s.sock")
	require.Len(t, list, 2)
	assert.Equal(t, uint32(4), list[0].PID)
	assert.Equal(t, uint32(5), list[1].PID)
}

func TestFormatEndpointEvent(t *testing.T) {
	bind := &EndpointInfo{PID: 9, ProcessName: "agentd", Path: "/var/run/agent.sock", Operation: OpBind, Mode: 0o600}
	assert.Equal(t, "UIPC_BIND: pid=9 comm=agentd path=/var/run/agent.sock mode=0600", FormatEndpointEvent(bind))

	conn := &EndpointInfo{PID: 10, ProcessName: "client", Path: "/var/run/agent.sock", Operation: OpConnect, SockType: 1, Protocol: 0}
	assert.Equal(t, "UIPC_CONNECT: pid=10 comm=client path=/var/run/agent.sock type=1 protocol=0", FormatEndpointEvent(conn))
}
