package process

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

func newMap(t *testing.T, size int) *ProcessMap {
	t.Helper()
	pm, err := NewProcessMap(size)
	require.NoError(t, err)
	return pm
}

func TestMapAddGetRemove(t *testing.T) {
	pm := newMap(t, 16)
	key := Key{PID: 100, Version: 1}
	pm.Add(key, &ProcessInfo{PID: 100, PIDVersion: 1, Comm: "bash"})

	info, ok := pm.Get(key)
	require.True(t, ok)
	assert.Equal(t, "bash", info.Comm)

	_, ok = pm.Get(Key{PID: 100, Version: 2})
	assert.False(t, ok, "a re-execed pid is a different process")

	pm.Remove(key)
	_, ok = pm.Get(key)
	assert.False(t, ok)
}

func TestMapEvictsOldest(t *testing.T) {
	pm := newMap(t, 4)
	for pid := uint32(1); pid <= 8; pid++ {
		pm.Add(Key{PID: pid, Version: 1}, &ProcessInfo{PID: pid, PIDVersion: 1})
	}
	assert.Equal(t, 4, pm.Len())
	_, ok := pm.Get(Key{PID: 1, Version: 1})
	assert.False(t, ok, "oldest entry evicted")
	_, ok = pm.Get(Key{PID: 8, Version: 1})
	assert.True(t, ok)
}

func TestGetByPIDPrefersNewestIncarnation(t *testing.T) {
	pm := newMap(t, 16)
	pm.Add(Key{PID: 55, Version: 1}, &ProcessInfo{PID: 55, PIDVersion: 1, Comm: "sh"})
	pm.Add(Key{PID: 55, Version: 3}, &ProcessInfo{PID: 55, PIDVersion: 3, Comm: "python3"})
	pm.Add(Key{PID: 56, Version: 1}, &ProcessInfo{PID: 56, PIDVersion: 1, Comm: "zsh"})

	info, ok := pm.GetByPID(55)
	require.True(t, ok)
	assert.Equal(t, "python3", info.Comm)

	_, ok = pm.GetByPID(99)
	assert.False(t, ok)
}

func TestAncestryWalk(t *testing.T) {
	pm := newMap(t, 16)
	pm.Add(Key{PID: 1, Version: 1}, &ProcessInfo{PID: 1, PIDVersion: 1, Comm: "launchd"})
	pm.Add(Key{PID: 10, Version: 1}, &ProcessInfo{PID: 10, PIDVersion: 1, PPID: 1, Comm: "Terminal"})
	pm.Add(Key{PID: 20, Version: 1}, &ProcessInfo{PID: 20, PIDVersion: 1, PPID: 10, Comm: "zsh"})
	pm.Add(Key{PID: 30, Version: 1}, &ProcessInfo{PID: 30, PIDVersion: 1, PPID: 20, Comm: "git"})

	chain := pm.Ancestry(Key{PID: 30, Version: 1}, 10)
	require.Len(t, chain, 3)
	assert.Equal(t, "zsh", chain[0].Comm)
	assert.Equal(t, "Terminal", chain[1].Comm)
	assert.Equal(t, "launchd", chain[2].Comm)

	parent, ok := pm.Parent(Key{PID: 30, Version: 1})
	require.True(t, ok)
	assert.Equal(t, "zsh", parent.Comm)

	kids := pm.Children(10)
	require.Len(t, kids, 1)
	assert.Equal(t, "zsh", kids[0].Comm)
}

func TestAncestryCyclesTerminate(t *testing.T) {
	pm := newMap(t, 16)
	// A stale map can transiently show a loop; the walk must not spin.
	pm.Add(Key{PID: 2, Version: 1}, &ProcessInfo{PID: 2, PIDVersion: 1, PPID: 3})
	pm.Add(Key{PID: 3, Version: 1}, &ProcessInfo{PID: 3, PIDVersion: 1, PPID: 2})
	chain := pm.Ancestry(Key{PID: 2, Version: 1}, 100)
	assert.Len(t, chain, 1)
}

func TestFromExec(t *testing.T) {
	b := esmsg.NewBuilder(4, esmsg.NotifyExec)
	b.ActingProcess(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, 800, 100005, 4},
		ExecutablePath: "/bin/zsh",
	})
	target := esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, 801, 100005, 2},
		Ppid:           800,
		CSFlags:        0x20002,
		PlatformBinary: true,
		SigningID:      "com.apple.ls",
		ExecutablePath: "/bin/ls",
		TTYPath:        "/dev/ttys004",
	}
	targetOff := b.Process(target)
	cwdOff := b.File("/Users/demo/src", esmsg.StatSpec{})
	argArr := b.StringArray([]string{"ls", "-la"})
	envArr := b.StringArray([]string{"TERM=xterm-256color"})
	b.Event(
		uint64(targetOff), 0, 0, uint64(cwdOff), 3, 0, 0,
		2, uint64(argArr), 1, uint64(envArr), 0, 0,
	)
	buf := b.Build()
	rec, err := esmsg.NewRecord(nopKernel{}, 1, binary.LittleEndian.Uint32(buf), buf)
	require.NoError(t, err)
	defer rec.Release()

	ev, ok := rec.Event().(esmsg.Exec)
	require.True(t, ok)

	info := FromExec(ev)
	assert.Equal(t, uint32(801), info.PID)
	assert.Equal(t, uint32(2), info.PIDVersion)
	assert.Equal(t, uint32(800), info.PPID)
	assert.Equal(t, "/bin/ls", info.ExePath)
	assert.Equal(t, "ls", info.Comm)
	assert.Equal(t, "ls -la", info.CmdLine)
	assert.Equal(t, []string{"TERM=xterm-256color"}, info.Environment)
	assert.Equal(t, "/Users/demo/src", info.WorkingDir)
	assert.Equal(t, "com.apple.ls", info.SigningID)
	assert.True(t, info.PlatformBinary)
	assert.Equal(t, "/dev/ttys004", info.TTYPath)
	assert.Equal(t, Key{PID: 801, Version: 2}, KeyFor(ev.Target()))
}
