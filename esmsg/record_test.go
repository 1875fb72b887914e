package esmsg

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode builds the record and hands it over under a no-op kernel. The
// schema version is read back out of the buffer the builder wrote.
func decode(t *testing.T, b *Builder) *Record {
	t.Helper()
	buf := b.Build()
	r, err := NewRecord(nopKernel{}, 1, binary.LittleEndian.Uint32(buf), buf)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func baseProcess() ProcessSpec {
	return ProcessSpec{
		Token:          AuditToken{501, 501, 20, 501, 20, 1234, 100005, 2},
		Ppid:           1,
		OriginalPpid:   1,
		GroupID:        1234,
		SessionID:      100005,
		CSFlags:        0x20002,
		PlatformBinary: true,
		SigningID:      "com.apple.bash",
		ExecutablePath: "/bin/bash",
	}
}

func TestRecordHeaderFields(t *testing.T) {
	ts := time.Unix(1724486400, 987654321)
	b := NewBuilder(4, NotifyExit).
		SetTime(ts).
		SetMachTime(111222333).
		SetDeadline(444555666).
		SetSeqNum(42).
		SetGlobalSeqNum(9001)
	b.ActingProcess(baseProcess()).Event(0)
	r := decode(t, b)

	assert.Equal(t, NotifyExit, r.Kind())
	assert.Equal(t, ActionNotify, r.Action())
	assert.Equal(t, uint32(4), r.Version())
	assert.True(t, ts.Equal(r.Time()))
	assert.Equal(t, uint64(111222333), r.MachTime())
	assert.Equal(t, uint64(444555666), r.Deadline())

	seq, ok := r.SeqNum()
	require.True(t, ok)
	assert.Equal(t, uint64(42), seq)
	gseq, ok := r.GlobalSeqNum()
	require.True(t, ok)
	assert.Equal(t, uint64(9001), gseq)
}

func TestSeqNumVersionGate(t *testing.T) {
	for _, tc := range []struct {
		version uint32
		want    bool
	}{
		{1, false},
		{2, true},
		{3, true},
	} {
		b := NewBuilder(tc.version, NotifyExit).SetSeqNum(7)
		b.ActingProcess(baseProcess()).Event(0)
		_, ok := decode(t, b).SeqNum()
		assert.Equal(t, tc.want, ok, "version %d", tc.version)
	}
}

func TestGlobalSeqNumVersionGate(t *testing.T) {
	for _, tc := range []struct {
		version uint32
		want    bool
	}{
		{3, false},
		{4, true},
		{5, true},
	} {
		b := NewBuilder(tc.version, NotifyExit).SetGlobalSeqNum(7)
		b.ActingProcess(baseProcess()).Event(0)
		_, ok := decode(t, b).GlobalSeqNum()
		assert.Equal(t, tc.want, ok, "version %d", tc.version)
	}
}

func TestThreadVersionGate(t *testing.T) {
	build := func(version uint32) *Record {
		b := NewBuilder(version, NotifyExit).SetThread(0xfeed)
		b.ActingProcess(baseProcess()).Event(0)
		return decode(t, b)
	}

	_, ok := build(3).Thread()
	assert.False(t, ok)

	th, ok := build(4).Thread()
	require.True(t, ok)
	assert.Equal(t, uint64(0xfeed), th.ID())
}

func TestThreadAbsent(t *testing.T) {
	b := NewBuilder(4, NotifyExit)
	b.ActingProcess(baseProcess()).Event(0)
	_, ok := decode(t, b).Thread()
	assert.False(t, ok)
}

func TestAuthResultOnlyOnNotify(t *testing.T) {
	nb := NewBuilder(4, NotifyExec).SetAuthResult(false, 1)
	nb.ActingProcess(baseProcess())
	res, ok := decode(t, nb).AuthResult()
	require.True(t, ok)
	assert.False(t, res.Flags)
	assert.Equal(t, uint32(1), res.Value)

	ab := NewBuilder(4, AuthExec)
	ab.ActingProcess(baseProcess())
	_, ok = decode(t, ab).AuthResult()
	assert.False(t, ok)
}

func TestActingProcessFields(t *testing.T) {
	spec := baseProcess()
	spec.TeamID = "59GAB85EFG"
	spec.CDHash = [20]byte{0xde, 0xad, 0xbe, 0xef}
	spec.TTYPath = "/dev/ttys002"
	spec.StartTime = time.Unix(1724480000, 123000)
	parent := AuditToken{0, 0, 0, 0, 0, 1, 1, 1}
	spec.ParentToken = &parent
	spec.ResponsibleToken = &parent
	spec.ExecutableStat = StatSpec{Ino: 555, Mode: 0o100755, Size: 1337}

	b := NewBuilder(4, NotifyExit)
	b.ActingProcess(spec).Event(0)
	p := decode(t, b).Process()

	assert.Equal(t, uint32(1234), p.PID())
	assert.Equal(t, uint32(501), p.AuditToken().EUID())
	assert.Equal(t, int32(1), p.PPID())
	assert.Equal(t, uint32(0x20002), p.CodesigningFlags())
	assert.True(t, p.IsPlatformBinary())
	assert.False(t, p.IsESClient())
	assert.Equal(t, "com.apple.bash", p.SigningID())
	assert.Equal(t, "59GAB85EFG", p.TeamID())
	assert.Equal(t, byte(0xde), p.CDHash()[0])

	exe := p.Executable()
	assert.Equal(t, "/bin/bash", exe.Path())
	assert.False(t, exe.PathTruncated())
	assert.Equal(t, uint64(555), exe.Stat().Ino())
	assert.Equal(t, int64(1337), exe.Stat().Size())

	tty, ok := p.TTY()
	require.True(t, ok)
	assert.Equal(t, "/dev/ttys002", tty.Path())

	start, ok := p.StartTime()
	require.True(t, ok)
	assert.True(t, spec.StartTime.Equal(start))

	pt, ok := p.ParentAuditToken()
	require.True(t, ok)
	assert.Equal(t, uint32(1), pt.PID())
	_, ok = p.ResponsibleAuditToken()
	assert.True(t, ok)
}

func TestProcessVersionGates(t *testing.T) {
	spec := baseProcess()
	spec.TTYPath = "/dev/ttys000"
	spec.StartTime = time.Unix(1724480000, 0)
	parent := AuditToken{0, 0, 0, 0, 0, 1, 1, 1}
	spec.ParentToken = &parent

	build := func(version uint32) Process {
		b := NewBuilder(version, NotifyExit)
		b.ActingProcess(spec).Event(0)
		return decode(t, b).Process()
	}

	for _, tc := range []struct {
		version                uint32
		tty, start, parentTok  bool
	}{
		{1, false, false, false},
		{2, true, false, false},
		{3, true, true, false},
		{4, true, true, true},
	} {
		p := build(tc.version)
		_, ok := p.TTY()
		assert.Equal(t, tc.tty, ok, "tty at version %d", tc.version)
		_, ok = p.StartTime()
		assert.Equal(t, tc.start, ok, "start time at version %d", tc.version)
		_, ok = p.ParentAuditToken()
		assert.Equal(t, tc.parentTok, ok, "parent token at version %d", tc.version)
	}
}

func TestMissingProcessPanics(t *testing.T) {
	b := NewBuilder(4, NotifyExit).Event(0)
	r := decode(t, b)
	assert.Panics(t, func() { r.Process() })
}

func TestShortBufferRejected(t *testing.T) {
	_, err := NewRecord(nopKernel{}, 1, 4, make([]byte, headerSize-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short record")
}

func TestEmptyStringRefDecodesEmpty(t *testing.T) {
	spec := baseProcess()
	spec.TeamID = "" // platform binaries carry none
	b := NewBuilder(4, NotifyExit)
	b.ActingProcess(spec).Event(0)
	assert.Equal(t, "", decode(t, b).Process().TeamID())
}
