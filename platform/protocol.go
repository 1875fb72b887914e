// Package platform speaks the native shim's socket protocol: flattened
// endpoint-security records in, control and response frames out.
package platform

import (
	"encoding/binary"
	"fmt"
	"io"
)

// The shim greets with magic, protocol version, and the schema version it
// negotiated with the OS. Everything after the greeting is frames.
const (
	protoMagic   = 0x45534d31 // "ESM1"
	protoVersion = 1
)

// Control opcodes, client to shim.
const (
	opSubscribe    = 1
	opUnsubscribe  = 2
	opMutePath     = 3
	opUnmutePath   = 4
	opRespondAuth  = 5
	opRespondFlags = 6
	opRetain       = 7
	opRelease      = 8
	opCopy         = 9
	opFree         = 10
)

// Auth verdict values, mirroring the native allow/deny codes.
const (
	verdictAllow = 0
	verdictDeny  = 1
)

// MuteScope selects how a mute path matches.
type MuteScope uint32

const (
	// MuteLiteral mutes events whose target path equals the given path.
	MuteLiteral MuteScope = 0
	// MutePrefix mutes events whose target path starts with the given path.
	MutePrefix MuteScope = 1
)

// writeControl writes one control frame: opcode, body length, body.
func writeControl(w io.Writer, op uint32, body []byte) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], op)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write control header: %v", err)
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write control body: %v", err)
	}
	return nil
}

// readDelivery reads one delivery frame: record size, shim handle, record
// bytes. io.EOF passes through untouched so callers can tell a clean
// shutdown from a torn frame.
func readDelivery(r io.Reader) (handle uint64, buf []byte, err error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("failed to read delivery header: %v", err)
	}
	size := binary.LittleEndian.Uint32(hdr[0:])
	handle = binary.LittleEndian.Uint64(hdr[4:])
	if size > maxRecordSize {
		return 0, nil, fmt.Errorf("delivery frame of %d bytes exceeds limit %d", size, maxRecordSize)
	}
	buf = make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("failed to read delivery body: %v", err)
	}
	return handle, buf, nil
}

// Anything bigger than this is a torn stream, not a message. Exec events
// with huge environments stay well under it.
const maxRecordSize = 4 << 20

func handleBody(handle uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], handle)
	return b[:]
}

func respondBody(handle uint64, value uint32, cache bool) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:], handle)
	binary.LittleEndian.PutUint32(b[8:], value)
	if cache {
		binary.LittleEndian.PutUint32(b[12:], 1)
	}
	return b
}
