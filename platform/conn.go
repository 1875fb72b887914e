package platform

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"es-recorder/esmsg"
)

// Connection is one client session with the native shim. It owns the
// socket, hands out decoded records, and carries the lifetime calls those
// records make back to the shim. Reads belong to a single goroutine;
// writes are serialized internally and safe from any goroutine.
type Connection struct {
	conn   net.Conn
	r      *bufio.Reader
	schema uint32

	wmu    sync.Mutex
	closed bool

	// Copy aliases are client-allocated so the call needs no round trip.
	// The top bit keeps them out of the shim's own handle space.
	aliases atomic.Uint64
}

// Dial connects to the shim's unix socket and performs the greeting.
func Dial(socketPath string) (*Connection, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to dial shim socket %s: %v", socketPath, err)
	}
	c, err := NewConnection(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewConnection wraps an established transport and performs the greeting.
// Split from Dial so tests can drive a connection over a pipe.
func NewConnection(conn net.Conn) (*Connection, error) {
	c := &Connection{conn: conn, r: bufio.NewReader(conn)}

	var hello [12]byte
	if _, err := io.ReadFull(c.r, hello[:]); err != nil {
		return nil, fmt.Errorf("failed to read shim greeting: %v", err)
	}
	if magic := binary.LittleEndian.Uint32(hello[0:]); magic != protoMagic {
		return nil, fmt.Errorf("bad shim magic %#x", magic)
	}
	if pv := binary.LittleEndian.Uint32(hello[4:]); pv != protoVersion {
		return nil, fmt.Errorf("shim speaks protocol %d, want %d", pv, protoVersion)
	}
	c.schema = binary.LittleEndian.Uint32(hello[8:])
	if c.schema == 0 {
		// Old shims do not report the negotiated schema; derive it from
		// the configured OS release.
		c.schema = esmsg.NegotiatedVersion()
	}
	return c, nil
}

// SchemaVersion is the message schema version this session delivers.
func (c *Connection) SchemaVersion() uint32 { return c.schema }

// Next blocks for the next delivered record. The returned record owns one
// native reference and must be Released. Returns io.EOF when the shim
// closes the stream cleanly.
func (c *Connection) Next() (*esmsg.Record, error) {
	handle, buf, err := readDelivery(c.r)
	if err != nil {
		return nil, err
	}
	rec, err := esmsg.NewRecord(c, handle, c.schema, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode delivered record: %v", err)
	}
	return rec, nil
}

// Subscribe asks the shim for the given event kinds, in addition to any
// already subscribed.
func (c *Connection) Subscribe(kinds ...esmsg.EventType) error {
	return c.sendKinds(opSubscribe, kinds)
}

// Unsubscribe stops delivery of the given event kinds.
func (c *Connection) Unsubscribe(kinds ...esmsg.EventType) error {
	return c.sendKinds(opUnsubscribe, kinds)
}

func (c *Connection) sendKinds(op uint32, kinds []esmsg.EventType) error {
	body := make([]byte, 4*len(kinds))
	for i, k := range kinds {
		binary.LittleEndian.PutUint32(body[i*4:], uint32(k))
	}
	return c.send(op, body)
}

// MutePath suppresses delivery of events targeting the given path.
func (c *Connection) MutePath(scope MuteScope, path string) error {
	return c.send(opMutePath, muteBody(scope, path))
}

// UnmutePath removes a mute installed by MutePath.
func (c *Connection) UnmutePath(scope MuteScope, path string) error {
	return c.send(opUnmutePath, muteBody(scope, path))
}

func muteBody(scope MuteScope, path string) []byte {
	body := make([]byte, 4+len(path))
	binary.LittleEndian.PutUint32(body, uint32(scope))
	copy(body[4:], path)
	return body
}

// RespondAuth answers an auth record with an allow or deny verdict. The
// record must expect a verdict response; answering with the wrong protocol
// gets the client killed by the OS, so it is rejected here instead.
func (c *Connection) RespondAuth(rec *esmsg.Record, allow, cache bool) error {
	resp, ok := rec.ExpectedResponse()
	if !ok {
		return fmt.Errorf("record kind %v wants no response", rec.Kind())
	}
	if resp.Kind != esmsg.ResponseAuth {
		return fmt.Errorf("record kind %v wants a flag response, not a verdict", rec.Kind())
	}
	verdict := uint32(verdictDeny)
	if allow {
		verdict = verdictAllow
	}
	return c.send(opRespondAuth, respondBody(rec.Handle(), verdict, cache))
}

// RespondFlags answers a flag-response auth record with the subset of its
// requested flags to permit.
func (c *Connection) RespondFlags(rec *esmsg.Record, authorized uint32, cache bool) error {
	resp, ok := rec.ExpectedResponse()
	if !ok {
		return fmt.Errorf("record kind %v wants no response", rec.Kind())
	}
	if resp.Kind != esmsg.ResponseFlags {
		return fmt.Errorf("record kind %v wants a verdict, not flags", rec.Kind())
	}
	return c.send(opRespondFlags, respondBody(rec.Handle(), authorized, cache))
}

// Copy implements esmsg.Kernel. The duplicate's handle is allocated here
// and announced to the shim, so no reply is needed.
func (c *Connection) Copy(handle uint64) uint64 {
	alias := c.aliases.Add(1) | 1<<63
	body := make([]byte, 16)
	binary.LittleEndian.PutUint64(body[0:], handle)
	binary.LittleEndian.PutUint64(body[8:], alias)
	c.sendLifetime(opCopy, body)
	return alias
}

// Free implements esmsg.Kernel.
func (c *Connection) Free(handle uint64) { c.sendLifetime(opFree, handleBody(handle)) }

// Retain implements esmsg.Kernel.
func (c *Connection) Retain(handle uint64) { c.sendLifetime(opRetain, handleBody(handle)) }

// Release implements esmsg.Kernel.
func (c *Connection) Release(handle uint64) { c.sendLifetime(opRelease, handleBody(handle)) }

// sendLifetime is send minus the error: the Kernel interface has no error
// channel, and a failed lifetime call means the session is already dead,
// at which point the shim drops every outstanding handle anyway.
func (c *Connection) sendLifetime(op uint32, body []byte) {
	_ = c.send(op, body)
}

func (c *Connection) send(op uint32, body []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	return writeControl(c.conn, op, body)
}

// Close tears down the session. The shim releases all outstanding handles
// when the socket drops.
func (c *Connection) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
