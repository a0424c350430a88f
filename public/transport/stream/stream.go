// Package stream frames messages over any io.ReadWriteCloser (a TCP
// net.Conn, a pipe, ...) with a 4-byte big-endian length header, so
// the protocol engine's one-message-per-Write/HandleMessage model
// works over a byte stream.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// MaxFrameSize bounds a single message so a corrupt or hostile length
// header can't make Framer try to allocate an unbounded buffer.
const MaxFrameSize = 16 << 20 // 16 MiB

// Framer writes length-prefixed frames to, and reads them from, one
// underlying connection. Write is safe for concurrent use; Reader
// loops are not meant to be run concurrently with themselves.
type Framer struct {
	conn io.ReadWriteCloser
	mu   sync.Mutex
}

// New wraps conn in a Framer.
func New(conn io.ReadWriteCloser) *Framer {
	return &Framer{conn: conn}
}

// Write sends one length-prefixed frame. It implements
// protocol.Writer.
func (f *Framer) Write(data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("stream: frame too large: %d bytes", len(data))
	}
	header := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(header, uint32(len(data)))
	copy(header[4:], data)

	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.conn.Write(header)
	return err
}

// ReadFrame blocks until one full frame has arrived, returning its
// payload. It returns the underlying io.Reader's error (io.EOF on
// orderly close) when the connection ends.
func (f *Framer) ReadFrame() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(f.conn, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("stream: incoming frame too large: %d bytes", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(f.conn, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Pump reads frames until ReadFrame fails (including on orderly EOF),
// calling handle for each. It blocks the calling goroutine.
func (f *Framer) Pump(handle func([]byte)) error {
	for {
		frame, err := f.ReadFrame()
		if err != nil {
			return err
		}
		handle(frame)
	}
}

// Close closes the underlying connection.
func (f *Framer) Close() error {
	return f.conn.Close()
}
