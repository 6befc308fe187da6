package transport

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"
)

// SocketAdapter sends line-framed ASCII commands over a raw TCP connection.
// Several receiver protocols (Denon/Marantz style) permit only one concurrent
// client, so the adapter keeps one persistent connection per host:port and
// serializes send/await cycles on it. Reuse is an optimization only: if a
// connection has gone stale the adapter redials and the call still succeeds.
type SocketAdapter struct {
	dialTimeout time.Duration
	readTimeout time.Duration
	terminator  byte

	mu    sync.Mutex
	conns map[string]*deviceConn
}

// deviceConn owns the persistent connection for one device. Its mutex is the
// serialization point: one in-flight send/await cycle per device at a time,
// with waiters queued rather than rejected.
type deviceConn struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewSocketAdapter creates a raw-socket adapter. Commands are terminated with
// CR, the framing used by Denon-style control protocols.
func NewSocketAdapter(dialTimeout, readTimeout time.Duration) *SocketAdapter {
	return &SocketAdapter{
		dialTimeout: dialTimeout,
		readTimeout: readTimeout,
		terminator:  '\r',
		conns:       make(map[string]*deviceConn),
	}
}

// Send writes the payload followed by the line terminator and, when the
// command expects a reply, reads one terminated line within the read timeout.
func (adapter *SocketAdapter) Send(ctx context.Context, req Request) (*Response, error) {
	dc := adapter.deviceConn(net.JoinHostPort(req.Host, strconv.Itoa(req.Port)))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	reused := dc.conn != nil
	if err := adapter.ensureConn(ctx, dc, req); err != nil {
		return nil, err
	}

	if err := adapter.write(dc, req.Payload); err != nil {
		dc.close()
		if !reused {
			return nil, &Error{Kind: KindConnectFailed, Message: err.Error()}
		}
		// The persistent connection went stale between calls; one redial.
		if err := adapter.ensureConn(ctx, dc, req); err != nil {
			return nil, err
		}
		if err := adapter.write(dc, req.Payload); err != nil {
			dc.close()
			return nil, &Error{Kind: KindConnectFailed, Message: err.Error()}
		}
	}

	if !req.ExpectsResponse {
		return &Response{}, nil
	}

	deadline := time.Now().Add(adapter.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := dc.conn.SetReadDeadline(deadline); err != nil {
		dc.close()
		return nil, &Error{Kind: KindConnectFailed, Message: err.Error()}
	}

	line, err := dc.reader.ReadString(adapter.terminator)
	if err != nil {
		// A dead connection must not linger: the next caller redials rather
		// than queueing behind a broken stream.
		dc.close()
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &Error{Kind: KindTimeout, Message: "no reply within timeout"}
		}
		return nil, &Error{Kind: KindConnectFailed, Message: err.Error()}
	}

	return &Response{Body: line[:len(line)-1]}, nil
}

// Close shuts down all persistent connections.
func (adapter *SocketAdapter) Close() {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	for addr, dc := range adapter.conns {
		dc.mu.Lock()
		dc.close()
		dc.mu.Unlock()
		delete(adapter.conns, addr)
	}
}

// deviceConn returns the connection holder for an address, creating it if
// this is the first send to that device.
func (adapter *SocketAdapter) deviceConn(addr string) *deviceConn {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	dc, ok := adapter.conns[addr]
	if !ok {
		dc = &deviceConn{}
		adapter.conns[addr] = dc
	}
	return dc
}

// ensureConn dials the device if no live connection is held. Caller holds
// dc.mu.
func (adapter *SocketAdapter) ensureConn(ctx context.Context, dc *deviceConn, req Request) error {
	if dc.conn != nil {
		return nil
	}

	addr := net.JoinHostPort(req.Host, strconv.Itoa(req.Port))
	dialer := net.Dialer{Timeout: adapter.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return classifyDialError(err)
	}

	slog.Debug("Opened receiver connection", "component", "SocketAdapter", "addr", addr)
	dc.conn = conn
	dc.reader = bufio.NewReader(conn)
	return nil
}

func (adapter *SocketAdapter) write(dc *deviceConn, payload string) error {
	if err := dc.conn.SetWriteDeadline(time.Now().Add(adapter.dialTimeout)); err != nil {
		return err
	}
	_, err := dc.conn.Write(append([]byte(payload), adapter.terminator))
	return err
}

func (dc *deviceConn) close() {
	if dc.conn != nil {
		dc.conn.Close()
		dc.conn = nil
		dc.reader = nil
	}
}

func classifyDialError(err error) *Error {
	// A receiver whose single connection slot is taken resets new dials
	// immediately, which surfaces as ECONNREFUSED/ECONNRESET.
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &Error{Kind: KindConnectionRefused, Message: "connection refused"}
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "connect timed out"}
	}
	if ctxErr := contextCause(err); ctxErr != nil {
		return ctxErr
	}
	return &Error{Kind: KindConnectFailed, Message: err.Error()}
}

func contextCause(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "no response within timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindConnectFailed, Message: "request canceled"}
	}
	return nil
}
