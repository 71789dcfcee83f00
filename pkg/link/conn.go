// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

// Conn is the byte transport under the link: a serial-attached radio
// modem or a websocket bridge to one.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// ErrConnClosed is returned when reading from a closed websocket connection.
var ErrConnClosed = fmt.Errorf("link: connection closed")

// serialConn wraps a serial port.
type serialConn struct {
	port serial.Port
}

func (s *serialConn) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialConn) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialConn) Close() error                { return s.port.Close() }

// wsConn wraps a websocket connection for byte-level reading.
type wsConn struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *wsConn) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnClosed
	}
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error { return w.conn.Close() }

// OpenSerial opens a serial port to the radio modem.
func OpenSerial(portName string, baudRate int) (Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("link: failed to open serial port %s: %v", portName, err)
	}
	return &serialConn{port: port}, nil
}

// OpenWebSocket opens a websocket bridge connection (ws:// or wss://).
func OpenWebSocket(wsURL string, skipSSLVerify bool) (Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("link: invalid URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("link: unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipSSLVerify}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("link: websocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("link: websocket connection failed: %v", err)
	}
	return &wsConn{conn: conn}, nil
}
