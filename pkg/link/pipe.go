// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import "io"

type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeConn) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipeConn) Close() error {
	p.r.Close()
	return p.w.Close()
}

// Pipe returns two connected in-memory Conns. Bytes written to one side
// become readable on the other. Both ends are safe for one concurrent
// reader and one concurrent writer, which matches how the radio uses a
// Conn.
func Pipe() (Conn, Conn) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()
	return &pipeConn{r: ar, w: bw}, &pipeConn{r: br, w: aw}
}
