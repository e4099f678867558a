// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webview mirrors the OLED framebuffer over HTTP so the panel can
// be watched from a browser, e.g. from the machine already serving the
// race server's web UI.
//
// The protocol is "MJPEG" style (multipart/x-mixed-replace) with PNG
// frames: clients get an initial snapshot of the buffer and a new part on
// every change.
package webview

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/display"
)

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// Mirror is a display.Drawer whose contents are streamed to HTTP clients.
type Mirror struct {
	mu       sync.Mutex
	buffer   *image.RGBA
	clients  map[*client]struct{}
	snapshot []byte
}

// New creates a mirror of the given panel geometry.
func New(w, h int) *Mirror {
	buffer := image.NewRGBA(image.Rect(0, 0, w, h))
	// Start opaque black, like a powered-up but blank panel.
	draw.Draw(buffer, buffer.Bounds(), image.Black, image.Point{}, draw.Src)
	return &Mirror{
		buffer:  buffer,
		clients: map[*client]struct{}{},
	}
}

// String returns the name of the device.
func (m *Mirror) String() string {
	return "OLEDMirror"
}

// Halt implements conn.Resource and terminates all running client requests
// asynchronously.
func (m *Mirror) Halt() error {
	m.mu.Lock()
	for c := range m.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
	m.mu.Unlock()
	return nil
}

// ColorModel implements display.Drawer.
func (m *Mirror) ColorModel() color.Model {
	return m.buffer.ColorModel()
}

// Bounds implements display.Drawer.
func (m *Mirror) Bounds() image.Rectangle {
	return m.buffer.Bounds()
}

// Draw implements display.Drawer.
func (m *Mirror) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	m.mu.Lock()
	draw.Draw(m.buffer, dstRect, src, srcPts, draw.Src)
	m.snapshot = nil
	for c := range m.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	m.mu.Unlock()
	return nil
}

// grabSnapshot returns the current buffer encoded as PNG, reusing the
// cached encoding when the buffer has not changed.
func (m *Mirror) grabSnapshot() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, m.buffer); err != nil {
			return nil, err
		}
		m.snapshot = buf.Bytes()
	}
	return m.snapshot, nil
}

// ServeHTTP handles HTTP GET requests and responds with a stream of PNG
// images representing the display buffer.
func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	pw := makePartWriter(w)
	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.clients, c)
		m.mu.Unlock()
	}()

	headers := make(textproto.MIMEHeader)
	headers.Set("Content-Type", "image/png")
	headers.Set("Content-Transfer-Encoding", "binary")

	for {
		payload, err := m.grabSnapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := pw.writeFrame(headers, payload); err != nil {
			// No good way to deliver an error inside an image stream;
			// drop the client.
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

type partWriter struct {
	u        io.Writer
	boundary string
	started  bool
}

func makePartWriter(u io.Writer) partWriter {
	var buf [16]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return partWriter{
		u:        u,
		boundary: fmt.Sprintf("%x", buf[:]),
	}
}

// writeFrame sends a single part of the multipart entity, fully written by
// the time it returns. mime/multipart.Writer is not usable here: a
// neverending stream needs each part flushed with its trailing boundary.
func (w *partWriter) writeFrame(header textproto.MIMEHeader, body []byte) error {
	header.Set("Content-Length", strconv.Itoa(len(body)))

	var buf bytes.Buffer
	if !w.started {
		fmt.Fprintf(&buf, "--%s\r\n", w.boundary)
		w.started = true
	}
	for name := range header {
		for _, value := range header[name] {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
		}
	}
	buf.WriteString("\r\n")

	_, err := buf.WriteTo(w.u)
	if err == nil {
		_, err = w.u.Write(body)
		if err == nil {
			_, err = fmt.Fprintf(w.u, "\r\n--%s\r\n", w.boundary)
		}
	}
	return err
}

var _ display.Drawer = (*Mirror)(nil)
var _ http.Handler = (*Mirror)(nil)
