// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webview

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestStreamDeliversFrames(t *testing.T) {
	m := New(128, 64)
	srv := httptest.NewServer(m)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatal(err)
	}
	if mediaType != "multipart/x-mixed-replace" {
		t.Fatalf("Content-Type = %q", mediaType)
	}
	mr := multipart.NewReader(resp.Body, params["boundary"])

	// Initial snapshot: a blank black panel.
	part, err := mr.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(part)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != (image.Point{X: 128, Y: 64}) {
		t.Fatalf("frame size = %v, want 128x64", got)
	}

	// A draw pushes a fresh frame to the open stream.
	src := image1bit.NewVerticalLSB(m.Bounds())
	src.SetBit(10, 10, image1bit.On)
	if err := m.Draw(m.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	part, err = mr.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	img, err = png.Decode(part)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("lit pixel is black in the streamed frame")
	}
}

func TestHaltTerminatesClients(t *testing.T) {
	m := New(32, 16)
	srv := httptest.NewServer(m)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	// Give the handler a moment to register the client, then halt.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		n := len(m.clients)
		m.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := m.Halt(); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4096)
	for {
		if _, err := resp.Body.Read(buf); err != nil {
			break
		}
	}
}

func TestRejectsNonGet(t *testing.T) {
	m := New(32, 16)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestDrawInvalidatesSnapshot(t *testing.T) {
	m := New(32, 16)
	first, err := m.grabSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Draw(m.Bounds(), image.NewUniform(color.White), image.Point{}); err != nil {
		t.Fatal(err)
	}
	second, err := m.grabSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) == string(second) {
		t.Error("snapshot not refreshed after draw")
	}
}
