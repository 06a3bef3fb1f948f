// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

func TestImageViewer_OpenClose(t *testing.T) {
	iv := NewImageViewer(styles.NewTheme(), nil)

	if iv.IsOpen() {
		t.Error("viewer open before Open")
	}

	iv.Open("AWS Architecture Diagram", "http://backend:8000/img/arch.png")
	if !iv.IsOpen() {
		t.Error("viewer not open after Open")
	}
	if iv.Title() != "AWS Architecture Diagram" {
		t.Errorf("title = %q", iv.Title())
	}

	iv.Close()
	if iv.IsOpen() {
		t.Error("viewer open after Close")
	}
}

func TestImageViewer_ViewShowsActions(t *testing.T) {
	iv := NewImageViewer(styles.NewTheme(), nil)
	iv.SetSize(100, 30)
	iv.Open("Process Flowchart", "http://backend:8000/img/flow.png")

	view := iv.View()
	for _, want := range []string{"Process Flowchart", "download", "open in browser", "close"} {
		if !strings.Contains(view, want) {
			t.Errorf("modal missing %q", want)
		}
	}
}

func TestImageViewer_ViewEmptyWhenClosed(t *testing.T) {
	iv := NewImageViewer(styles.NewTheme(), nil)
	if got := iv.View(); got != "" {
		t.Errorf("closed viewer rendered %q, want empty", got)
	}
}

func TestImageViewer_StatusAfterOpenCleared(t *testing.T) {
	iv := NewImageViewer(styles.NewTheme(), nil)
	iv.SetSize(100, 30)
	iv.Open("Visualization", "http://backend:8000/img/vis.png")
	iv.SetStatus("saved to ~/Downloads/visualization.png", false)

	if !strings.Contains(iv.View(), "saved to") {
		t.Error("status line not rendered")
	}

	iv.Open("Visualization", "http://backend:8000/img/vis.png")
	if strings.Contains(iv.View(), "saved to") {
		t.Error("status should clear when the modal reopens")
	}
}

func TestImageViewer_DownloadViaProxy(t *testing.T) {
	payload := []byte("png-bytes-from-relay")

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("relay path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "http://backend:8000/img/arch.png" {
			t.Errorf("relay url param = %q", got)
		}
		if got := r.URL.Query().Get("filename"); got != "aws_architecture_diagram.png" {
			t.Errorf("relay filename param = %q", got)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer relay.Close()

	dir := t.TempDir()

	iv := NewImageViewer(styles.NewTheme(), nil)
	iv.SetProxyURL(relay.URL)
	iv.SetDownloadDir(dir)
	iv.Open("AWS Architecture Diagram", "http://backend:8000/img/arch.png")

	msg, ok := iv.Download()().(DownloadResultMsg)
	if !ok {
		t.Fatal("expected DownloadResultMsg")
	}
	if msg.Err != nil {
		t.Fatalf("download failed: %v", msg.Err)
	}
	if msg.Method != DownloadViaProxy {
		t.Errorf("method = %q, want proxy", msg.Method)
	}

	wantPath := filepath.Join(dir, "aws_architecture_diagram.png")
	if msg.Path != wantPath {
		t.Errorf("path = %q, want %q", msg.Path, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("downloaded bytes differ from relay payload")
	}
}

func TestImageViewer_DownloadFallsBackToDirect(t *testing.T) {
	payload := []byte("png-bytes-direct")

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/flow.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer remote.Close()

	// A relay that always fails forces the direct strategy
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer relay.Close()

	dir := t.TempDir()
	client := backend.NewClient(remote.URL).WithMaxRetries(1)

	iv := NewImageViewer(styles.NewTheme(), client)
	iv.SetProxyURL(relay.URL)
	iv.SetDownloadDir(dir)
	iv.Open("Process Flowchart", remote.URL+"/img/flow.png")

	msg, ok := iv.Download()().(DownloadResultMsg)
	if !ok {
		t.Fatal("expected DownloadResultMsg")
	}
	if msg.Err != nil {
		t.Fatalf("download failed: %v", msg.Err)
	}
	if msg.Method != DownloadDirect {
		t.Errorf("method = %q, want direct", msg.Method)
	}

	data, err := os.ReadFile(filepath.Join(dir, "process_flowchart.png"))
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("downloaded bytes differ from backend payload")
	}
}

func TestDownloadViaProxy_RejectsNonOK(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer relay.Close()

	dest := filepath.Join(t.TempDir(), "x.png")
	err := downloadViaProxy(t.Context(), relay.URL, "http://backend:8000/img/x.png", "x.png", dest)
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want mention of status", err)
	}
}

func TestDownloadViaProxy_RejectsEmptyBody(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer relay.Close()

	dest := filepath.Join(t.TempDir(), "x.png")
	err := downloadViaProxy(t.Context(), relay.URL, "http://backend:8000/img/x.png", "x.png", dest)
	if err == nil {
		t.Fatal("expected error for empty body")
	}
}
