// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestClient_Chat(t *testing.T) {
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != ChatPath {
			t.Errorf("path = %s, want %s", r.URL.Path, ChatPath)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"answer":           "Use SQS between the producers and the workers.",
			"architecture_url": "/static/diagrams/arch.png",
			"has_architecture": true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	history := []model.HistoryEntry{{Role: "user", Content: "earlier question"}}

	result, err := client.Chat(context.Background(), history, "How should I decouple this?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if result.Answer != "Use SQS between the producers and the workers." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.Diagrams == nil {
		t.Fatal("Diagrams should be attached")
	}
	if mode := result.Diagrams.Mode(); mode != model.DiagramArchitecture {
		t.Errorf("Mode() = %v, want architecture", mode)
	}

	if gotReq.Query != "How should I decouple this?" {
		t.Errorf("sent query = %q", gotReq.Query)
	}
	if len(gotReq.History) != 1 || gotReq.History[0].Content != "earlier question" {
		t.Errorf("sent history = %+v", gotReq.History)
	}
}

func TestClient_ChatEmptyAnswerFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "   "}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Chat(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Answer != AnswerFallback {
		t.Errorf("Answer = %q, want fallback", result.Answer)
	}
	if result.Diagrams != nil {
		t.Error("Diagrams should be nil for a text-only response")
	}
}

func TestClient_ChatNilHistoryMarshalsAsEmptyArray(t *testing.T) {
	var raw map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"answer": "ok"}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).Chat(context.Background(), nil, "q"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if string(raw["history"]) != "[]" {
		t.Errorf("history marshaled as %s, want []", raw["history"])
	}
}

func TestClient_ChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "query must not be empty"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Chat(context.Background(), nil, "")
	if err == nil {
		t.Fatal("Chat() should fail on 400")
	}

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", backendErr.Status)
	}
	if backendErr.Message != "query must not be empty" {
		t.Errorf("Message = %q", backendErr.Message)
	}
}

func TestClient_ChatRetriesTransientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"answer": "recovered"}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Chat(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Answer != "recovered" {
		t.Errorf("Answer = %q", result.Answer)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClient_ChatDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "bad payload"}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).Chat(context.Background(), nil, "q"); err == nil {
		t.Fatal("Chat() should fail")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestClient_ChatNotConfigured(t *testing.T) {
	_, err := NewClient("").Chat(context.Background(), nil, "q")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestClient_ChatContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).Chat(ctx, nil, "q")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

// =============================================================================
// IMAGE FETCH TESTS
// =============================================================================

func TestClient_FetchImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/static/diagrams/arch.png" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	data, err := NewClient(server.URL).FetchImage(context.Background(), "/static/diagrams/arch.png")
	if err != nil {
		t.Fatalf("FetchImage() error = %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("payload mismatch: got %d bytes", len(data))
	}
}

func TestClient_FetchImageNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchImage(context.Background(), "/missing.png")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) || backendErr.Status != http.StatusNotFound {
		t.Errorf("error = %v, want BackendError 404", err)
	}
}

func TestClient_FetchImageEmptyRef(t *testing.T) {
	if _, err := NewClient("http://example.test").FetchImage(context.Background(), ""); err == nil {
		t.Error("FetchImage(\"\") should fail")
	}
}

// =============================================================================
// RAW RELAY TESTS
// =============================================================================

func TestClient_RelayChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ChatPath {
			t.Errorf("path = %s, want %s", r.URL.Path, ChatPath)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"query":"hi"}` {
			t.Errorf("relayed body = %s", body)
		}
		w.Write([]byte(`{"answer":"hello"}`))
	}))
	defer server.Close()

	respBody, status, err := NewClient(server.URL).RelayChat(context.Background(), []byte(`{"query":"hi"}`))
	if err != nil {
		t.Fatalf("RelayChat() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(respBody) != `{"answer":"hello"}` {
		t.Errorf("response = %s", respBody)
	}
}

func TestClient_RelayChatPassesStatusThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad query"}`))
	}))
	defer server.Close()

	respBody, status, err := NewClient(server.URL).RelayChat(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("RelayChat() error = %v", err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", status)
	}
	if string(respBody) != `{"detail":"bad query"}` {
		t.Errorf("response = %s", respBody)
	}
}

func TestClient_RelayChatNotConfigured(t *testing.T) {
	_, _, err := NewClient("").RelayChat(context.Background(), []byte(`{}`))
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

// =============================================================================
// REACHABILITY TESTS
// =============================================================================

func TestClient_CheckReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Any status counts as reachable
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := NewClient(server.URL).CheckReachable(context.Background()); err != nil {
		t.Errorf("CheckReachable() error = %v", err)
	}
}

func TestClient_CheckReachableDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := NewClient(server.URL).CheckReachable(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

// =============================================================================
// URL RESOLUTION TESTS
// =============================================================================

func TestClient_ResolveAssetURL(t *testing.T) {
	client := NewClient("http://backend.test:8000/")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"relative with slash", "/static/a.png", "http://backend.test:8000/static/a.png"},
		{"relative without slash", "static/a.png", "http://backend.test:8000/static/a.png"},
		{"absolute http passthrough", "http://cdn.test/a.png", "http://cdn.test/a.png"},
		{"absolute https passthrough", "https://cdn.test/a.png", "https://cdn.test/a.png"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := client.ResolveAssetURL(tc.ref); got != tc.want {
				t.Errorf("ResolveAssetURL(%q) = %q, want %q", tc.ref, got, tc.want)
			}
		})
	}
}
