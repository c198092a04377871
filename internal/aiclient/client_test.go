package aiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitvault/fitvault/internal/models"
)

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message != "how much protein today?" {
			t.Errorf("unexpected message %q", req.Message)
		}
		if len(req.History) != 1 || req.History[0].Role != "user" {
			t.Errorf("unexpected history %+v", req.History)
		}
		json.NewEncoder(w).Encode(chatResponse{Reply: "You logged 90g so far."})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	history := []models.ChatMessage{{Role: "user", Content: "hi"}}
	reply, err := c.Send(context.Background(), history, "how much protein today?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "You logged 90g so far." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.Send(context.Background(), nil, "hello")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry status code, got %v", err)
	}
}

func TestSendContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c, err := New(srv.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Send(ctx, nil, "hello"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
