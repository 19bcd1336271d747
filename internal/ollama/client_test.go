package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gemma2:2b","message":{"role":"assistant","content":"## ROLE\nprompt"},"done":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Timeout: time.Second})
	resp, err := c.Chat(context.Background(), ChatRequest{Model: "gemma2:2b", Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message.Content != "## ROLE\nprompt" {
		t.Fatalf("unexpected content %q", resp.Message.Content)
	}
}

func TestChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Timeout: time.Second})
	_, err := c.Chat(context.Background(), ChatRequest{Model: "missing"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "model not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"gemma2:2b","size":1629518778},{"name":"phi4:latest","size":9100000000}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Timeout: time.Second})
	resp, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Models) != 2 || resp.Models[0].Name != "gemma2:2b" {
		t.Fatalf("unexpected models %+v", resp.Models)
	}
}

func TestPullStreamsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"pulling manifest"}` + "\n"))
		w.Write([]byte(`{"status":"downloading","total":100,"completed":50}` + "\n"))
		w.Write([]byte(`{"status":"success"}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Timeout: time.Second})
	var chunks []PullProgress
	err := c.Pull(context.Background(), "gemma2:2b", func(p PullProgress) error {
		chunks = append(chunks, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].Percent() != 50 {
		t.Fatalf("expected 50%%, got %d", chunks[1].Percent())
	}
}

func TestPullSurfacesStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"pulling manifest"}` + "\n"))
		w.Write([]byte(`{"error":"pull model manifest: file does not exist"}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Timeout: time.Second})
	err := c.Pull(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := IsAPIError(err); !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestPercentClamped(t *testing.T) {
	if got := (PullProgress{Total: 0, Completed: 10}).Percent(); got != 0 {
		t.Errorf("zero total should be 0, got %d", got)
	}
	if got := (PullProgress{Total: 100, Completed: 250}).Percent(); got != 100 {
		t.Errorf("overflow should clamp to 100, got %d", got)
	}
}
