package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "DownloadAllOfIt" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	data, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestClient_Get_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(5 * time.Second)
	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Error("expected error when context times out")
	}
}
