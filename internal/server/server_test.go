package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/MEKXH/nudge/internal/config"
	"github.com/MEKXH/nudge/internal/store"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestNewFillsDefaults(t *testing.T) {
	s := New(config.ServerConfig{}, store.New(), Options{})
	if s.Addr() != "127.0.0.1:9131" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9131", s.Addr())
	}
	if s.URL() != "http://127.0.0.1:9131" {
		t.Errorf("URL() = %q", s.URL())
	}
}

func TestStartServesAndShutsDown(t *testing.T) {
	port := freePort(t)
	s := New(config.ServerConfig{Port: port}, store.New(), Options{})

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	// Wait for the listener to come up.
	deadline := time.Now().Add(2 * time.Second)
	var resp *http.Response
	var err error
	for time.Now().Before(deadline) {
		resp, err = http.Get(s.URL() + "/api/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("broker never became healthy: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() returned %v after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after Shutdown")
	}
}

func TestShutdownEndpointStopsServer(t *testing.T) {
	port := freePort(t)
	s := New(config.ServerConfig{Port: port}, store.New(), Options{})

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(s.URL() + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	resp, err := http.Post(s.URL()+"/api/shutdown", "application/json", nil)
	if err != nil {
		t.Fatalf("shutdown request failed: %v", err)
	}
	resp.Body.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() returned %v after shutdown request", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("broker did not stop after /api/shutdown")
	}
}
