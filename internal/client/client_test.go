package client

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MEKXH/nudge/internal/server"
	"github.com/MEKXH/nudge/internal/store"
)

type noopNotifier struct{}

func (noopNotifier) Notify(question, agent, url string) {}

func newTestBroker(t *testing.T) (*Client, *store.Store) {
	t.Helper()
	st := store.New()
	handler := server.NewHandler(st, "http://127.0.0.1:0", server.Options{
		Notifier: noopNotifier{},
		Shutdown: func() {},
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newWithBaseURL(srv.URL), st
}

func TestAskReturnsID(t *testing.T) {
	c, st := newTestBroker(t)

	id, err := c.Ask(AskInput{Question: "Which region?", Agent: "deployer"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !store.ValidID(id) {
		t.Fatalf("Ask() returned malformed id %q", id)
	}
	if _, ok := st.Get(id); !ok {
		t.Fatalf("broker has no record of id %s", id)
	}
}

func TestAskValidationError(t *testing.T) {
	c, _ := newTestBroker(t)

	_, err := c.Ask(AskInput{Question: ""})
	if err == nil {
		t.Fatal("Ask() with empty question should fail")
	}
	if !strings.Contains(err.Error(), "question") {
		t.Errorf("error should name the missing field, got %v", err)
	}
}

func TestAskBackpressure(t *testing.T) {
	c, st := newTestBroker(t)

	for i := 0; i < store.MaxPending; i++ {
		if _, err := st.Create(store.CreateInput{Question: "q" + strconv.Itoa(i)}); err != nil {
			t.Fatalf("seed request %d: %v", i, err)
		}
	}

	_, err := c.Ask(AskInput{Question: "one more"})
	if !errors.Is(err, ErrBackpressure) {
		t.Fatalf("Ask() at capacity = %v, want ErrBackpressure", err)
	}
}

func TestStatusAndAnswerRoundTrip(t *testing.T) {
	c, _ := newTestBroker(t)

	id, err := c.Ask(AskInput{Question: "Deploy now?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	req, err := c.Status(id)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if req.Status != store.StatusPending {
		t.Fatalf("fresh request status = %q, want pending", req.Status)
	}

	if err := c.Answer(id, "yes, go ahead"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	req, err = c.Status(id)
	if err != nil {
		t.Fatalf("Status() after answer error = %v", err)
	}
	if req.Status != store.StatusAnswered || req.Answer != "yes, go ahead" {
		t.Fatalf("answered record = %+v", req)
	}

	// Second answer hits the already-answered path.
	if err := c.Answer(id, "changed my mind"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Answer() = %v, want ErrNotFound", err)
	}
}

func TestStatusUnknownID(t *testing.T) {
	c, _ := newTestBroker(t)

	if _, err := c.Status("aabbccddeeff"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Status() unknown id = %v, want ErrNotFound", err)
	}
}

func TestPendingLists(t *testing.T) {
	c, _ := newTestBroker(t)

	first, _ := c.Ask(AskInput{Question: "first"})
	second, _ := c.Ask(AskInput{Question: "second"})

	pending, err := c.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Pending() returned %d requests, want 2", len(pending))
	}
	if pending[0].ID != first || pending[1].ID != second {
		t.Errorf("Pending() order = %s, %s; want creation order", pending[0].ID, pending[1].ID)
	}
}

func TestHealth(t *testing.T) {
	c, _ := newTestBroker(t)
	if err := c.Health(); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	c := newWithBaseURL("http://127.0.0.1:1")
	if err := c.Health(); err == nil {
		t.Fatal("Health() against closed port should fail")
	}
}

func TestWaitForAnswerReturnsOnAnswer(t *testing.T) {
	c, st := newTestBroker(t)

	id, err := c.Ask(AskInput{Question: "Which database?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		st.Answer(id, "postgres")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := c.WaitForAnswer(ctx, id, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForAnswer() error = %v", err)
	}
	if req.Answer != "postgres" {
		t.Fatalf("answer = %q, want postgres", req.Answer)
	}
}

func TestWaitForAnswerTimesOut(t *testing.T) {
	c, _ := newTestBroker(t)

	id, err := c.Ask(AskInput{Question: "anyone there?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.WaitForAnswer(ctx, id, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitForAnswer() = %v, want ErrTimeout", err)
	}

	// Timing out leaves the request pending on the broker.
	req, err := c.Status(id)
	if err != nil {
		t.Fatalf("Status() after timeout error = %v", err)
	}
	if req.Status != store.StatusPending {
		t.Fatalf("status after timeout = %q, want pending", req.Status)
	}
}

func TestShutdownSignalsBroker(t *testing.T) {
	st := store.New()
	fired := make(chan struct{}, 1)
	handler := server.NewHandler(st, "http://127.0.0.1:0", server.Options{
		Notifier: noopNotifier{},
		Shutdown: func() { fired <- struct{}{} },
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newWithBaseURL(srv.URL)
	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback never fired")
	}
}

func TestIsRunning(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	if !IsRunning(port) {
		t.Fatalf("IsRunning(%d) = false with live listener", port)
	}

	ln.Close()
	if IsRunning(port) {
		t.Fatalf("IsRunning(%d) = true after listener closed", port)
	}
}
