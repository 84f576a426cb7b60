package authkit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// blockingSink stalls the drain goroutine so the channel can fill up.
type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	seen    []AuditEvent
}

func (s *blockingSink) Emit(_ context.Context, event AuditEvent) {
	<-s.release
	s.mu.Lock()
	s.seen = append(s.seen, event)
	s.mu.Unlock()
}

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NoOpSink{}, nil)
	if d != nil {
		t.Fatal("expected nil dispatcher when auditing is disabled")
	}
	// Nil receivers are safe.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("Dropped on nil dispatcher")
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink, nil)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), AuditEvent{Description: "LOGIN_SUCCESS", UserID: string(rune('a' + i))})
	}
	d.Close()

	for i := 0; i < 3; i++ {
		select {
		case ev := <-sink.Events():
			if ev.UserID != string(rune('a'+i)) {
				t.Fatalf("event %d out of order: %q", i, ev.UserID)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d never delivered", i)
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink, nil)

	// First event is picked up by the drain goroutine and blocks in the
	// sink; the second fills the buffer; everything after is dropped.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{Description: "LOGIN_FAILED"})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("no events dropped")
	}

	close(sink.release)
	d.Close()
}

// gateSink reports when the drain goroutine enters Emit, then stalls there.
type gateSink struct {
	entered chan struct{}
	release chan struct{}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	s.entered <- struct{}{}
	<-s.release
}

func TestDispatcherDropHookThrottled(t *testing.T) {
	sink := &gateSink{entered: make(chan struct{}, 16), release: make(chan struct{})}

	var mu sync.Mutex
	var notified []uint64
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink, func(total uint64) {
		mu.Lock()
		notified = append(notified, total)
		mu.Unlock()
	})

	// First event is held inside the sink, the second fills the buffer, and
	// the next ten are dropped synchronously by Emit.
	d.Emit(context.Background(), AuditEvent{Description: "LOGIN_FAILED"})
	select {
	case <-sink.entered:
	case <-time.After(time.Second):
		t.Fatal("sink never entered")
	}
	for i := 0; i < 11; i++ {
		d.Emit(context.Background(), AuditEvent{Description: "LOGIN_FAILED"})
	}

	if got := d.Dropped(); got != 10 {
		t.Fatalf("Dropped = %d, want 10", got)
	}

	mu.Lock()
	got := append([]uint64(nil), notified...)
	mu.Unlock()
	want := []uint64{1, 2, 4, 8}
	if len(got) != len(want) {
		t.Fatalf("hook totals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hook totals = %v, want %v", got, want)
		}
	}

	close(sink.release)
	d.Close()
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Description:  "GLOBAL_LOGOUT_SUCCESS",
		ActivityType: "LOGOUT",
		UserID:       "user-1",
		Status:       AuditSuccess,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Description != "GLOBAL_LOGOUT_SUCCESS" || decoded.UserID != "user-1" {
		t.Fatalf("decoded = %+v", decoded)
	}
}
