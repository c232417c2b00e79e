package crewauth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestEngine(t *testing.T, cfg Config, sink AuditSink) (*Engine, *mockDirectory, func()) {
	t.Helper()

	dir := newMockDirectory()
	seedUser(t, dir, "Orbit!Crew7x")

	mr, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(dir).
		WithPermissionDirectory(seededPermDirectory("u1")).
		WithAuditSink(sink).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, dir, func() {
		engine.Close()
		mr.Close()
	}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine, _, done := buildAuditTestEngine(t, cfg, sink)
	defer done()

	engine.Authenticate(WithClientIP(context.Background(), "203.0.113.1"), "dana@example.com", "wrong-password")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginEventsReachSink(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	sink := NewChannelSink(16)
	engine, _, done := buildAuditTestEngine(t, cfg, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.1")
	engine.Authenticate(ctx, "dana@example.com", "Orbit!Crew7x")
	done() // Close drains the dispatcher

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType != "auth.login_success" {
				continue
			}
			if !event.Success || event.UserID != "u1" || event.Email != "dana@example.com" {
				t.Fatalf("unexpected login_success event: %+v", event)
			}
			if event.IP != "203.0.113.1" {
				t.Fatalf("event must carry the client IP, got %q", event.IP)
			}
			return
		case <-deadline:
			t.Fatal("expected an auth.login_success audit event")
		}
	}
}

func TestAuditDropWhenBufferFull(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 1
	cfg.Audit.DropIfFull = true

	sink := newGateSink()
	engine, _, done := buildAuditTestEngine(t, cfg, sink)

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		engine.Authenticate(ctx, "ghost@example.com", "whatever")
	}

	if engine.AuditDropped() == 0 {
		t.Fatal("expected dropped events with a full buffer and a stalled sink")
	}

	close(sink.gate)
	done()
}
