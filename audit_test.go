package sessionkit

import (
	"context"
	"sync"
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

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestEngine(t *testing.T, cfg Config, sink AuditSink, api AuthAPI) (*Engine, func()) {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithTokenStore(newMemTokenStore()).
		WithScratchStore(newMemScratchStore()).
		WithAuthAPI(api).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, func() {
		engine.Close()
	}
}

func rejectingLoginAPI() *mockAuthAPI {
	return &mockAuthAPI{
		loginFn: func(context.Context, string, string) (*LoginResponse, error) {
			return nil, NewAPIError(ErrorKindUnauthorized, 401, "bad credentials", nil)
		},
	}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := sessionTestConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine, done := buildAuditTestEngine(t, cfg, sink, rejectingLoginAPI())
	defer done()

	ctx := WithDeviceID(context.Background(), "device-7781")
	_, _ = engine.Login(ctx, "alice@school.example", "wrong-password")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditEnabledSinkReceivesEventWithFields(t *testing.T) {
	cfg := sessionTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = true

	sink := newCaptureSink(8)
	engine, done := buildAuditTestEngine(t, cfg, sink, rejectingLoginAPI())
	defer done()

	ctx := WithAppVersion(WithDeviceID(context.Background(), "device-7781"), "3.4.1")
	_, _ = engine.Login(ctx, "alice@school.example", "super-secret-password")

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventLoginFailure {
			t.Fatalf("expected event type %q, got %q", auditEventLoginFailure, ev.EventType)
		}
		if ev.DeviceID != "device-7781" {
			t.Fatalf("expected device device-7781, got %q", ev.DeviceID)
		}
		if ev.AppVersion != "3.4.1" {
			t.Fatalf("expected app version 3.4.1, got %q", ev.AppVersion)
		}
		if ev.Success {
			t.Fatal("expected failure event")
		}
		if ev.Error != "invalid_credentials" {
			t.Fatalf("expected error code invalid_credentials, got %q", ev.Error)
		}
		if ev.Error == "super-secret-password" {
			t.Fatal("sensitive password leaked in error")
		}
		if ev.Metadata != nil {
			for _, v := range ev.Metadata {
				if v == "super-secret-password" {
					t.Fatal("sensitive password leaked in metadata")
				}
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	event := AuditEvent{
		Timestamp:       time.Now().UTC(),
		EventType:       auditEventLoginSuccess,
		UserID:          "u1",
		Role:            "teacher",
		ClientSessionID: "cs-41",
		Success:         true,
	}
	sink.Emit(context.Background(), event)

	if !buf.Contains("login_success") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"user_id\":\"u1\"") {
		t.Fatal("expected JSON log line to contain user id")
	}
	if !buf.Contains("\"client_session_id\":\"cs-41\"") {
		t.Fatal("expected JSON log line to contain client session id")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	cfg := sessionTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false

	sensitivePassword := "correct-horse-battery"
	loginAccess := makeAccessToken(t, 30*time.Second)
	loginRefresh := "refresh-secret-r1"
	renewedAccess := makeAccessToken(t, time.Hour)
	renewedRefresh := "refresh-secret-r2"

	api := &mockAuthAPI{
		loginFn: func(context.Context, string, string) (*LoginResponse, error) {
			return &LoginResponse{
				Pair: TokenPair{Access: loginAccess, Refresh: loginRefresh},
				User: teacherUser(),
			}, nil
		},
		refreshFn: func(context.Context, string) (*TokenPair, error) {
			return &TokenPair{Access: renewedAccess, Refresh: renewedRefresh}, nil
		},
	}

	sink := newCaptureSink(32)
	engine, done := buildAuditTestEngine(t, cfg, sink, api)
	defer done()

	if _, err := engine.Login(context.Background(), "alice@school.example", sensitivePassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got := engine.EnsureFresh(context.Background()); got != renewedAccess {
		t.Fatalf("EnsureFresh = %q, want the renewed access token", got)
	}

	secretNeedles := []string{
		sensitivePassword,
		loginAccess,
		loginRefresh,
		renewedAccess,
		renewedRefresh,
	}

	// Collect a bounded number of audit events generated by the operations above.
	events := make([]AuditEvent, 0, 8)
	timeout := time.After(2 * time.Second)
collectLoop:
	for len(events) < 8 {
		select {
		case ev := <-sink.events:
			events = append(events, ev)
		case <-timeout:
			break collectLoop
		}
	}

	if len(events) == 0 {
		t.Fatal("expected at least one audit event")
	}

	for _, ev := range events {
		for _, needle := range secretNeedles {
			if needle == "" {
				continue
			}
			if stringContains(ev.Error, needle) {
				t.Fatalf("sensitive value leaked in audit error field: %q", needle)
			}
			for k, v := range ev.Metadata {
				if stringContains(k, needle) || stringContains(v, needle) {
					t.Fatalf("sensitive value leaked in audit metadata: %q", needle)
				}
			}
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stringContains(string(b.buf), v)
}

func stringContains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > len(s) {
		return false
	}
	for i := 0; i <= len(s)-len(sub); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
