package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatal("expected generated name")
	}
	ctx := context.Background()

	rec.Observe(ctx, "create_property", true, 5*time.Millisecond)
	rec.Observe(ctx, "create_property", true, 3*time.Millisecond)
	rec.Observe(ctx, "create_property", false, 2*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if snap.DurationsMS["create_property"] != 10 {
		t.Fatalf("durations = %v, want 10", snap.DurationsMS["create_property"])
	}
	if snap.Results["create_property"]["success"] != 2 {
		t.Fatalf("success count = %d, want 2", snap.Results["create_property"]["success"])
	}
	if snap.Results["create_property"]["error"] != 1 {
		t.Fatalf("error count = %d, want 1", snap.Results["create_property"]["error"])
	}
	if len(snap.DurationsMS) != 1 {
		t.Fatalf("operations = %d, want 1", len(snap.DurationsMS))
	}
}

func TestExpvarMetricsRecorderUniqueGeneratedNames(t *testing.T) {
	a := NewExpvarMetricsRecorder("")
	b := NewExpvarMetricsRecorder("")
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct names, both %q", a.Name())
	}
}

func TestJSONTracerEmitsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "create_payment")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "update_property")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Operation != "create_payment" || entries[0].Status != "success" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
	if entries[1].EndedAt.Before(entries[1].StartedAt) {
		t.Fatalf("span ends before it starts: %+v", entries[1])
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("encoded lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"create_payment"`) {
		t.Fatalf("line = %q", lines[0])
	}
}

func TestJSONTracerNilWriter(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "create_expense")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatal("expected span retained without a writer")
	}
}

func TestMemoryAuditLogCopies(t *testing.T) {
	log := NewMemoryAuditLog()
	log.Record(context.Background(), AuditEntry{Operation: "create_property", Status: AuditStatusSuccess})

	entries := log.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	entries[0].Operation = "mutated"
	if log.Entries()[0].Operation != "create_property" {
		t.Fatal("Entries must return a copy")
	}
}

func TestNoopLoggerIsDefault(t *testing.T) {
	svc := NewInMemoryService()
	// The default logger must swallow calls without panicking.
	svc.opts.logger.Debug("msg", "k", "v")
	svc.opts.logger.Info("msg")
	svc.opts.logger.Warn("msg")
	svc.opts.logger.Error("msg", "err", errors.New("x"))
}
