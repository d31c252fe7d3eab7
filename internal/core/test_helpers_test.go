package core

import (
	"context"
	"time"
)

// Shared fixtures for service level tests. Observability sinks capture calls
// in memory so assertions can inspect what the service emitted.

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op {
			if success && record.err == nil {
				return true
			}
			if !success && record.err != nil {
				return true
			}
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type logCall struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) Debug(msg string, args ...any) {
	l.calls = append(l.calls, logCall{level: "debug", msg: msg, args: args})
}

func (l *captureLogger) Info(msg string, args ...any) {
	l.calls = append(l.calls, logCall{level: "info", msg: msg, args: args})
}

func (l *captureLogger) Warn(msg string, args ...any) {
	l.calls = append(l.calls, logCall{level: "warn", msg: msg, args: args})
}

func (l *captureLogger) Error(msg string, args ...any) {
	l.calls = append(l.calls, logCall{level: "error", msg: msg, args: args})
}

func (l *captureLogger) has(level, msg string) bool {
	for _, call := range l.calls {
		if call.level == level && call.msg == msg {
			return true
		}
	}
	return false
}

// fixed reference instant used by clock-sensitive tests: 2024-03-15.
var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func frozenClock(at time.Time) ServiceOption {
	return WithClock(ClockFunc(func() time.Time { return at }))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
