package core

import (
	"context"
	"sync"
	"testing"
)

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFieldMap(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFieldMap(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFieldMap(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

func cloneFieldMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

func findLog(items []capturedLog, level string, message string) (capturedLog, bool) {
	for _, item := range items {
		if item.level == level && item.msg == message {
			return item, true
		}
	}
	return capturedLog{}, false
}

func TestServiceObservability_SetConsumerSuccess(t *testing.T) {
	logger := newCaptureLogger()
	svc, err := NewService(testConfig(),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
		WithCredentialStore(newMemoryCredentialStore()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.SetConsumer(context.Background(), "consumer-key", "very-secret"); err != nil {
		t.Fatalf("set consumer: %v", err)
	}

	entry, ok := findLog(logger.snapshot(), "info", "set_consumer succeeded")
	if !ok {
		t.Fatalf("expected set_consumer succeeded log")
	}
	if entry.fields["operation"] != "set_consumer" || entry.fields["outcome"] != "inserted" {
		t.Fatalf("unexpected fields %#v", entry.fields)
	}
	if entry.fields["key_hint"] != "cons..." {
		t.Fatalf("expected key hint, got %#v", entry.fields["key_hint"])
	}
	for _, value := range entry.fields {
		if value == "very-secret" || value == "consumer-key" {
			t.Fatalf("expected credentials to stay out of logs, got %#v", entry.fields)
		}
	}
}

func TestServiceObservability_StatusFailureCarriesTextCode(t *testing.T) {
	logger := newCaptureLogger()
	svc, err := NewService(testConfig(),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
		WithCredentialStore(newMemoryCredentialStore()),
		WithTransport(newRecordingTransport(nil)),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.CheckStatus(context.Background()); err == nil {
		t.Fatalf("expected missing credentials error")
	}

	entry, ok := findLog(logger.snapshot(), "error", "status failed")
	if !ok {
		t.Fatalf("expected status failed log")
	}
	if entry.fields["text_code"] != ErrorCredentialsMissing {
		t.Fatalf("expected text code field, got %#v", entry.fields["text_code"])
	}
	if entry.fields["status"] != "failure" {
		t.Fatalf("expected failure status, got %#v", entry.fields["status"])
	}
}
