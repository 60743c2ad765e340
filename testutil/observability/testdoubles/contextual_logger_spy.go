package testdoubles

import (
	"context"
	"sync"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Log levels recorded by ContextualLoggerSpy.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SpyLogRecord represents one captured log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any

	// Contextual is true when the call came through a ...Context method.
	Contextual bool
}

// Attr returns the value logged for key, or nil.
func (r SpyLogRecord) Attr(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1]
		}
	}

	return nil
}

// ContextualLoggerSpy captures log calls for testing.
// It implements both rental.Logger and rental.ContextualLogger.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []SpyLogRecord
}

var (
	_ rental.Logger           = (*ContextualLoggerSpy)(nil)
	_ rental.ContextualLogger = (*ContextualLoggerSpy)(nil)
)

// NewContextualLoggerSpy creates an empty ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

// Debug implements rental.Logger.
func (s *ContextualLoggerSpy) Debug(msg string, args ...any) { s.add(LevelDebug, msg, args, false) }

// Info implements rental.Logger.
func (s *ContextualLoggerSpy) Info(msg string, args ...any) { s.add(LevelInfo, msg, args, false) }

// Warn implements rental.Logger.
func (s *ContextualLoggerSpy) Warn(msg string, args ...any) { s.add(LevelWarn, msg, args, false) }

// Error implements rental.Logger.
func (s *ContextualLoggerSpy) Error(msg string, args ...any) { s.add(LevelError, msg, args, false) }

// DebugContext implements rental.ContextualLogger.
func (s *ContextualLoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.add(LevelDebug, msg, args, true)
}

// InfoContext implements rental.ContextualLogger.
func (s *ContextualLoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.add(LevelInfo, msg, args, true)
}

// WarnContext implements rental.ContextualLogger.
func (s *ContextualLoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.add(LevelWarn, msg, args, true)
}

// ErrorContext implements rental.ContextualLogger.
func (s *ContextualLoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.add(LevelError, msg, args, true)
}

func (s *ContextualLoggerSpy) add(level, msg string, args []any, contextual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{
		Level:      level,
		Message:    msg,
		Args:       append([]any(nil), args...),
		Contextual: contextual,
	})
}

// Records returns a copy of all captured log calls in call order.
func (s *ContextualLoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// RecordsAt returns the captured log calls of one level.
func (s *ContextualLoggerSpy) RecordsAt(level string) []SpyLogRecord {
	var found []SpyLogRecord

	for _, record := range s.Records() {
		if record.Level == level {
			found = append(found, record)
		}
	}

	return found
}

// HasLog reports whether a call with the level and message was captured.
func (s *ContextualLoggerSpy) HasLog(level, message string) bool {
	_, ok := s.Find(level, message)
	return ok
}

// Find returns the first captured call with the level and message.
func (s *ContextualLoggerSpy) Find(level, message string) (SpyLogRecord, bool) {
	for _, record := range s.RecordsAt(level) {
		if record.Message == message {
			return record, true
		}
	}

	return SpyLogRecord{}, false
}

// Reset drops all captured log calls.
func (s *ContextualLoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}
