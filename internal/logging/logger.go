// Package logging provides config-driven categorized diagnostics for jinaai.
// Everything is written to stderr so stdout stays reserved for the result
// envelope. Logging is controlled by debug_mode - when false, nothing is written.
package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup, config resolution
	CategoryNormalize  Category = "normalize"  // Parameter canonicalization
	CategoryDispatch   Category = "dispatch"   // Command resolution and tool execution
	CategoryTransport  Category = "transport"  // Upstream HTTP calls, cache, coalescing
	CategoryContent    Category = "content"    // Response extraction and sanitation
	CategoryBatch      Category = "batch"      // Batch detection and fan-out
	CategoryImageStore Category = "imagestore" // Screenshot persistence
)

// Settings mirrors the relevant parts of config.LoggingConfig
// so callers outside cmd do not need the config package.
type Settings struct {
	DebugMode  bool
	Categories map[string]bool // nil = all enabled
}

// Logger wraps a named zap logger for one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	base     = zap.NewNop()
	settings Settings
	loggers  = make(map[Category]*Logger)
	mu       sync.RWMutex
)

// InitializeWith installs an already built zap logger, used by the CLI and
// by tests that capture output with zaptest/observer.
func InitializeWith(l *zap.Logger, s Settings) {
	install(l, s)
}

func install(l *zap.Logger, s Settings) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	settings = s
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	named := zap.NewNop()
	if categoryEnabled(category) {
		named = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: named.Sugar()}
	loggers[category] = l
	return l
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }

func NormalizeDebug(format string, args ...interface{}) {
	Get(CategoryNormalize).Debug(format, args...)
}

func Dispatch(format string, args ...interface{})      { Get(CategoryDispatch).Info(format, args...) }
func DispatchDebug(format string, args ...interface{}) { Get(CategoryDispatch).Debug(format, args...) }
func DispatchWarn(format string, args ...interface{})  { Get(CategoryDispatch).Warn(format, args...) }

func Transport(format string, args ...interface{})      { Get(CategoryTransport).Info(format, args...) }
func TransportDebug(format string, args ...interface{}) { Get(CategoryTransport).Debug(format, args...) }
func TransportError(format string, args ...interface{}) { Get(CategoryTransport).Error(format, args...) }

func ContentDebug(format string, args ...interface{}) { Get(CategoryContent).Debug(format, args...) }
func ContentWarn(format string, args ...interface{})  { Get(CategoryContent).Warn(format, args...) }

func Batch(format string, args ...interface{})      { Get(CategoryBatch).Info(format, args...) }
func BatchDebug(format string, args ...interface{}) { Get(CategoryBatch).Debug(format, args...) }
func BatchError(format string, args ...interface{}) { Get(CategoryBatch).Error(format, args...) }

func ImageStore(format string, args ...interface{})     { Get(CategoryImageStore).Info(format, args...) }
func ImageStoreWarn(format string, args ...interface{}) { Get(CategoryImageStore).Warn(format, args...) }

// =============================================================================
// REQUEST CORRELATION
// =============================================================================

// RequestLogger tags every entry with a request id and optional fields.
type RequestLogger struct {
	logger    *Logger
	requestID string
	fields    []interface{}
}

// WithRequestID returns a logger for one engine run.
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{logger: Get(category), requestID: requestID}
}

// WithField returns a copy carrying an extra key/value.
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	fields := make([]interface{}, 0, len(r.fields)+2)
	fields = append(fields, r.fields...)
	fields = append(fields, key, value)
	return &RequestLogger{logger: r.logger, requestID: r.requestID, fields: fields}
}

func (r *RequestLogger) with() *zap.SugaredLogger {
	return r.logger.sugar.With(append([]interface{}{"req", r.requestID}, r.fields...)...)
}

func (r *RequestLogger) Debug(format string, args ...interface{}) {
	r.with().Debugf(format, args...)
}

func (r *RequestLogger) Info(format string, args ...interface{}) {
	r.with().Infof(format, args...)
}

func (r *RequestLogger) Warn(format string, args ...interface{}) {
	r.with().Warnf(format, args...)
}

func (r *RequestLogger) Error(format string, args ...interface{}) {
	r.with().Errorf(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
