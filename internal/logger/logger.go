// Package logger is the process-wide levelled logger. Messages are
// printf-style and conventionally start with a "[Component]" tag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity. Trace sits below zap's debug level and is gated here.
type Level int32

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
)

var levelNames = map[string]Level{
	"trace": TraceLevel,
	"debug": DebugLevel,
	"info":  InfoLevel,
	"warn":  WarnLevel,
	"error": ErrorLevel,
	"fatal": FatalLevel,
	"panic": PanicLevel,
}

func (l Level) String() string {
	for name, lv := range levelNames {
		if lv == l {
			return name
		}
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// ParseLevel maps a level name to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	if lv, ok := levelNames[name]; ok {
		return lv, nil
	}
	return InfoLevel, fmt.Errorf("invalid log level %q (use trace, debug, info, warn, error, fatal, panic)", s)
}

var (
	current atomic.Int32
	atom    = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	mu    sync.RWMutex
	sugar = build(zapcore.Lock(os.Stderr))
)

func init() {
	current.Store(int32(InfoLevel))
}

func build(w zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeCaller = nil
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), w, atom)
	return zap.New(core).Sugar()
}

// SetLevel changes the minimum level for all subsequent messages.
func SetLevel(l Level) {
	current.Store(int32(l))
	atom.SetLevel(toZap(l))
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	return Level(current.Load())
}

// SetOutput redirects log output. Mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sugar = build(zapcore.AddSync(w))
}

// SetOutputFile appends log output to path in addition to stderr.
func SetOutputFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	sugar = build(zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stderr), zapcore.AddSync(f)))
	return nil
}

// Sync flushes buffered output.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func toZap(l Level) zapcore.Level {
	switch l {
	case TraceLevel, DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.PanicLevel
	}
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Trace(format string, args ...any) {
	if GetLevel() > TraceLevel {
		return
	}
	get().Debugf("TRACE "+format, args...)
}

func Debug(format string, args ...any) { get().Debugf(format, args...) }
func Info(format string, args ...any)  { get().Infof(format, args...) }
func Warn(format string, args ...any)  { get().Warnf(format, args...) }
func Error(format string, args ...any) { get().Errorf(format, args...) }
func Fatal(format string, args ...any) { get().Fatalf(format, args...) }

// Redact masks a secret for logging, keeping only a short suffix.
func Redact(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
