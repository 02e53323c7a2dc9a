package logger

import "sync/atomic"

var global atomic.Pointer[Logger]

// Init builds the process-wide logger from cfg and returns it.
func Init(cfg Config, service string) *Logger {
	cfg.ApplyDefaults()
	l := New(&cfg, service)
	global.Store(l)
	return l
}

func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the logger set by Init, or an info-level console
// logger on stderr.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := New(&Config{Level: "info", Format: FormatConsole, Timestamp: true}, "meetingmind")
	global.CompareAndSwap(nil, l)
	return global.Load()
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }
