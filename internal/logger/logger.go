// Package logger provides structured logging using zap.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log *zap.Logger = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar *zap.SugaredLogger = Log.Sugar()

// level is shared by every core so SetLevel takes effect at runtime.
var level = zap.NewAtomicLevel()

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init initializes the logger with the given level and optional file output.
func Init(lvl string, logFile string) error {
	fileCfg := FileConfig{}
	if logFile != "" {
		fileCfg = DefaultFileConfig(logFile)
	}
	return InitWithFileConfig(lvl, fileCfg, true)
}

func encoderConfig(console bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
	if console {
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

// InitWithFileConfig initializes the logger with custom file configuration.
// Set consoleOutput to false to disable console logging.
func InitWithFileConfig(lvl string, fileCfg FileConfig, consoleOutput bool) error {
	level.SetLevel(parseLevel(lvl))

	var cores []zapcore.Core
	if consoleOutput {
		// stderr keeps tool output on stdout clean.
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(true)),
			zapcore.Lock(os.Stderr),
			level,
		))
	}
	if fileCfg.Path != "" {
		w := &lumberjack.Logger{
			Filename:   fileCfg.Path,
			MaxSize:    fileCfg.MaxSizeMB,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAgeDays,
			Compress:   fileCfg.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(false)),
			zapcore.AddSync(w),
			level,
		))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	Sugar = Log.Sugar()
	return nil
}

// parseLevel converts a level name to zapcore.Level, defaulting to info.
func parseLevel(lvl string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil || l < zapcore.DebugLevel || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}

// SetLevel changes the level of the running logger.
func SetLevel(lvl string) {
	level.SetLevel(parseLevel(lvl))
}

// Level returns the current level.
func Level() zapcore.Level {
	return level.Level()
}

// Named returns a child logger for a subsystem.
func Named(name string) *zap.Logger {
	return Log.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }

// Fatal logs and exits.
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }

// Nop installs a logger that discards everything.
func Nop() {
	Log = zap.NewNop()
	Sugar = Log.Sugar()
}

var (
	onceMu   sync.Mutex
	onceSeen = map[string]bool{}
)

// first reports whether key is new, marking it seen.
func first(key string) bool {
	onceMu.Lock()
	defer onceMu.Unlock()
	if onceSeen[key] {
		return false
	}
	onceSeen[key] = true
	return true
}

// ErrorOnce logs an error the first time key is seen in this process.
func ErrorOnce(key, msg string, fields ...zap.Field) {
	if first(key) {
		Log.Error(msg, fields...)
	}
}

// WarnOnce logs a warning the first time key is seen in this process.
func WarnOnce(key, msg string, fields ...zap.Field) {
	if first(key) {
		Log.Warn(msg, fields...)
	}
}

// ResetOnce forgets keys reported by ErrorOnce and WarnOnce.
func ResetOnce() {
	onceMu.Lock()
	onceSeen = map[string]bool{}
	onceMu.Unlock()
}
