package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where a log goes. Zero Dir disables the rotated file.
type Config struct {
	Dir     string
	Level   zapcore.Level
	Console bool
}

// DefaultConfig writes JSON to log/<name> and stdout at info level.
func DefaultConfig() Config {
	return Config{Dir: "log", Level: zap.InfoLevel, Console: true}
}

func NewLog(n string) *zap.Logger { return New(n, DefaultConfig()) }

// New builds a JSON logger teeing a lumberjack-rotated file and stdout.
func New(n string, c Config) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if c.Dir != "" {
		_ = os.MkdirAll(c.Dir, 0o755)
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(c.Dir, n),
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, c.Level))
	}
	if c.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), c.Level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...))
}

// LevelFromVerbosity maps a -v count to a level: 0 warn, 1 info, 2+ debug.
func LevelFromVerbosity(v int) zapcore.Level {
	switch {
	case v <= 0:
		return zap.WarnLevel
	case v == 1:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}
