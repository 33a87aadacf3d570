package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

var zapLevels = map[string]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
}

// toZapLevel falls back to info for unknown names.
func toZapLevel(name string) zapcore.Level {
	if lvl, ok := zapLevels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.NameKey = "component"
	if strings.EqualFold(strings.TrimSpace(format), JSONFormat) {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// newZapLogger writes to w. Get passes stderr so robotctl keeps stdout for
// command output.
func newZapLogger(level, format string, w io.Writer) *Logger {
	core := zapcore.NewCore(newEncoder(format), zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(toZapLevel(level)))
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

func newStderrLogger(level, format string) *Logger {
	return newZapLogger(level, format, os.Stderr)
}
