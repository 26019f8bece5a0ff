package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type ZapLogger struct {
	logger   *zap.Logger
	filePath string
}

// NewZapLogger writes JSON to a rotated file and mirrors to stdout.
// Development builds get a human-readable console encoder.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	jsonEncoder := zapcore.NewJSONEncoder(newEncoderConfig())

	consoleEncoder := jsonEncoder
	if !isProd {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewTee(
		fileCore(logFilePath),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel),
	)

	return &ZapLogger{
		logger:   zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		filePath: logFilePath,
	}
}

// NewIsolatedLogger writes only to its file. Used for chatty domains
// (websocket, notifications) to keep the main log readable.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	return &ZapLogger{
		logger:   zap.New(fileCore(logFilePath), zap.AddCaller(), zap.AddCallerSkip(2)),
		filePath: logFilePath,
	}
}

func fileCore(path string) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.AddSync(rotator),
		zap.InfoLevel,
	)
}

func newEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func (l *ZapLogger) emit(level zapcore.Level, module, message string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"]; ok && level >= zap.ErrorLevel {
		fields = append(fields, zap.Any("error_ref", err))
	}

	switch level {
	case zap.DebugLevel:
		l.logger.Debug(message, fields...)
	case zap.InfoLevel:
		l.logger.Info(message, fields...)
	case zap.WarnLevel:
		l.logger.Warn(message, fields...)
	default:
		l.logger.Error(message, fields...)
	}
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.emit(zap.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.emit(zap.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.emit(zap.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.emit(zap.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
