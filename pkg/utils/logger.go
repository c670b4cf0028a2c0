package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig configures InitLogger.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal (default: info)
	Format      string // json or text (default: json)
	Development bool   // enables zap development mode and stack traces at warn level
	Output      string // file path; empty means stderr
}

// Logger wraps *zap.Logger with a cached sugared logger and
// matching-domain field helpers.
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// InitLogger builds a Logger from cfg. It never returns nil and never
// panics: an invalid Output falls back to stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	var encoder zapcore.Encoder
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(cfg.Format, "text") {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer
	if cfg.Output == "" {
		sink = zapcore.AddSync(os.Stderr)
	} else {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			sink = zapcore.AddSync(os.Stderr)
		} else {
			sink = zapcore.AddSync(f)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	z := zap.New(core, opts...)
	return &Logger{Logger: z, sugar: z.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	case "info", "":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}

// With returns a child Logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.Logger.With(fields...)
	return &Logger{Logger: z, sugar: z.Sugar()}
}

// WithComponent tags every message from the returned logger with the
// emitting subsystem (e.g. "matching", "realtime", "notify").
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

// WithAsset tags every message with the asset symbol under negotiation.
func (l *Logger) WithAsset(asset string) *Logger {
	return l.With(Asset(asset))
}

// WithOrderID tags every message with the order the logic concerns.
func (l *Logger) WithOrderID(id string) *Logger {
	return l.With(OrderID(id))
}

// Sugar returns the cached SugaredLogger.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// globalLogger is the process-wide default, lazily created on first use.
var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// GetGlobalLogger returns the global logger, creating one with default
// config on first call.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// InitGlobalLogger builds a logger from cfg and installs it as the global
// logger, returning it.
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// SetGlobalLogger installs l as the global logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// L returns the global logger, same as GetGlobalLogger.
func L() *Logger {
	return GetGlobalLogger()
}

func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Error(msg, fields...) }

func Debugf(format string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { GetGlobalLogger().sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { GetGlobalLogger().sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(format, args...) }

// Domain field constructors, mirroring the matching engine's vocabulary
// (spec §3 Glossary): asset, order, price, quantity, side, confirmation
// key, component, request/user identity.
func Asset(v string) zap.Field           { return zap.String("asset", v) }
func OrderID(v string) zap.Field         { return zap.String("order_id", v) }
func ConfirmationKey(v string) zap.Field { return zap.String("confirmation_key", v) }
func Price(v float64) zap.Field          { return zap.Float64("price", v) }
func Quantity(v int64) zap.Field         { return zap.Int64("quantity", v) }
func SpreadPct(v float64) zap.Field      { return zap.Float64("spread_pct", v) }
func MatchType(v string) zap.Field       { return zap.String("match_type", v) }
func Side(v string) zap.Field            { return zap.String("side", v) }
func State(v string) zap.Field           { return zap.String("state", v) }
func Latency(v float64) zap.Field        { return zap.Float64("latency_ms", v) }
func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func UserID(v string) zap.Field          { return zap.String("user_id", v) }
func Component(v string) zap.Field       { return zap.String("component", v) }

// Re-exported general-purpose field constructors so callers need only
// import pkg/utils, not zap itself, for the common cases.
func String(k, v string) zap.Field         { return zap.String(k, v) }
func Int(k string, v int) zap.Field        { return zap.Int(k, v) }
func Int64(k string, v int64) zap.Field    { return zap.Int64(k, v) }
func Float64(k string, v float64) zap.Field { return zap.Float64(k, v) }
func Bool(k string, v bool) zap.Field      { return zap.Bool(k, v) }
func Err(err error) zap.Field             { return zap.Error(err) }
func Any(k string, v interface{}) zap.Field { return zap.Any(k, v) }

// fieldsToInterface flattens zap.Field pairs into a key/value slice for
// SugaredLogger-style calls.
func fieldsToInterface(fields []zap.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		out = append(out, f.Key, enc.Fields[f.Key])
	}
	return out
}
