package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel 日志级别
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug" // 调试
	LogLevelInfo  LogLevel = "info"  // 信息
	LogLevelWarn  LogLevel = "warn"  // 警告
	LogLevelError LogLevel = "error" // 错误
	LogLevelFatal LogLevel = "fatal" // 致命
)

// LogFormat 日志格式
type LogFormat string

const (
	LogFormatText LogFormat = "text" // 文本格式
	LogFormatJSON LogFormat = "json" // JSON格式
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        LogLevel  // 日志级别
	Format       LogFormat // 日志格式
	Output       []string  // 输出目标：stdout, stderr, file
	FilePath     string    // 文件路径
	EnableCaller bool      // 启用调用者信息
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LogLevelInfo,
		Format: LogFormatText,
		Output: []string{"stderr"},
	}
}

// Logger 日志器
type Logger struct {
	config *LoggerConfig
	slog   *slog.Logger
	closer io.Closer
}

// NewLogger 创建日志器实例
func NewLogger(config *LoggerConfig) *Logger {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	out, closer := openOutputs(config)

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(config.Level),
		AddSource: config.EnableCaller,
	}
	var handler slog.Handler
	if config.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{config: config, slog: slog.New(handler), closer: closer}
}

// NewNopLogger 丢弃所有输出的日志器，用于测试
func NewNopLogger() *Logger {
	return &Logger{
		config: DefaultLoggerConfig(),
		slog:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// openOutputs 初始化输出
func openOutputs(config *LoggerConfig) (io.Writer, io.Closer) {
	if len(config.Output) == 0 {
		return os.Stderr, nil
	}
	var writers []io.Writer
	var closer io.Closer
	for _, output := range config.Output {
		switch output {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		case "file":
			if config.FilePath == "" {
				continue
			}
			file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
				continue
			}
			writers = append(writers, file)
			closer = file
		}
	}
	if len(writers) == 0 {
		return os.Stderr, closer
	}
	return io.MultiWriter(writers...), closer
}

func toSlogLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError, LogLevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog 底层 slog 日志器
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) log(level slog.Level, message string, args ...interface{}) {
	if !l.slog.Enabled(context.Background(), level) {
		return
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.slog.Log(context.Background(), level, message)
}

// Debug 记录调试日志
func (l *Logger) Debug(message string, args ...interface{}) {
	l.log(slog.LevelDebug, message, args...)
}

// Info 记录信息日志
func (l *Logger) Info(message string, args ...interface{}) {
	l.log(slog.LevelInfo, message, args...)
}

// Warn 记录警告日志
func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(slog.LevelWarn, message, args...)
}

// Error 记录错误日志
func (l *Logger) Error(message string, args ...interface{}) {
	l.log(slog.LevelError, message, args...)
}

// Fatal 记录致命日志并退出
func (l *Logger) Fatal(message string, args ...interface{}) {
	l.log(slog.LevelError, message, args...)
	os.Exit(1)
}

// WithFields 创建带字段的日志器
func (l *Logger) WithFields(fields map[string]string) *Logger {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return &Logger{config: l.config, slog: l.slog.With(attrs...)}
}

// Stop 关闭日志文件
func (l *Logger) Stop() {
	if l.closer != nil {
		l.closer.Close()
	}
}
