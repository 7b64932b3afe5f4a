package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"chapterforge/local-app/src/pkg/model"
)

// Fields carries structured key/value pairs attached to a log message.
type Fields map[string]interface{}

// logMessage represents a message queued for the logging goroutine.
type logMessage struct {
	level   LogLevel
	content string
	fields  Fields
	ctx     context.Context
}

// Logger writes command, error and info log files through buffered
// asynchronous dispatch. Messages at or below the configured level are kept.
type Logger struct {
	commandLogger *slog.Logger
	errorLogger   *slog.Logger
	infoLogger    *slog.Logger
	commandFile   *os.File
	errorFile     *os.File
	infoFile      *os.File
	logChan       chan logMessage
	done          chan struct{}
	wg            sync.WaitGroup
	level         LogLevel
}

// NewLogger creates a new Logger instance writing into the configured log
// folder. Level controls the most verbose message class that is kept.
func NewLogger(cfg *model.Config, level LogLevel) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open command log file
	commandFile, err := os.OpenFile(filepath.Join(cfg.LogFolder, cfg.CommandLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open command log file: %w", err)
	}

	// Open error log file
	errorFile, err := os.OpenFile(filepath.Join(cfg.LogFolder, cfg.ErrorLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		commandFile.Close()
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}

	// Open info log file
	infoFile, err := os.OpenFile(filepath.Join(cfg.LogFolder, cfg.InfoLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		commandFile.Close()
		errorFile.Close()
		return nil, fmt.Errorf("failed to open info log file: %w", err)
	}

	logger := &Logger{
		commandLogger: slog.New(slog.NewJSONHandler(commandFile, &slog.HandlerOptions{Level: slog.LevelInfo})),
		errorLogger:   slog.New(slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelWarn})),
		infoLogger:    slog.New(slog.NewJSONHandler(infoFile, &slog.HandlerOptions{Level: slog.LevelDebug})),
		commandFile:   commandFile,
		errorFile:     errorFile,
		infoFile:      infoFile,
		logChan:       make(chan logMessage, 100),
		done:          make(chan struct{}),
		level:         level,
	}

	// Start the logging goroutine
	logger.wg.Add(1)
	go logger.processLogs()

	return logger, nil
}

// processLogs handles incoming log messages
func (l *Logger) processLogs() {
	defer l.wg.Done()
	for {
		select {
		case msg := <-l.logChan:
			attrs := make([]interface{}, 0, len(msg.fields)*2)
			for k, v := range msg.fields {
				attrs = append(attrs, k, v)
			}
			switch msg.level {
			case LevelCommand:
				l.commandLogger.InfoContext(msg.ctx, msg.content, attrs...)
			case LevelError:
				l.errorLogger.ErrorContext(msg.ctx, msg.content, attrs...)
			case LevelWarn:
				l.errorLogger.WarnContext(msg.ctx, msg.content, attrs...)
			case LevelInfo:
				l.infoLogger.InfoContext(msg.ctx, msg.content, attrs...)
			case LevelDebug:
				l.infoLogger.DebugContext(msg.ctx, msg.content, attrs...)
			}
		case <-l.done:
			return
		}
	}
}

// enqueue queues a message unless it is filtered out by the configured level.
func (l *Logger) enqueue(ctx context.Context, level LogLevel, content string, fields Fields) {
	if level > l.level && level != LevelCommand {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case l.logChan <- logMessage{level: level, content: content, fields: fields, ctx: ctx}:
	case <-l.done:
	}
}

// Command records an executed command in the command log.
func (l *Logger) Command(ctx context.Context, content string, fields Fields) {
	l.enqueue(ctx, LevelCommand, content, fields)
}

// Error records an error in the error log.
func (l *Logger) Error(ctx context.Context, content string, fields Fields) {
	l.enqueue(ctx, LevelError, content, fields)
}

// Warn records a warning in the error log.
func (l *Logger) Warn(ctx context.Context, content string, fields Fields) {
	l.enqueue(ctx, LevelWarn, content, fields)
}

// Info records an informational message in the info log.
func (l *Logger) Info(ctx context.Context, content string, fields Fields) {
	l.enqueue(ctx, LevelInfo, content, fields)
}

// Debug records a debug message in the info log.
func (l *Logger) Debug(ctx context.Context, content string, fields Fields) {
	l.enqueue(ctx, LevelDebug, content, fields)
}

// Close stops the logging goroutine and closes all log files
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait() // Wait for the logging goroutine to finish

	if err := l.commandFile.Close(); err != nil {
		return fmt.Errorf("failed to close command log file: %w", err)
	}

	if err := l.errorFile.Close(); err != nil {
		return fmt.Errorf("failed to close error log file: %w", err)
	}

	if err := l.infoFile.Close(); err != nil {
		return fmt.Errorf("failed to close info log file: %w", err)
	}

	return nil
}
