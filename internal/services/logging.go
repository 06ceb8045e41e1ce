package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{logger: logger.With("service", service)}
}

// LogOperation records the outcome of one operation. Client errors are
// logged below Error so that alerting only sees server-side failures.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	switch KindOf(err) {
	case "":
	case KindValidation:
		level, status = slog.LevelWarn, "validation_error"
	case KindForbidden:
		level, status = slog.LevelWarn, "unauthorized"
	case KindNotFound:
		status = "not_found"
	case KindConflict:
		level, status = slog.LevelWarn, "conflict"
	default:
		level, status = slog.LevelError, "error"
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if ve, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Any("fields", ve.Fields()))
		}
	}

	if requestID, ok := ctx.Value("request_id").(string); ok {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ContextualLogger times one operation and logs its result
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID uint, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.startTime), err)
}

// LogSweep records the summary of a repair pass
func (l *ServiceLogger) LogSweep(ctx context.Context, sweep string, duration time.Duration, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.String("sweep", sweep),
		slog.Duration("duration", duration),
	}, attrs...)
	l.logger.LogAttrs(ctx, slog.LevelInfo, sweep+" sweep finished", all...)
}

// LogItemFailure records a per-item failure inside a sweep; the sweep goes on
func (l *ServiceLogger) LogItemFailure(ctx context.Context, sweep string, itemID uint, err error) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, sweep+" item skipped",
		slog.String("sweep", sweep),
		slog.Uint64("item_id", uint64(itemID)),
		slog.String("error", err.Error()),
	)
}
