package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogBookingCreated logs when a pending booking is created
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, showID, userID string) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("show_id", showID),
		slog.String("user_id", userID),
	)
}

// LogPaymentReconciled logs a terminal payment transition
func (l *Logger) LogPaymentReconciled(ctx context.Context, bookingID, status, source string) {
	l.Logger.InfoContext(ctx,
		"Payment Reconciled",
		slog.String("booking_id", bookingID),
		slog.String("status", status),
		slog.String("source", source),
	)
}

// LogWebhookReceived logs an incoming gateway webhook
func (l *Logger) LogWebhookReceived(ctx context.Context, orderID, txStatus string) {
	l.Logger.InfoContext(ctx,
		"Webhook Received",
		slog.String("order_id", orderID),
		slog.String("tx_status", txStatus),
	)
}

// LogGatewayError logs a gateway failure with the status code and masked
// credentials; the raw body stays out of client responses.
func (l *Logger) LogGatewayError(ctx context.Context, operation string, statusCode int, appID string, err error) {
	l.Logger.ErrorContext(ctx,
		"Payment Gateway Error",
		slog.String("operation", operation),
		slog.Int("status_code", statusCode),
		slog.String("app_id", MaskCredential(appID)),
		slog.String("error", err.Error()),
	)
}

// LogSeatConflict logs a lost seat race detected during reconciliation
func (l *Logger) LogSeatConflict(ctx context.Context, bookingID string, seats []string) {
	l.Logger.WarnContext(ctx,
		"Seat Conflict On Reconciliation",
		slog.String("booking_id", bookingID),
		slog.Any("seats", seats),
	)
}

// MaskCredential keeps only a recognizable prefix of a secret value.
func MaskCredential(v string) string {
	if len(v) <= 6 {
		return "***"
	}
	return v[:6] + "..."
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
