package utils

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// NewLogger builds a JSON logger for production and a console logger elsewhere.
func NewLogger(appEnv string) (*zap.Logger, error) {
	if strings.EqualFold(strings.TrimSpace(appEnv), "production") {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// LogEvent writes a standardized module/action line tied to a request.
// Keep message summarized; never pass raw payloads.
func LogEvent(log *zap.Logger, requestID, module, action, message string, fields ...zap.Field) {
	if log == nil {
		return
	}
	base := []zap.Field{
		zap.String("module", strings.ToUpper(module)),
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
	}
	log.Info(message, append(base, fields...)...)
}

type requestIDKey struct{}

// WithRequestID stores the request id on ctx so services can tag their events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
