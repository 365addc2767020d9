package ports

import (
	"context"

	"github.com/google/uuid"
)

// Logger is the structured logging contract shared by every component of the
// scheduling core. All log calls are key/value pairs, must be safe for
// concurrent use, and automatically enrich entries with a correlation ID when
// present in context. Common fields: correlation_id, layer (e.g.
// infrastructure), component (e.g. ingestor|dispatch|broker), project_id,
// stage_id, tile_path.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	Error(ctx context.Context, msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

type correlationIDKey struct{}

// WithCorrelationID attaches the provided correlation ID to the context so
// downstream layers can emit correlated logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GetCorrelationID extracts a correlation ID from context, returning an empty
// string when none has been set.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateCorrelationID produces a new UUIDv4 string suitable for log
// correlation. The ingestor generates one per tick; the queue consumer
// generates one per delivery.
func GenerateCorrelationID() string {
	return uuid.NewString()
}
