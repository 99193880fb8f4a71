package ports

import "context"

// Logger is the structured logging port every component takes by injection.
// Fields are free-form key/value maps; implementations decide rendering.
type Logger interface {
	// Debug logs diagnostic detail, normally filtered out in production.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs normal operational events.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs recoverable anomalies worth surfacing.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs a failure together with its causing error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
