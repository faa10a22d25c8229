package ports

import "context"

// Logger is the leveled, structured logging surface shared by the risk
// engine and its exchange adapters. Fields travel as a single optional
// map so call sites stay compact; the stderr and zap backends both
// satisfy it.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
