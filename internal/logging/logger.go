// Package logging wraps log/slog behind the small interface the console's
// services log through.
package logging

import "context"

// Logger takes a message plus key/value pairs:
//
//	log.Info(ctx, "bill paid", "bill", id, "payment", paymentID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}

// ForUser tags every record from l with the signed-in user and role.
func ForUser(l Logger, username, role string) Logger {
	return l.With("user", username, "role", role)
}
