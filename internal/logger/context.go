package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const TraceIDKey contextKey = "trace_id"
const JobKey contextKey = "job"

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

func WithJob(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, JobKey, name)
}

func GetJob(ctx context.Context) string {
	if name, ok := ctx.Value(JobKey).(string); ok {
		return name
	}
	return ""
}

// From returns the default logger annotated with the trace id and job name
// carried by ctx.
func From(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := GetTraceID(ctx); id != "" {
		l = l.With("trace_id", id)
	}
	if job := GetJob(ctx); job != "" {
		l = l.With("job", job)
	}
	return l
}
