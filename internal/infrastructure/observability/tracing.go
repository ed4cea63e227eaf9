package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "chat-server/chat-api"
)

// GetTracer returns the tracer for the chat-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartEditSpan starts a new span for an edit-and-regenerate operation.
func StartEditSpan(ctx context.Context, messageID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "message.edit",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("message.id", messageID)),
	)
	return ctx, span
}

// StartCompletionSpan starts a new span for an assistant completion call.
func StartCompletionSpan(ctx context.Context, transcriptLen int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "completion.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("completion.transcript_length", transcriptLen)),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
