package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "chat"

// ChatEventAttrs describes a chat write for tracing
type ChatEventAttrs struct {
	SenderID   string
	ReceiverID string
	GroupID    string
	// Kind is text, image, video, audio or file
	Kind       string
	Recipients int
}

func (a ChatEventAttrs) keyValues() []attribute.KeyValue {
	kv := make([]attribute.KeyValue, 0, 5)
	if a.SenderID != "" {
		kv = append(kv, attribute.String("chat.sender_id", a.SenderID))
	}
	if a.ReceiverID != "" {
		kv = append(kv, attribute.String("chat.receiver_id", a.ReceiverID))
	}
	if a.GroupID != "" {
		kv = append(kv, attribute.String("chat.group_id", a.GroupID))
	}
	if a.Kind != "" {
		kv = append(kv, attribute.String("chat.kind", a.Kind))
	}
	if a.Recipients > 0 {
		kv = append(kv, attribute.Int("chat.recipients", a.Recipients))
	}
	return kv
}

// StartChatSpan opens a span for a domain operation such as "message.send"
// or "group.add_members". With tracing disabled the global provider is a
// no-op and so is the span.
func StartChatSpan(ctx context.Context, operation string, attrs ChatEventAttrs) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, operation, trace.WithAttributes(attrs.keyValues()...))
}

// RecordDelivery notes how many realtime deliveries a write produced
func RecordDelivery(span trace.Span, event string, delivered, targeted int) {
	span.AddEvent("realtime.emit", trace.WithAttributes(
		attribute.String("event", event),
		attribute.Int("delivered", delivered),
		attribute.Int("targeted", targeted),
	))
}

// EndSpan closes span, marking it failed when err is non-nil
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
