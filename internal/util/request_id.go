package util

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

const RequestIDHeader = "X-Request-ID"

// NewRequestID keeps a caller-supplied id when one is present.
func NewRequestID(incoming string) string {
	if incoming != "" && len(incoming) <= 128 {
		return incoming
	}
	return uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
