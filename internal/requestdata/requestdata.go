package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/domain"
)

type ctxKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, ctxKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(ctxKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the authenticated actor of a request: the database id
// of the API key, its scope, and the collector id attributing writes.
type RequestData struct {
	KeyID       int64
	Scope       domain.APIScope
	CollectorID uuid.UUID
}
