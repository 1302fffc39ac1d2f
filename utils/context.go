package utils

import (
	"context"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

// CreateCtxWithRqID attaches a fresh request id unless parent already has one.
func CreateCtxWithRqID(parent context.Context) context.Context {
	if GetRequestIDFromCtx(parent) != "" {
		return parent
	}
	return context.WithValue(parent, rqIDKey{}, uuid.NewString())
}
