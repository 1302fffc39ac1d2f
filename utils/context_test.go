package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCtxWithRqID(t *testing.T) {
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))

	ctx := CreateCtxWithRqID(context.Background())
	rqID := GetRequestIDFromCtx(ctx)
	assert.Len(t, rqID, 36)

	assert.Equal(t, rqID, GetRequestIDFromCtx(CreateCtxWithRqID(ctx)))
}
