package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns nop logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestContextEnrichment(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := context.Background()
	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithBuildingID(ctx, logger, "bld-1")
	ctx, _ = WithUserID(ctx, logger, "usr-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "bld-1", GetBuildingID(ctx))
	assert.Equal(t, "usr-1", GetUserID(ctx))

	L(ctx).Info("charge created")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "bld-1", fields["building_id"])
	assert.Equal(t, "usr-1", fields["user_id"])
}

func TestContextLoggerWith(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).With(zap.String("charge_id", "c-1")).Info("verified")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "c-1", entries[0].ContextMap()["charge_id"])
}
